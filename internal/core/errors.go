package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCleanedTables is returned by Cleaner.Run when no input table produced
// output. The batch is still returned so its log can be written.
var ErrNoCleanedTables = errors.New("no tables were cleaned")

// ReadError reports a source that could not be read or decoded.
type ReadError struct {
	Source string
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Source, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// EmptyTableError reports a table without any non-blank data rows.
// It leads to a skip, not a failure.
type EmptyTableError struct {
	Source string
}

func (e *EmptyTableError) Error() string {
	return fmt.Sprintf("empty table %s: no rows", e.Source)
}

// SchemaError reports required targets that no header resolved to.
type SchemaError struct {
	Source  string
	Missing []Target
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column in %s: %s", e.Source, e.MissingLabels())
}

// MissingLabels lists the missing targets by canonical header.
func (e *SchemaError) MissingLabels() string {
	labels := make([]string, len(e.Missing))
	for i, t := range e.Missing {
		labels[i] = t.Label()
	}
	return strings.Join(labels, ", ")
}

// ParseError reports a non-numeric value where a number was expected.
// ToNumber always recovers from it; it never reaches a caller.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid number %q", e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }
