package core

import (
	"encoding/json"
)

// Batch accumulates the output of one cleaning run.
// Rows and log records are appended only by the Cleaner, one whole table at
// a time, in input order.
type Batch struct {
	RunID     string
	Precision int

	rows    []CleanedRow
	records []LogRecord
	present [fieldCount]bool
	cleaned int
}

func newBatch(runID string, precision int) *Batch {
	return &Batch{RunID: runID, Precision: precision}
}

// tableResult is everything one table contributes to a batch.
type tableResult struct {
	record LogRecord
	rows   []CleanedRow
	fields []Field
}

func (b *Batch) add(res tableResult) {
	b.records = append(b.records, res.record)
	if res.record.Status != StatusCleaned {
		return
	}
	b.cleaned++
	b.rows = append(b.rows, res.rows...)
	for _, f := range res.fields {
		b.present[f] = true
	}
}

// Rows returns the cleaned rows of every table, in input then row order.
func (b *Batch) Rows() []CleanedRow {
	return b.rows
}

// Log returns one record per input table, in processing order.
func (b *Batch) Log() []LogRecord {
	return b.records
}

// Cleaned returns the number of tables that produced output.
func (b *Batch) Cleaned() int {
	return b.cleaned
}

// Columns returns the output fields produced by at least one cleaned table,
// in canonical order.
func (b *Batch) Columns() []Field {
	var out []Field
	for _, f := range AllFields() {
		if b.present[f] {
			out = append(out, f)
		}
	}
	return out
}

// Table renders the cleaned rows as a header plus string records.
// Every row carries every present column; values a table did not produce
// are empty.
func (b *Batch) Table() ([]string, [][]string) {
	cols := b.Columns()
	header := make([]string, len(cols))
	for i, f := range cols {
		header[i] = f.String()
	}

	records := make([][]string, len(b.rows))
	for i, row := range b.rows {
		rec := make([]string, len(cols))
		for j, f := range cols {
			rec[j] = row.Value(f, b.Precision)
		}
		records[i] = rec
	}
	return header, records
}

// LogHeader is the header row of the log table.
var LogHeader = []string{"file", "status", "details"}

// LogTable renders the log records as string records.
func (b *Batch) LogTable() ([]string, [][]string) {
	records := make([][]string, len(b.records))
	for i, rec := range b.records {
		records[i] = []string{rec.Source, string(rec.Status), rec.Details.String()}
	}
	return LogHeader, records
}

// String renders details for a log file: the plain message for skips and
// errors, otherwise a compact JSON mapping.
func (d Details) String() string {
	if d.Message != "" && d.Bindings == nil {
		return d.Message
	}
	b, err := json.Marshal(d)
	if err != nil {
		return d.Message
	}
	return string(b)
}
