// Package core provides the header reconciliation and cleaning logic for jury
// usage tables. This package has no I/O dependencies and can be used by any
// frontend.
package core

import (
	"math"
	"strconv"
	"strings"
)

// Row is one data row of a raw table.
// A position past the end of the row is a missing cell; an empty string is a
// present but empty cell.
type Row []string

// Cell returns the value at position i and whether the cell is present.
func (r Row) Cell(i int) (string, bool) {
	if i < 0 || i >= len(r) {
		return "", false
	}
	return r[i], true
}

// isBlank reports whether every cell of the row is empty or whitespace.
func (r Row) isBlank() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// RawTable is a single source table as handed over by a reader.
type RawTable struct {
	Source string   // Source identifier, usually the file name
	Header []string // Raw header row, not necessarily unique
	Rows   []Row    // Data rows in source order
}

// Input is a named, lazily opened raw table.
// Open is called at most once per batch run.
type Input struct {
	Name string
	Open func() (*RawTable, error)
}

// StaticInput wraps an already loaded table as an Input.
func StaticInput(t *RawTable) Input {
	return Input{
		Name: t.Source,
		Open: func() (*RawTable, error) { return t, nil },
	}
}

// Column identifies one source column by position.
// Name holds the normalized header text that rules matched against; Header
// is the text as it appears in the source file.
type Column struct {
	Index  int
	Name   string
	Header string
}

// Label returns the source header, falling back to the normalized name.
func (c Column) Label() string {
	if c.Header != "" {
		return c.Header
	}
	return c.Name
}

// Field is a column of the canonical output schema.
// The declaration order is the output order.
type Field int

const (
	FieldCaseNumber Field = iota
	FieldJurorsReporting
	FieldJurorsUsed
	FieldJurorsNotUsed
	FieldJurorsUsedDerived
	FieldUsedMismatch
	FieldUtilizationRate
	FieldCaseType
	FieldCivil
	FieldCaseCategory
	FieldCharges
	FieldPenalCodes
	FieldYear
	FieldLocation
	FieldSourceFile
	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldCaseNumber:        "Case No.",
	FieldJurorsReporting:   "Jurors Reporting",
	FieldJurorsUsed:        "Jurors Used",
	FieldJurorsNotUsed:     "Jurors Not Used",
	FieldJurorsUsedDerived: "Jurors Used (Derived)",
	FieldUsedMismatch:      "Used Mismatch",
	FieldUtilizationRate:   "Utilization Rate",
	FieldCaseType:          "Case Type",
	FieldCivil:             "Civil",
	FieldCaseCategory:      "Case Category",
	FieldCharges:           "Charges",
	FieldPenalCodes:        "Penal Codes",
	FieldYear:              "Year",
	FieldLocation:          "Location",
	FieldSourceFile:        "Source File",
}

// String returns the output header for the field.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "Field(" + strconv.Itoa(int(f)) + ")"
	}
	return fieldNames[f]
}

// AllFields returns every canonical field in output order.
func AllFields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Number is a numeric cell that may be missing.
// Valid is false for absent, blank or non-numeric input.
type Number struct {
	Float64 float64
	Valid   bool
}

// Num returns a valid Number.
func Num(f float64) Number {
	return Number{Float64: f, Valid: true}
}

// Sub returns n - o, or a missing Number if either operand is missing.
func (n Number) Sub(o Number) Number {
	if !n.Valid || !o.Valid {
		return Number{}
	}
	return Num(n.Float64 - o.Float64)
}

// Format renders the number for output. A negative precision prints the
// shortest exact representation; otherwise the value is rounded half away
// from zero to that many decimals first. Missing numbers render empty.
func (n Number) Format(precision int) string {
	if !n.Valid {
		return ""
	}
	v := n.Float64
	if precision >= 0 {
		scale := math.Pow10(precision)
		v = math.Round(v*scale) / scale
	}
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Flag is a boolean cell that may be missing.
type Flag struct {
	Bool  bool
	Valid bool
}

// String renders the flag for output.
func (f Flag) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatBool(f.Bool)
}

// Category is the derived case classification.
type Category string

const (
	CategoryCivil       Category = "Civil"
	CategoryFelony      Category = "Felony"
	CategoryMisdemeanor Category = "Misdemeanor"
	CategoryUnknown     Category = "Unknown"
)

// CleanedRow is one row in the canonical schema.
type CleanedRow struct {
	CaseNumber        string
	JurorsReporting   Number
	JurorsUsed        Number
	JurorsNotUsed     Number
	JurorsUsedDerived Number // Only set under PolicyFlag
	UsedMismatch      Flag   // Only set under PolicyFlag
	UtilizationRate   Number // Full precision; rounded on output
	CaseType          string
	Civil             string
	CaseCategory      Category
	Charges           string
	PenalCodes        string
	Year              string
	Location          string
	SourceFile        string
}

// Value renders a single field of the row. Utilization Rate is rounded to
// precision decimals; other numbers print exactly.
func (r CleanedRow) Value(f Field, precision int) string {
	switch f {
	case FieldCaseNumber:
		return r.CaseNumber
	case FieldJurorsReporting:
		return r.JurorsReporting.Format(-1)
	case FieldJurorsUsed:
		return r.JurorsUsed.Format(-1)
	case FieldJurorsNotUsed:
		return r.JurorsNotUsed.Format(-1)
	case FieldJurorsUsedDerived:
		return r.JurorsUsedDerived.Format(-1)
	case FieldUsedMismatch:
		return r.UsedMismatch.String()
	case FieldUtilizationRate:
		return r.UtilizationRate.Format(precision)
	case FieldCaseType:
		return r.CaseType
	case FieldCivil:
		return r.Civil
	case FieldCaseCategory:
		return string(r.CaseCategory)
	case FieldCharges:
		return r.Charges
	case FieldPenalCodes:
		return r.PenalCodes
	case FieldYear:
		return r.Year
	case FieldLocation:
		return r.Location
	case FieldSourceFile:
		return r.SourceFile
	default:
		return ""
	}
}

// Status is the outcome of processing one input table.
type Status string

const (
	StatusCleaned Status = "Cleaned"
	StatusSkipped Status = "Skipped"
	StatusError   Status = "Error"
)

// Details describes a log record. Message is set for skips and errors;
// the remaining fields are set for cleaned tables.
type Details struct {
	Message     string              `json:"message,omitempty"`
	Rows        int                 `json:"rows,omitempty"`
	Bindings    map[string][]string `json:"bindings,omitempty"`
	UsedFormula string              `json:"used_formula,omitempty"`
	Policy      string              `json:"policy,omitempty"`
}

// LogRecord is the audit entry for one input table.
type LogRecord struct {
	Source  string  `json:"file"`
	Status  Status  `json:"status"`
	Details Details `json:"details"`
}
