package core

// convert.go turns raw cell text into typed values.
//
// These functions handle the messy reality of spreadsheet exports:
//   - Thousand separators and stray currency symbols in counts
//   - Accounting negatives "(12)"
//   - Excel formula prefixes (="value")
//   - Surrounding quotes left over from copy/paste
//
// Conversion is tolerant: anything that is not a number becomes a missing
// Number rather than an error.

import (
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// parseNumber is the strict parser behind ToNumber.
func parseNumber(s string) (float64, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ParseError{Value: raw}
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, &ParseError{Value: raw}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Value: raw, Err: err}
	}
	return f, nil
}

// ToNumber converts a cell to a Number.
// Returns a missing Number for empty or non-numeric input.
func ToNumber(s string) Number {
	f, err := parseNumber(CleanCell(s))
	if err != nil {
		return Number{}
	}
	return Num(f)
}

// cellNumber reads and converts the cell bound to col.
func cellNumber(row Row, col Column, bound bool) Number {
	if !bound {
		return Number{}
	}
	v, ok := row.Cell(col.Index)
	if !ok {
		return Number{}
	}
	return ToNumber(v)
}

// cellText reads the cell bound to col and cleans it.
func cellText(row Row, col Column, bound bool) string {
	if !bound {
		return ""
	}
	v, _ := row.Cell(col.Index)
	return CleanCell(v)
}

// IsAffirmative reports whether a flag cell says yes.
// Accepts y, yes, true and 1, case-insensitively.
func IsAffirmative(s string) bool {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "y", "yes", "true", "1":
		return true
	default:
		return false
	}
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding double quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}
