package core

import "strings"

// Consolidate returns the first value among cols that is present and not
// blank, in column order. Later columns are overflow or duplicates of the
// same logical field. The boolean is false when no column qualifies.
func Consolidate(row Row, cols []Column) (string, bool) {
	for _, c := range cols {
		v, ok := row.Cell(c.Index)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		return v, true
	}
	return "", false
}
