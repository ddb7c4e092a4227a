package csvio

import "strings"

// HeaderKeywords are the words a header row is recognised by.
var HeaderKeywords = []string{"case", "jurors", "used"}

// HeaderScanRows is how many leading rows are searched for a header.
const HeaderScanRows = 10

// headerMinCells is how many cells of a row must contain a keyword.
const headerMinCells = 2

// FindHeaderRow returns the index of the first of the leading limit rows in
// which at least two cells contain one of keywords, case-insensitively.
// Sheets often carry titles and notes above the real header.
func FindHeaderRow(rows [][]string, keywords []string, limit int) (int, bool) {
	if limit > len(rows) {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		hits := 0
		for _, cell := range rows[i] {
			if containsAny(strings.ToLower(cell), keywords) {
				hits++
			}
		}
		if hits >= headerMinCells {
			return i, true
		}
	}
	return 0, false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
