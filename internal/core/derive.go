package core

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// UsedPolicy decides where Jurors Used comes from when a table carries a
// direct "Jurors Used" column, a "Not Used" column, or both.
type UsedPolicy string

const (
	// PolicySource trusts a direct Jurors Used column and falls back to
	// Reporting - NotUsed.
	PolicySource UsedPolicy = "source"
	// PolicyDerive always computes Reporting - NotUsed when a Not Used
	// column exists and reads Jurors Used only when it does not.
	PolicyDerive UsedPolicy = "derive"
	// PolicyFlag behaves like PolicySource and, when both columns exist,
	// also emits the derived value and whether the two disagree.
	PolicyFlag UsedPolicy = "flag"
)

// DefaultUsedPolicy keeps sourced values and exposes disagreements.
const DefaultUsedPolicy = PolicyFlag

// ParseUsedPolicy converts a configuration string to a UsedPolicy.
// The empty string selects DefaultUsedPolicy.
func ParseUsedPolicy(s string) (UsedPolicy, error) {
	switch UsedPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultUsedPolicy, nil
	case PolicySource:
		return PolicySource, nil
	case PolicyDerive:
		return PolicyDerive, nil
	case PolicyFlag:
		return PolicyFlag, nil
	default:
		return "", fmt.Errorf("unknown used policy %q (want source, derive or flag)", s)
	}
}

// Calculator computes the derived fields of a cleaned row.
type Calculator struct {
	Policy UsedPolicy
}

// usedFromDirect reports whether Jurors Used is read from the direct column
// for a table with these bindings.
func (c Calculator) usedFromDirect(b Bindings) bool {
	if !b.Has(TargetJurorsUsed) {
		return false
	}
	if c.Policy == PolicyDerive && b.Has(TargetNotUsed) {
		return false
	}
	return true
}

// flagsMismatch reports whether the table gets the derived/mismatch columns.
func (c Calculator) flagsMismatch(b Bindings) bool {
	return c.Policy == PolicyFlag && b.Has(TargetJurorsUsed) && b.Has(TargetNotUsed)
}

// Row builds the canonical row for one source row.
func (c Calculator) Row(source string, row Row, b Bindings) CleanedRow {
	caseCol, caseOK := b.Single(TargetCaseNumber)
	repCol, repOK := b.Single(TargetJurorsReporting)
	usedCol, usedOK := b.Single(TargetJurorsUsed)
	notUsedCol, notUsedOK := b.Single(TargetNotUsed)
	typeCol, typeOK := b.Single(TargetCaseType)
	civilCol, civilOK := b.Single(TargetCivil)

	out := CleanedRow{
		CaseNumber: cellText(row, caseCol, caseOK),
		CaseType:   cellText(row, typeCol, typeOK),
		Civil:      cellText(row, civilCol, civilOK),
		SourceFile: source,
	}
	out.Year, out.Location = ParseSourceName(source)

	reporting := cellNumber(row, repCol, repOK)
	direct := cellNumber(row, usedCol, usedOK)
	derived := Number{}
	if notUsedOK {
		derived = reporting.Sub(cellNumber(row, notUsedCol, notUsedOK))
	}

	var used Number
	switch {
	case c.usedFromDirect(b):
		used = direct
	case notUsedOK:
		used = derived
	}

	if c.flagsMismatch(b) {
		out.JurorsUsedDerived = derived
		if direct.Valid && derived.Valid {
			out.UsedMismatch = Flag{Bool: direct.Float64 != derived.Float64, Valid: true}
		}
	}

	out.JurorsReporting = reporting
	out.JurorsUsed = used
	out.JurorsNotUsed = reporting.Sub(used)
	out.UtilizationRate = UtilizationRate(used, reporting)
	out.CaseCategory = Categorize(out.Civil, out.CaseType)

	if v, ok := Consolidate(row, b[TargetCharges]); ok {
		out.Charges = CleanCharges(v)
	}
	if v, ok := Consolidate(row, b[TargetPenalCodes]); ok {
		out.PenalCodes = strings.TrimSpace(v)
	}

	return out
}

// Formula describes how Jurors Used was obtained, for the audit log.
func (c Calculator) Formula(b Bindings) string {
	rep, _ := b.Single(TargetJurorsReporting)
	if c.usedFromDirect(b) {
		used, _ := b.Single(TargetJurorsUsed)
		return used.Label()
	}
	if notUsed, ok := b.Single(TargetNotUsed); ok {
		return fmt.Sprintf("%s - %s", rep.Label(), notUsed.Label())
	}
	return "unavailable"
}

// Produced returns the output fields a table with these bindings fills.
func (c Calculator) Produced(b Bindings) []Field {
	fields := []Field{FieldCaseNumber, FieldJurorsReporting}
	if b.Has(TargetJurorsUsed) || b.Has(TargetNotUsed) {
		fields = append(fields, FieldJurorsUsed, FieldJurorsNotUsed, FieldUtilizationRate)
	}
	if c.flagsMismatch(b) {
		fields = append(fields, FieldJurorsUsedDerived, FieldUsedMismatch)
	}
	if b.Has(TargetCaseType) {
		fields = append(fields, FieldCaseType)
	}
	if b.Has(TargetCivil) {
		fields = append(fields, FieldCivil)
	}
	if b.Has(TargetCharges) {
		fields = append(fields, FieldCharges)
	}
	if b.Has(TargetPenalCodes) {
		fields = append(fields, FieldPenalCodes)
	}
	return append(fields, FieldCaseCategory, FieldYear, FieldLocation, FieldSourceFile)
}

// UtilizationRate returns used / reporting at full precision.
// Missing when either value is missing or reporting is not positive.
func UtilizationRate(used, reporting Number) Number {
	if !used.Valid || !reporting.Valid || reporting.Float64 <= 0 {
		return Number{}
	}
	return Num(used.Float64 / reporting.Float64)
}

// Categorize classifies a case from its Civil flag and Case Type text.
// Checks run in priority order: civil, felony, misdemeanor.
func Categorize(civil, caseType string) Category {
	ct := strings.ToLower(strings.TrimSpace(caseType))

	if IsAffirmative(civil) || strings.Contains(ct, "civil") {
		return CategoryCivil
	}
	if strings.Contains(ct, "felony") || strings.Contains(ct, "fel") || ct == "f" {
		return CategoryFelony
	}
	if strings.Contains(ct, "misdemeanor") || strings.Contains(ct, "misd") || ct == "m" {
		return CategoryMisdemeanor
	}
	return CategoryUnknown
}

// CleanCharges strips one enclosing pair of square brackets, removes all
// quote characters and trims whitespace.
func CleanCharges(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") && len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer(`"`, "", `'`, "").Replace(s)
	return strings.TrimSpace(s)
}

var (
	yearRe     = regexp.MustCompile(`^(\d{4})(?:\D|$)`)
	locationRe = regexp.MustCompile(`^[^_]*_(.+)\.[^.]+$`)
)

// ParseSourceName extracts the year and location from a source name such as
// "2023_Dallas.csv". Either value is empty when the name does not carry it.
//
// The location is everything after the first underscore, with any further
// underscores read back as spaces: "2023_New_York.csv" is "New York", the
// inverse of the workbook sheet file names.
func ParseSourceName(source string) (year, location string) {
	name := filepath.Base(source)
	if m := yearRe.FindStringSubmatch(name); m != nil {
		year = m[1]
	}
	if m := locationRe.FindStringSubmatch(name); m != nil {
		location = strings.TrimSpace(strings.ReplaceAll(m[1], "_", " "))
	}
	return year, location
}
