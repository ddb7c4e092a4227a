package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(DefaultRules())
	require.NoError(t, err)
	return r
}

func TestResolveSingleTargets(t *testing.T) {
	r := defaultResolver(t)

	tests := []struct {
		name    string
		headers []string
		target  Target
		want    Column
		wantOK  bool
	}{
		{
			name:    "exact beats substring regardless of position",
			headers: []string{"Old Case No (legacy)", "Case No."},
			target:  TargetCaseNumber,
			want:    Column{Index: 1, Name: "Case No."},
			wantOK:  true,
		},
		{
			name:    "prefix case number",
			headers: []string{"Case No./Docket"},
			target:  TargetCaseNumber,
			want:    Column{Index: 0, Name: "Case No./Docket"},
			wantOK:  true,
		},
		{
			name:    "case number fallback",
			headers: []string{"Case Number"},
			target:  TargetCaseNumber,
			want:    Column{Index: 0, Name: "Case Number"},
			wantOK:  true,
		},
		{
			name:    "bare case header",
			headers: []string{"Case", "Jurors Reporting"},
			target:  TargetCaseNumber,
			want:    Column{Index: 0, Name: "Case"},
			wantOK:  true,
		},
		{
			name:    "total jurors reporting",
			headers: []string{"Case No.", "Total Jurors Reporting"},
			target:  TargetJurorsReporting,
			want:    Column{Index: 1, Name: "Total Jurors Reporting"},
			wantOK:  true,
		},
		{
			name:    "used ignores not used columns",
			headers: []string{"Not Used From Pool", "Jurors Used"},
			target:  TargetJurorsUsed,
			want:    Column{Index: 1, Name: "Jurors Used"},
			wantOK:  true,
		},
		{
			name:    "used unbound when only not used exists",
			headers: []string{"Case No.", "Not Used From Pool"},
			target:  TargetJurorsUsed,
			wantOK:  false,
		},
		{
			name:    "not used",
			headers: []string{"Case No.", "Not Used From Pool"},
			target:  TargetNotUsed,
			want:    Column{Index: 1, Name: "Not Used From Pool"},
			wantOK:  true,
		},
		{
			name:    "no match",
			headers: []string{"Docket", "Count"},
			target:  TargetCaseNumber,
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(r.NormalizeHeaders(tt.headers), tt.target)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolveAllCharges(t *testing.T) {
	r := defaultResolver(t)
	headers := r.NormalizeHeaders([]string{
		"Case No.",
		"Description of Charges (1)",
		"(Charges) overflow",
		"Description of Charges (2)",
	})

	got := r.ResolveAll(headers, TargetCharges)
	assert.Equal(t, []Column{
		{Index: 1, Name: "Description of Charges (1)"},
		{Index: 3, Name: "Description of Charges (2)"},
		{Index: 2, Name: "(Charges) overflow"},
	}, got)
}

func TestResolveDeterministic(t *testing.T) {
	r := defaultResolver(t)
	headers := r.NormalizeHeaders([]string{
		"Case", "Case No", "Jurors Used", "Used", "Penal Codes", "Penal Code 2",
	})

	first := r.Bind(headers)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, r.Bind(headers))
	}
}

func TestResolveFoldMode(t *testing.T) {
	rs := DefaultRules()
	rs.Mode = ModeFold
	r, err := NewResolver(rs)
	require.NoError(t, err)

	b := r.Bind([]string{"CASE NO.", "jurors reporting", "PENAL CODES"})

	col, ok := b.Single(TargetCaseNumber)
	require.True(t, ok)
	assert.Equal(t, 0, col.Index)
	assert.Equal(t, "case no.", col.Name)
	assert.Equal(t, "CASE NO.", col.Header)
	assert.True(t, b.Has(TargetJurorsReporting))
	assert.True(t, b.Has(TargetPenalCodes))

	names := b.Names()
	assert.Equal(t, []string{"CASE NO."}, names["case_number"])
	assert.Equal(t, []string{"PENAL CODES"}, names["penal_codes"])
}

func TestExactModeIsCaseSensitive(t *testing.T) {
	r := defaultResolver(t)
	b := r.Bind(r.NormalizeHeaders([]string{"CASE NO.", "JURORS REPORTING"}))
	assert.False(t, b.Has(TargetCaseNumber))
	assert.False(t, b.Has(TargetJurorsReporting))
}

func TestNewResolverRejectsBadRules(t *testing.T) {
	_, err := NewResolver(RuleSet{Rules: []MatchRule{
		{Target: TargetCharges, Match: []Matcher{regex(`(`)}},
	}})
	assert.Error(t, err)

	_, err = NewResolver(RuleSet{Rules: []MatchRule{
		{Target: TargetCivil, Match: []Matcher{{Strategy: "fuzzy", Pattern: "x"}}},
	}})
	assert.Error(t, err)

	_, err = NewResolver(RuleSet{Rules: []MatchRule{
		{Target: TargetCivil, Match: []Matcher{exact("Civil")}},
		{Target: TargetCivil, Match: []Matcher{exact("Civ")}},
	}})
	assert.Error(t, err)
}

func TestBindingsNames(t *testing.T) {
	b := Bindings{
		TargetCaseNumber: {{Index: 0, Name: "Case"}},
		TargetCharges:    {{Index: 2, Name: "Description of Charges (1)"}, {Index: 3, Name: "Description of Charges (2)"}},
	}
	assert.Equal(t, map[string][]string{
		"case_number": {"Case"},
		"charges":     {"Description of Charges (1)", "Description of Charges (2)"},
	}, b.Names())
	assert.Equal(t, []Target{TargetCaseNumber, TargetCharges}, b.Targets())
}

func TestConsolidate(t *testing.T) {
	cols := []Column{{Index: 1}, {Index: 2}, {Index: 5}}

	tests := []struct {
		name   string
		row    Row
		want   string
		wantOK bool
	}{
		{"first column wins", Row{"x", "theft", "burglary"}, "theft", true},
		{"blank falls through", Row{"x", "  ", "burglary"}, "burglary", true},
		{"missing cell falls through", Row{"x", ""}, "", false},
		{"all blank", Row{"x", "", "", "", "", " "}, "", false},
		{"later column", Row{"x", "", "", "", "", "assault"}, "assault", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Consolidate(tt.row, cols)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
