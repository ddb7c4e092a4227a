package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCleaner(t *testing.T, mutate func(*Options)) *Cleaner {
	t.Helper()
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if mutate != nil {
		mutate(&opts)
	}
	c, err := NewCleaner(opts)
	require.NoError(t, err)
	return c
}

func table(source string, header []string, rows ...Row) Input {
	return StaticInput(&RawTable{Source: source, Header: header, Rows: rows})
}

func TestRunScenarios(t *testing.T) {
	c := newTestCleaner(t, nil)

	batch, err := c.Run(context.Background(), []Input{
		table("2023_Dallas.csv",
			[]string{"Case No.", "Total Jurors Reporting", "Not Used From Pool"},
			Row{"24-001", "12", "3"},
		),
		table("malformed.csv",
			[]string{"Case", "Jurors Reporting"},
			Row{"24-002", "8"},
		),
	})
	require.NoError(t, err)
	require.Len(t, batch.Rows(), 2)

	dallas := batch.Rows()[0]
	assert.Equal(t, "24-001", dallas.CaseNumber)
	assert.Equal(t, Num(12), dallas.JurorsReporting)
	assert.Equal(t, Num(9), dallas.JurorsUsed)
	assert.Equal(t, Num(3), dallas.JurorsNotUsed)
	assert.Equal(t, Num(0.75), dallas.UtilizationRate)
	assert.Equal(t, "2023", dallas.Year)
	assert.Equal(t, "Dallas", dallas.Location)

	malformed := batch.Rows()[1]
	assert.Equal(t, "24-002", malformed.CaseNumber)
	assert.Equal(t, Num(8), malformed.JurorsReporting)
	assert.False(t, malformed.JurorsUsed.Valid)
	assert.False(t, malformed.UtilizationRate.Valid)
	assert.Empty(t, malformed.Year)
	assert.Empty(t, malformed.Location)

	for _, rec := range batch.Log() {
		assert.Equal(t, StatusCleaned, rec.Status, rec.Source)
	}
}

func TestRunRejectsTableMissingRequiredColumn(t *testing.T) {
	c := newTestCleaner(t, nil)

	batch, err := c.Run(context.Background(), []Input{
		table("a.csv", []string{"Case No.", "Jurors Reporting"}, Row{"1", "10"}, Row{"2", "11"}),
		table("b.csv", []string{"Docket", "Jurors Reporting"}, Row{"3", "12"}),
	})
	require.NoError(t, err)

	assert.Len(t, batch.Rows(), 2)
	for _, r := range batch.Rows() {
		assert.Equal(t, "a.csv", r.SourceFile)
	}

	log := batch.Log()
	require.Len(t, log, 2)
	assert.Equal(t, StatusSkipped, log[1].Status)
	assert.Equal(t, "missing Case No.", log[1].Details.Message)
	assert.Equal(t, 1, batch.Cleaned())
}

func TestRunSkipsEmptyTables(t *testing.T) {
	c := newTestCleaner(t, nil)

	batch, err := c.Run(context.Background(), []Input{
		table("a.csv", []string{"Case No.", "Jurors Reporting"}, Row{"1", "10"}),
		table("b.csv", []string{"Case No.", "Jurors Reporting"}),
		table("c.csv", []string{"Case No.", "Jurors Reporting"}, Row{"", " "}, Row{}),
	})
	require.NoError(t, err)

	log := batch.Log()
	require.Len(t, log, 3)
	assert.Equal(t, StatusSkipped, log[1].Status)
	assert.Equal(t, "no rows", log[1].Details.Message)
	assert.Equal(t, StatusSkipped, log[2].Status)
}

func TestRunDropsBlankRows(t *testing.T) {
	c := newTestCleaner(t, nil)

	batch, err := c.Run(context.Background(), []Input{
		table("a.csv", []string{"Case No.", "Jurors Reporting"},
			Row{"1", "10"}, Row{"", ""}, Row{"2", "11"}),
	})
	require.NoError(t, err)
	assert.Len(t, batch.Rows(), 2)
	assert.Equal(t, 2, batch.Log()[0].Details.Rows)
}

func TestRunRecordsReadErrors(t *testing.T) {
	c := newTestCleaner(t, nil)

	batch, err := c.Run(context.Background(), []Input{
		{Name: "broken.csv", Open: func() (*RawTable, error) { return nil, errors.New("unexpected EOF") }},
		table("ok.csv", []string{"Case No.", "Jurors Reporting"}, Row{"1", "10"}),
	})
	require.NoError(t, err)

	log := batch.Log()
	require.Len(t, log, 2)
	assert.Equal(t, "broken.csv", log[0].Source)
	assert.Equal(t, StatusError, log[0].Status)
	assert.Contains(t, log[0].Details.Message, "READ001")
	assert.Len(t, batch.Rows(), 1)
}

func TestRunNoCleanedTables(t *testing.T) {
	c := newTestCleaner(t, nil)

	batch, err := c.Run(context.Background(), []Input{
		table("b.csv", []string{"Docket"}, Row{"3"}),
	})
	assert.ErrorIs(t, err, ErrNoCleanedTables)
	require.NotNil(t, batch)
	require.Len(t, batch.Log(), 1)
	assert.Equal(t, StatusSkipped, batch.Log()[0].Status)
	assert.Equal(t, "missing Case No., Jurors Reporting", batch.Log()[0].Details.Message)

	_, err = c.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoCleanedTables)
}

func TestRunOrdersByName(t *testing.T) {
	inputs := []Input{
		table("c.csv", []string{"Case No.", "Jurors Reporting"}, Row{"c1", "1"}),
		table("a.csv", []string{"Case No.", "Jurors Reporting"}, Row{"a1", "1"}, Row{"a2", "2"}),
		table("b.csv", []string{"Case No.", "Jurors Reporting"}, Row{"b1", "1"}),
	}

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			c := newTestCleaner(t, func(o *Options) { o.Workers = workers })
			batch, err := c.Run(context.Background(), inputs)
			require.NoError(t, err)

			var got []string
			for _, r := range batch.Rows() {
				got = append(got, r.CaseNumber)
			}
			assert.Equal(t, []string{"a1", "a2", "b1", "c1"}, got)

			var sources []string
			for _, rec := range batch.Log() {
				sources = append(sources, rec.Source)
			}
			assert.Equal(t, []string{"a.csv", "b.csv", "c.csv"}, sources)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	c := newTestCleaner(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Run(ctx, []Input{
		table("a.csv", []string{"Case No.", "Jurors Reporting"}, Row{"1", "10"}),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunLogsBindings(t *testing.T) {
	c := newTestCleaner(t, nil)

	batch, err := c.Run(context.Background(), []Input{
		table("a.csv",
			[]string{"Case No.", "Jurors Reporting", "Jurors Used", "Not Used", "Description of Charges (1)", "Description of Charges (2)"},
			Row{"1", "10", "7", "3", "", "Theft"},
		),
	})
	require.NoError(t, err)

	d := batch.Log()[0].Details
	assert.Equal(t, []string{"Jurors Used"}, d.Bindings["jurors_used"])
	assert.Equal(t, []string{"Description of Charges (1)", "Description of Charges (2)"}, d.Bindings["charges"])
	assert.Equal(t, "Jurors Used", d.UsedFormula)
	assert.Equal(t, "flag", d.Policy)
	assert.Equal(t, "Theft", batch.Rows()[0].Charges)
}

func TestRunLogsSourceHeadersInFoldMode(t *testing.T) {
	c := newTestCleaner(t, func(o *Options) { o.Rules.Mode = ModeFold })

	batch, err := c.Run(context.Background(), []Input{
		table("a.csv", []string{"CASE NO.", "JURORS REPORTING", "JURORS USED"}, Row{"1", "10", "7"}),
	})
	require.NoError(t, err)

	d := batch.Log()[0].Details
	assert.Equal(t, []string{"CASE NO."}, d.Bindings["case_number"])
	assert.Equal(t, []string{"JURORS REPORTING"}, d.Bindings["jurors_reporting"])
	assert.Equal(t, "JURORS USED", d.UsedFormula)
}

func TestSkipMessage(t *testing.T) {
	empty := &EmptyTableError{Source: "b.csv"}
	assert.Equal(t, "no rows", skipMessage(empty))
	assert.Equal(t, "TBL001", MapError(empty).Code)

	schema := &SchemaError{Source: "b.csv", Missing: []Target{TargetCaseNumber}}
	assert.Equal(t, "missing Case No.", skipMessage(schema))

	assert.Equal(t, "other", skipMessage(errors.New("other")))
}

func TestNewCleanerValidatesOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Policy = "guess"
	_, err := NewCleaner(opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.Rules = RuleSet{Rules: []MatchRule{{Target: TargetCharges, Match: []Matcher{regex(`[`)}}}}
	_, err = NewCleaner(opts)
	assert.Error(t, err)
}
