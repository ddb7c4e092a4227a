package core

// cleaner.go orchestrates a batch run.
//
// Each input table moves through:
//
//	open → normalize headers → resolve columns → {reject | clean rows} → emit
//
// Failures are contained per table: a read error, an empty table or a
// missing required column becomes a log record and the run moves on.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultPrecision is the number of decimals Utilization Rate is rounded to
// on output.
const DefaultPrecision = 4

// Options configures a Cleaner.
type Options struct {
	Rules     RuleSet
	Policy    UsedPolicy
	Precision int // Decimals for Utilization Rate; negative keeps full precision
	Workers   int // Tables processed concurrently; <= 1 is sequential
	Logger    *slog.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Rules:     DefaultRules(),
		Policy:    DefaultUsedPolicy,
		Precision: DefaultPrecision,
		Workers:   1,
	}
}

// Cleaner reconciles raw tables onto the canonical schema.
type Cleaner struct {
	resolver  *Resolver
	calc      Calculator
	precision int
	workers   int
	logger    *slog.Logger
}

// NewCleaner compiles the rule set and validates options.
func NewCleaner(opts Options) (*Cleaner, error) {
	resolver, err := NewResolver(opts.Rules)
	if err != nil {
		return nil, err
	}

	policy, err := ParseUsedPolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Cleaner{
		resolver:  resolver,
		calc:      Calculator{Policy: policy},
		precision: opts.Precision,
		workers:   workers,
		logger:    logger,
	}, nil
}

// Resolver returns the compiled resolver used by the cleaner.
func (c *Cleaner) Resolver() *Resolver {
	return c.resolver
}

// Run cleans every input and returns the accumulated batch.
//
// Inputs are processed in lexical order of Name regardless of the order
// given or the number of workers. If no table is cleaned, Run returns the
// batch together with ErrNoCleanedTables. Any other error means the context
// was cancelled.
func (c *Cleaner) Run(ctx context.Context, inputs []Input) (*Batch, error) {
	sorted := make([]Input, len(inputs))
	copy(sorted, inputs)
	for i := range sorted {
		if sorted[i].Name == "" {
			sorted[i].Name = fmt.Sprintf("unnamed-%03d", i+1)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID)
	logger.Info("clean started", "tables", len(sorted), "workers", c.workers, "policy", c.calc.Policy)

	// Each table writes only its own slot; the batch is assembled afterwards
	// so concurrency cannot reorder output.
	results := make([]tableResult, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, in := range sorted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.cleanInput(in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("clean run %s: %w", runID, err)
	}

	batch := newBatch(runID, c.precision)
	for _, res := range results {
		batch.add(res)
		logRecord(logger, res)
	}

	logger.Info("clean finished",
		"tables", len(sorted),
		"cleaned", batch.Cleaned(),
		"rows", len(batch.Rows()),
	)

	if batch.Cleaned() == 0 {
		return batch, ErrNoCleanedTables
	}
	return batch, nil
}

func logRecord(logger *slog.Logger, res tableResult) {
	rec := res.record
	switch rec.Status {
	case StatusCleaned:
		logger.Info("table cleaned", "source", rec.Source, "rows", len(res.rows), "used", rec.Details.UsedFormula)
		logger.Debug("table bindings", "source", rec.Source, "bindings", rec.Details.Bindings)
	case StatusSkipped:
		logger.Warn("table skipped", "source", rec.Source, "reason", rec.Details.Message)
	default:
		logger.Error("table failed", "source", rec.Source, "error", rec.Details.Message)
	}
}

// cleanInput opens and cleans one input. It never panics on bad data and
// never returns an error: every outcome is a log record.
func (c *Cleaner) cleanInput(in Input) tableResult {
	if in.Open == nil {
		return errorResult(in.Name, &ReadError{Source: in.Name, Err: errors.New("no reader")})
	}

	t, err := in.Open()
	if err != nil {
		var re *ReadError
		if !errors.As(err, &re) {
			err = &ReadError{Source: in.Name, Err: err}
		}
		return errorResult(in.Name, err)
	}
	if t == nil {
		return errorResult(in.Name, &ReadError{Source: in.Name, Err: errors.New("no table")})
	}

	return c.cleanTable(in.Name, t)
}

// cleanTable runs the reconciliation pipeline on one loaded table.
// source names the table in the output; it falls back to t.Source.
func (c *Cleaner) cleanTable(source string, t *RawTable) tableResult {
	if source == "" {
		source = t.Source
	}

	rows := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if !r.isBlank() {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return skipResult(source, &EmptyTableError{Source: source})
	}

	bindings := c.resolver.Bind(t.Header)
	if err := ValidateBindings(source, bindings); err != nil {
		return skipResult(source, err)
	}

	out := make([]CleanedRow, len(rows))
	for i, r := range rows {
		out[i] = c.calc.Row(source, r, bindings)
	}

	return tableResult{
		record: LogRecord{
			Source: source,
			Status: StatusCleaned,
			Details: Details{
				Rows:        len(out),
				Bindings:    bindings.Names(),
				UsedFormula: c.calc.Formula(bindings),
				Policy:      string(c.calc.Policy),
			},
		},
		rows:   out,
		fields: c.calc.Produced(bindings),
	}
}

func skipResult(source string, err error) tableResult {
	return tableResult{record: LogRecord{
		Source:  source,
		Status:  StatusSkipped,
		Details: Details{Message: skipMessage(err)},
	}}
}

// skipMessage is the log message for a table rejected as a whole.
func skipMessage(err error) string {
	var se *SchemaError
	if errors.As(err, &se) {
		return "missing " + se.MissingLabels()
	}
	var ee *EmptyTableError
	if errors.As(err, &ee) {
		return "no rows"
	}
	return err.Error()
}

func errorResult(source string, err error) tableResult {
	msg := MapError(err)
	return tableResult{record: LogRecord{
		Source:  source,
		Status:  StatusError,
		Details: Details{Message: fmt.Sprintf("%s: %v", msg.Code, err)},
	}}
}
