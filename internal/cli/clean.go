package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/juryclean/internal/core"
	"github.com/JonMunkholm/juryclean/internal/csvio"
	"github.com/JonMunkholm/juryclean/internal/workbook"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [input-dir]",
	Short: "Clean every CSV in a directory into one table",
	Long: `Reads every *.csv file in the input directory in name order, maps each
onto the canonical schema and writes the combined table plus a log with one
record per file. With --workbook the sheets of an .xlsx file are cleaned
directly instead.

Files missing a required column are skipped and logged. The command fails
only when no file could be cleaned; the log is written either way.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	f := cleanCmd.Flags()
	f.StringP("output", "o", "", "cleaned CSV path")
	f.String("log-file", "", "per-file log CSV path")
	f.String("workbook", "", "clean the sheets of this .xlsx workbook instead of a directory")
	f.String("policy", "", "Jurors Used policy: source, derive or flag")
	f.Int("precision", 0, "decimals for Utilization Rate (-1 keeps full precision)")
	f.IntP("workers", "w", 0, "files processed concurrently")
	f.Bool("detect-header", false, "search the leading rows for the header row")
	f.Bool("bom", false, "prefix written CSVs with a UTF-8 byte order mark")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cfg.Input.Dir = args[0]
	}
	overrideString(cmd, "output", &cfg.Output.File)
	overrideString(cmd, "log-file", &cfg.Output.LogFile)
	overrideString(cmd, "policy", &cfg.Clean.UsedPolicy)
	overrideInt(cmd, "precision", &cfg.Clean.Precision)
	overrideInt(cmd, "workers", &cfg.Clean.Workers)
	overrideBool(cmd, "detect-header", &cfg.Input.DetectHeader)
	overrideBool(cmd, "bom", &cfg.Output.BOM)
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts, err := cfg.Clean.Options(logger)
	if err != nil {
		return userError(err)
	}
	cleaner, err := core.NewCleaner(opts)
	if err != nil {
		return userError(err)
	}

	inputs, err := cleanInputs(cmd)
	if err != nil {
		return userError(err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch, runErr := cleaner.Run(ctx, inputs)
	if runErr != nil && !errors.Is(runErr, core.ErrNoCleanedTables) {
		return userError(runErr)
	}

	writeOpts := csvio.WriteOptions{BOMPrefix: cfg.Output.BOM}
	logHeader, logRecords := batch.LogTable()
	if err := csvio.WriteFile(cfg.Output.LogFile, logHeader, logRecords, writeOpts); err != nil {
		return fmt.Errorf("write log: %w", err)
	}

	printLog(cmd, batch.Log())
	if runErr != nil {
		return userError(runErr)
	}

	header, records := batch.Table()
	if err := csvio.WriteFile(cfg.Output.File, header, records, writeOpts); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	cmd.Printf("Cleaned %d of %d files, %d rows written to %s\n",
		batch.Cleaned(), len(batch.Log()), len(records), cfg.Output.File)
	cmd.Printf("Log written to %s (run %s)\n", cfg.Output.LogFile, batch.RunID)
	return nil
}

// cleanInputs lists the tables to clean: workbook sheets when --workbook
// is set, otherwise the CSV files of the input directory.
func cleanInputs(cmd *cobra.Command) ([]core.Input, error) {
	readOpts := csvio.Options{DetectHeader: cfg.Input.DetectHeader}

	path, _ := cmd.Flags().GetString("workbook")
	if path == "" {
		inputs, err := csvio.DirInputs(cfg.Input.Dir, readOpts)
		if err != nil {
			return nil, err
		}
		logger.Info("inputs found", "dir", cfg.Input.Dir, "files", len(inputs))
		return inputs, nil
	}

	res, err := newSplitter().SplitFile(path)
	if err != nil {
		return nil, err
	}
	logger.Info("workbook split", "workbook", path, "sheets", len(res.Sheets))
	return res.Inputs(), nil
}

func newSplitter() *workbook.Splitter {
	s := workbook.NewSplitter(logger)
	s.ScanRows = cfg.Split.ScanRows
	return s
}

// printLog lists the files that were not cleaned.
func printLog(cmd *cobra.Command, records []core.LogRecord) {
	for _, rec := range records {
		if rec.Status == core.StatusCleaned {
			continue
		}
		cmd.Printf("  %-8s %s: %s\n", rec.Status, rec.Source, rec.Details.String())
	}
}

// userError rewrites err with its support code, keeping the original
// available through errors.Is and errors.As.
func userError(err error) error {
	if !core.IsUserFacing(err) {
		return err
	}
	return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
