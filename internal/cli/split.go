package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/juryclean/internal/csvio"
	"github.com/JonMunkholm/juryclean/internal/workbook"
)

var splitCmd = &cobra.Command{
	Use:   "split [workbook]",
	Short: "Split a master workbook into one CSV per sheet",
	Long: `Writes every data sheet of an .xlsx workbook to <sheet name>.csv, with
spaces in the name replaced by underscores. The header row is the first of
the leading rows with at least two cells mentioning case, jurors or used;
rows above it and blank rows are dropped. Summary sheets whose name contains
"yield" or "consolidated" are ignored. A Sheet/Status/Details log is written
alongside.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSplit,
}

func init() {
	f := splitCmd.Flags()
	f.StringP("output-dir", "o", "", "directory receiving the sheet CSVs")
	f.String("log-file", "", "per-sheet log CSV path")
	f.Int("scan-rows", 0, "leading rows searched for the header")
	f.Bool("bom", false, "prefix written CSVs with a UTF-8 byte order mark")
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cfg.Split.Workbook = args[0]
	}
	overrideString(cmd, "output-dir", &cfg.Split.OutputDir)
	overrideString(cmd, "log-file", &cfg.Split.LogFile)
	overrideInt(cmd, "scan-rows", &cfg.Split.ScanRows)
	overrideBool(cmd, "bom", &cfg.Output.BOM)
	if err := cfg.Validate(); err != nil {
		return err
	}

	res, err := newSplitter().SplitFile(cfg.Split.Workbook)
	if err != nil {
		return userError(err)
	}

	writeOpts := csvio.WriteOptions{BOMPrefix: cfg.Output.BOM}
	if err := res.WriteCSVs(cfg.Split.OutputDir, writeOpts); err != nil {
		return err
	}
	header, records := res.LogTable()
	if err := csvio.WriteFile(cfg.Split.LogFile, header, records, writeOpts); err != nil {
		return fmt.Errorf("write log: %w", err)
	}

	for _, rec := range res.Log {
		if rec.Status != workbook.StatusProcessed {
			cmd.Printf("  %-9s %s: %s\n", rec.Status, rec.Sheet, rec.Details)
		}
	}
	cmd.Printf("Wrote %d sheets to %s\n", len(res.Sheets), cfg.Split.OutputDir)
	cmd.Printf("Log written to %s\n", cfg.Split.LogFile)
	return nil
}
