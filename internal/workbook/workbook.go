// Package workbook splits a multi-sheet jury workbook into one raw table per
// sheet.
//
// Courts deliver a master .xlsx with one sheet per location or year plus
// summary sheets. Summary sheets are skipped, the real header row is found
// under any title rows, and each remaining sheet becomes a table that can be
// written as CSV or handed straight to the cleaner.
package workbook

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/juryclean/internal/core"
	"github.com/JonMunkholm/juryclean/internal/csvio"
)

// Status is the outcome of splitting one sheet.
type Status string

const (
	StatusProcessed Status = "Processed"
	StatusSkipped   Status = "Skipped"
	StatusError     Status = "Error"
)

// skipSheetWords mark summary sheets that do not hold case rows.
var skipSheetWords = []string{"yield", "consolidated"}

// SkipSheet reports whether a sheet is a summary sheet.
func SkipSheet(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range skipSheetWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// FileName returns the CSV file name for a sheet: spaces become
// underscores, so "2023 Dallas" is written as "2023_Dallas.csv".
func FileName(sheet string) string {
	return strings.ReplaceAll(sheet, " ", "_") + ".csv"
}

// Sheet is one extracted table.
type Sheet struct {
	Name      string
	HeaderRow int // 1-based row number of the header in the sheet
	Table     *core.RawTable
}

// Record is one line of the split log.
type Record struct {
	Sheet   string
	Status  Status
	Details string
}

// LogHeader is the header row of the split log.
var LogHeader = []string{"Sheet", "Status", "Details"}

// Result holds the extracted sheets and the split log.
type Result struct {
	Sheets []Sheet
	Log    []Record
}

// Inputs returns the extracted sheets as cleaner inputs. Each input is named
// by the sheet's CSV file name.
func (r *Result) Inputs() []core.Input {
	inputs := make([]core.Input, len(r.Sheets))
	for i, s := range r.Sheets {
		inputs[i] = core.StaticInput(s.Table)
	}
	return inputs
}

// WriteCSVs writes every extracted sheet to dir.
func (r *Result) WriteCSVs(dir string, opts csvio.WriteOptions) error {
	for _, s := range r.Sheets {
		rows := make([][]string, len(s.Table.Rows))
		for i, row := range s.Table.Rows {
			rows[i] = row
		}
		if err := csvio.WriteFile(filepath.Join(dir, s.Table.Source), s.Table.Header, rows, opts); err != nil {
			return fmt.Errorf("write sheet %q: %w", s.Name, err)
		}
	}
	return nil
}

// LogTable renders the split log as string records.
func (r *Result) LogTable() ([]string, [][]string) {
	records := make([][]string, len(r.Log))
	for i, rec := range r.Log {
		records[i] = []string{rec.Sheet, string(rec.Status), rec.Details}
	}
	return LogHeader, records
}

// Splitter extracts tables from workbooks.
type Splitter struct {
	Keywords []string // Header row keywords; defaults to csvio.HeaderKeywords
	ScanRows int      // Rows searched for the header; defaults to csvio.HeaderScanRows
	Logger   *slog.Logger
}

// NewSplitter returns a splitter with the default header detection.
func NewSplitter(logger *slog.Logger) *Splitter {
	return &Splitter{
		Keywords: csvio.HeaderKeywords,
		ScanRows: csvio.HeaderScanRows,
		Logger:   logger,
	}
}

// SplitFile opens and splits a workbook file.
func (s *Splitter) SplitFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	return s.Split(filepath.Base(path), f)
}

// Split reads a workbook and extracts every non-summary sheet.
// Only a workbook that cannot be opened at all is an error; problems with
// individual sheets are recorded in the result's log. A sheet whose file
// name is already taken by an earlier sheet is logged as an error and
// dropped, so WriteCSVs never overwrites one sheet with another.
func (s *Splitter) Split(name string, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	logger := s.logger().With("workbook", name)
	res := &Result{}
	claimed := make(map[string]string) // lowercased file name -> sheet

	for _, sheet := range f.GetSheetList() {
		if SkipSheet(sheet) {
			logger.Debug("sheet skipped", "sheet", sheet)
			continue
		}

		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			logger.Error("sheet failed", "sheet", sheet, "error", err)
			res.Log = append(res.Log, Record{Sheet: sheet, Status: StatusError, Details: err.Error()})
			continue
		}

		extracted, ok := s.extract(sheet, rows)
		if !ok {
			logger.Warn("no header row", "sheet", sheet)
			res.Log = append(res.Log, Record{Sheet: sheet, Status: StatusSkipped, Details: "no header row found"})
			continue
		}

		// File names compare case-insensitively.
		key := strings.ToLower(extracted.Table.Source)
		if owner, ok := claimed[key]; ok {
			details := fmt.Sprintf("file name %s already used by sheet %q", extracted.Table.Source, owner)
			logger.Error("sheet file name collision", "sheet", sheet, "file", extracted.Table.Source, "owner", owner)
			res.Log = append(res.Log, Record{Sheet: sheet, Status: StatusError, Details: details})
			continue
		}
		claimed[key] = sheet

		res.Sheets = append(res.Sheets, extracted)
		res.Log = append(res.Log, Record{
			Sheet:   sheet,
			Status:  StatusProcessed,
			Details: fmt.Sprintf("header at row %d, %d rows", extracted.HeaderRow, len(extracted.Table.Rows)),
		})
		logger.Info("sheet extracted", "sheet", sheet, "header_row", extracted.HeaderRow, "rows", len(extracted.Table.Rows))
	}

	return res, nil
}

// extract locates the header and collects the non-blank rows below it.
func (s *Splitter) extract(sheet string, rows [][]string) (Sheet, bool) {
	keywords := s.Keywords
	if len(keywords) == 0 {
		keywords = csvio.HeaderKeywords
	}
	scan := s.ScanRows
	if scan <= 0 {
		scan = csvio.HeaderScanRows
	}

	at, ok := csvio.FindHeaderRow(rows, keywords, scan)
	if !ok {
		return Sheet{}, false
	}

	table := &core.RawTable{Source: FileName(sheet), Header: rows[at]}
	for _, row := range rows[at+1:] {
		if blank(row) {
			continue
		}
		table.Rows = append(table.Rows, core.Row(row))
	}

	return Sheet{Name: sheet, HeaderRow: at + 1, Table: table}, true
}

func (s *Splitter) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
