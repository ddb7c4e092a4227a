// Package csvio reads source CSV files into raw tables and writes cleaned
// and log tables back out.
//
// Sources come from many spreadsheet exports. Reading tolerates a UTF-8 BOM,
// falls back to Latin-1 when the bytes are not valid UTF-8, accepts ragged
// rows and bare quotes inside fields.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/JonMunkholm/juryclean/internal/core"
)

// Encoding names the character set a source was decoded from.
type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin1 Encoding = "latin-1"
)

// Options controls how a CSV source becomes a raw table.
type Options struct {
	// DetectHeader scans the first HeaderScanRows records for the header
	// row instead of taking the first record. Records above it are dropped.
	DetectHeader bool
}

// Decode converts raw file bytes to text. A leading BOM is removed. Valid
// UTF-8 is returned as is; anything else is decoded as Latin-1, which
// accepts every byte sequence.
func Decode(data []byte) (string, Encoding, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), EncodingUTF8, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", fmt.Errorf("encoding error: %w", err)
	}
	return string(out), EncodingLatin1, nil
}

// Read parses one CSV source. source names the table in the output.
// All failures are returned as *core.ReadError.
func Read(source string, r io.Reader, opts Options) (*core.RawTable, error) {
	data, err := io.ReadAll(NewBOMSkippingReader(r))
	if err != nil {
		return nil, &core.ReadError{Source: source, Err: err}
	}

	text, _, err := Decode(data)
	if err != nil {
		return nil, &core.ReadError{Source: source, Err: err}
	}

	records, err := parse(text)
	if err != nil {
		return nil, &core.ReadError{Source: source, Err: err}
	}

	return ToTable(source, records, opts), nil
}

func parse(text string) ([][]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("invalid csv at line %d: %w", pe.Line, pe.Err)
		}
		return nil, err
	}
	return records, nil
}

// ToTable splits parsed records into a header and data rows.
// An empty record set yields a table without header or rows.
func ToTable(source string, records [][]string, opts Options) *core.RawTable {
	t := &core.RawTable{Source: source}
	if len(records) == 0 {
		return t
	}

	start := 0
	if opts.DetectHeader {
		if i, ok := FindHeaderRow(records, HeaderKeywords, HeaderScanRows); ok {
			start = i
		}
	}

	t.Header = records[start]
	t.Rows = make([]core.Row, 0, len(records)-start-1)
	for _, rec := range records[start+1:] {
		t.Rows = append(t.Rows, core.Row(rec))
	}
	return t
}

// ReadFile reads a CSV file. The table is named by the file's base name.
func ReadFile(path string, opts Options) (*core.RawTable, error) {
	source := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, &core.ReadError{Source: source, Err: err}
	}
	defer f.Close()

	return Read(source, f, opts)
}

// FileInput returns a lazily opened input for a CSV file.
func FileInput(path string, opts Options) core.Input {
	return core.Input{
		Name: filepath.Base(path),
		Open: func() (*core.RawTable, error) { return ReadFile(path, opts) },
	}
}

// DirInputs lists every *.csv file directly inside dir, in lexical order.
// Subdirectories are not descended into.
func DirInputs(dir string, opts Options) ([]core.Input, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list input dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	inputs := make([]core.Input, len(names))
	for i, name := range names {
		inputs[i] = FileInput(filepath.Join(dir, name), opts)
	}
	return inputs, nil
}
