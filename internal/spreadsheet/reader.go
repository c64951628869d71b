// Package spreadsheet reads workbook sheets into headerless tables.
//
// Excel workbooks (.xlsx, .xlsm, .xltx, .xltm) are read with excelize. CSV
// files are treated as a workbook with a single sheet named after the file.
// Every cell is read as displayed; integer and decimal strings in canonical
// form become int64 and float64 values, blank cells and NA markers become nil.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/doccompare/internal/tablediff"
)

var (
	// ErrSheetNotFound is returned when the requested sheet is not in the workbook.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrEmptySheet is returned when a sheet holds no cells.
	ErrEmptySheet = errors.New("sheet is empty")

	// ErrUnsupportedFormat is returned for file extensions no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
)

// SheetProperties describes one sheet of a workbook.
type SheetProperties struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	Empty bool   `json:"empty"`
}

type format int

const (
	formatExcel format = iota
	formatCSV
)

func detectFormat(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return formatExcel, nil
	case ".csv":
		return formatCSV, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// IsSupported reports whether path has an extension this package can read.
func IsSupported(path string) bool {
	_, err := detectFormat(path)
	return err == nil
}

// Properties lists every sheet in the workbook in workbook order.
func Properties(path string) ([]SheetProperties, error) {
	fmtKind, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	if fmtKind == formatCSV {
		rows, err := readCSV(path)
		if err != nil {
			return nil, err
		}
		return []SheetProperties{{Name: csvSheetName(path), Index: 0, Empty: isEmpty(rows)}}, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	props := make([]SheetProperties, 0, len(sheets))
	for i, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		props = append(props, SheetProperties{Name: name, Index: i, Empty: isEmpty(rows)})
	}
	return props, nil
}

// FirstSheet returns the name of the first sheet in the workbook.
func FirstSheet(path string) (string, error) {
	props, err := Properties(path)
	if err != nil {
		return "", err
	}
	if len(props) == 0 {
		return "", fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
	}
	return props[0].Name, nil
}

// Rows returns the raw cell strings of a sheet. Rows may be ragged.
func Rows(path, sheet string) ([][]string, error) {
	fmtKind, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	if fmtKind == formatCSV {
		if sheet != "" && sheet != csvSheetName(path) {
			return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
		}
		return readCSV(path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// ReadTable reads a sheet into a rectangular table. An empty sheet name
// selects the first sheet. Short rows are padded with blank cells up to the
// width of the widest row.
func ReadTable(path, sheet string) (tablediff.Table, error) {
	rows, err := Rows(path, sheet)
	if err != nil {
		return tablediff.Table{}, err
	}
	if isEmpty(rows) {
		return tablediff.Table{}, fmt.Errorf("%w: %q", ErrEmptySheet, sheet)
	}
	return tablediff.NewTable(toCells(rows))
}

// toCells converts ragged string rows into same-width typed rows.
func toCells(rows [][]string) [][]any {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	out := make([][]any, len(rows))
	for i, r := range rows {
		cells := make([]any, width)
		for c, s := range r {
			cells[c] = parseValue(s)
		}
		out[i] = cells
	}
	return out
}

// missingValues are the cell texts read as blank, matching the NA markers
// spreadsheet tools export for empty numeric cells.
var missingValues = map[string]struct{}{
	"NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NA": {}, "N/A": {}, "n/a": {}, "#N/A": {}, "#NA": {}, "<NA>": {},
	"NULL": {}, "null": {}, "None": {}, "1.#IND": {}, "-1.#IND": {},
	"1.#QNAN": {}, "-1.#QNAN": {},
}

// parseValue converts a displayed cell string to a typed value.
// Returns nil for blanks and NA markers, int64 or float64 when the number
// formats back to exactly the same text, or the original string. Texts such
// as "007", "+7", "1.50" or "Infinity" stay strings so that cells that read
// differently never compare equal.
func parseValue(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if _, ok := missingValues[trimmed]; ok {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(i, 10) == s {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) || (f == 0 && math.Signbit(f)) {
			return s
		}
		if strconv.FormatFloat(f, 'f', -1, 64) == s {
			return f
		}
	}
	return s
}

func isEmpty(rows [][]string) bool {
	for _, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				return false
			}
		}
	}
	return true
}

func csvSheetName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// readCSV reads every record of a CSV file. A leading BOM is removed and
// invalid UTF-8 is replaced with U+FFFD.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	return parseCSV(f)
}

func parseCSV(r io.Reader) ([][]string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}
