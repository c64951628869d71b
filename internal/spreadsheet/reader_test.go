package spreadsheet

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/doccompare/internal/tablediff"
)

// writeWorkbook saves a workbook with the given sheets. Each sheet maps cell
// names to values; a nil map creates an empty sheet.
func writeWorkbook(t *testing.T, sheets []string, cells map[string]map[string]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
		for cell, v := range cells[name] {
			if err := f.SetCellValue(name, cell, v); err != nil {
				t.Fatalf("SetCellValue(%s, %s): %v", name, cell, err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestProperties(t *testing.T) {
	path := writeWorkbook(t, []string{"Data", "Blank", "More"}, map[string]map[string]any{
		"Data": {"A1": "x", "B2": 3},
		"More": {"C3": "y"},
	})

	props, err := Properties(path)
	if err != nil {
		t.Fatalf("Properties() error = %v", err)
	}

	want := []SheetProperties{
		{Name: "Data", Index: 0, Empty: false},
		{Name: "Blank", Index: 1, Empty: true},
		{Name: "More", Index: 2, Empty: false},
	}
	if len(props) != len(want) {
		t.Fatalf("Properties() = %+v, want %+v", props, want)
	}
	for i := range want {
		if props[i] != want[i] {
			t.Errorf("props[%d] = %+v, want %+v", i, props[i], want[i])
		}
	}
}

func TestFirstSheet(t *testing.T) {
	path := writeWorkbook(t, []string{"Summary", "Detail"}, map[string]map[string]any{
		"Summary": {"A1": 1},
	})

	got, err := FirstSheet(path)
	if err != nil {
		t.Fatalf("FirstSheet() error = %v", err)
	}
	if got != "Summary" {
		t.Errorf("FirstSheet() = %q, want %q", got, "Summary")
	}
}

func TestReadTable(t *testing.T) {
	path := writeWorkbook(t, []string{"Sheet"}, map[string]map[string]any{
		"Sheet": {
			"A1": "name", "B1": "qty", "C1": "price",
			"A2": "bolt", "B2": 100, "C2": 0.25,
			"A3": "nut",
		},
	})

	tbl, err := ReadTable(path, "Sheet")
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	if tbl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tbl.Len())
	}
	if len(tbl.Columns) != 3 {
		t.Fatalf("Columns = %v, want 3 columns", tbl.Columns)
	}

	tests := []struct {
		row  int
		col  tablediff.ColumnID
		want any
	}{
		{0, 0, "name"},
		{1, 1, int64(100)},
		{1, 2, 0.25},
		{2, 0, "nut"},
		{2, 1, nil},
		{2, 2, nil},
	}
	for _, tt := range tests {
		if got := tbl.Rows[tt.row][tt.col]; got != tt.want {
			t.Errorf("cell(%d,%d) = %v (%T), want %v (%T)", tt.row, tt.col, got, got, tt.want, tt.want)
		}
	}
}

func TestReadTable_DefaultsToFirstSheet(t *testing.T) {
	path := writeWorkbook(t, []string{"First", "Second"}, map[string]map[string]any{
		"First":  {"A1": "one"},
		"Second": {"A1": "two"},
	})

	tbl, err := ReadTable(path, "")
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if got := tbl.Rows[0][0]; got != "one" {
		t.Errorf("cell(0,0) = %v, want %q", got, "one")
	}
}

func TestReadTable_Errors(t *testing.T) {
	path := writeWorkbook(t, []string{"Data", "Blank"}, map[string]map[string]any{
		"Data": {"A1": "x"},
	})

	tests := []struct {
		name  string
		path  string
		sheet string
		want  error
	}{
		{"missing sheet", path, "Nope", ErrSheetNotFound},
		{"empty sheet", path, "Blank", ErrEmptySheet},
		{"unsupported extension", filepath.Join(t.TempDir(), "doc.txt"), "", ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(tt.path, tt.sheet)
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadTable() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadTable_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	content := "\xef\xbb\xbfitem,cost\nwidget,12\ngadget\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	props, err := Properties(path)
	if err != nil {
		t.Fatalf("Properties() error = %v", err)
	}
	if len(props) != 1 || props[0].Name != "prices" {
		t.Fatalf("Properties() = %+v, want single sheet %q", props, "prices")
	}

	tbl, err := ReadTable(path, "prices")
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if got := tbl.Rows[0][0]; got != "item" {
		t.Errorf("cell(0,0) = %q, want BOM stripped %q", got, "item")
	}
	if got := tbl.Rows[1][1]; got != int64(12) {
		t.Errorf("cell(1,1) = %v (%T), want int64(12)", got, got)
	}
	if got := tbl.Rows[2][1]; got != nil {
		t.Errorf("cell(2,1) = %v, want nil", got)
	}

	if _, err := ReadTable(path, "other"); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("ReadTable(other) error = %v, want ErrSheetNotFound", err)
	}
}

func TestParseCSV_InvalidUTF8(t *testing.T) {
	rows, err := parseCSV(strings.NewReader("a\xffb,c\n"))
	if err != nil {
		t.Fatalf("parseCSV() error = %v", err)
	}
	if got := rows[0][0]; got != "a�b" {
		t.Errorf("rows[0][0] = %q, want replacement character", got)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{"hello", "hello"},
		{"", nil},
		{"   ", nil},
		{"0.25", 0.25},
		{"0", int64(0)},
		{"NaN", nil},
		{"nan", nil},
		{"#N/A", nil},
		{"007", "007"},
		{"+7", "+7"},
		{"1.50", "1.50"},
		{"1e3", "1e3"},
		{"-0", "-0"},
		{"Infinity", "Infinity"},
		{"+Inf", "+Inf"},
		{" 7", " 7"},
	}

	for _, tt := range tests {
		if got := parseValue(tt.input); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v (%T)", tt.input, got, got, tt.want, tt.want)
		}
	}
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadTable_NaNCellsCompareIdentical(t *testing.T) {
	path := writeCSV(t, "nan.csv", "x,NaN\ny,nan\n")

	a, err := ReadTable(path, "nan")
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	b, err := ReadTable(path, "nan")
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	res, err := tablediff.AlignAndDiff(a, b)
	if err != nil {
		t.Fatalf("AlignAndDiff() error = %v", err)
	}
	if !res.Identical() {
		t.Errorf("sheet differs from itself: rows=%v cells=%v", res.DifferingRows, res.CellDiffs)
	}
	if got := res.Left.Rows[0][1]; got != tablediff.Placeholder {
		t.Errorf("NaN cell = %v, want placeholder", got)
	}
}

func TestReadTable_NumberTextIsNotCoerced(t *testing.T) {
	a, err := ReadTable(writeCSV(t, "a.csv", "007,+7,Infinity,1.50\n"), "a")
	if err != nil {
		t.Fatalf("ReadTable(a) error = %v", err)
	}
	b, err := ReadTable(writeCSV(t, "b.csv", "7,7,+Inf,1.5\n"), "b")
	if err != nil {
		t.Fatalf("ReadTable(b) error = %v", err)
	}

	res, err := tablediff.AlignAndDiff(a, b)
	if err != nil {
		t.Fatalf("AlignAndDiff() error = %v", err)
	}
	if len(res.CellDiffs) != 4 {
		t.Errorf("CellDiffs = %v, want all 4 cells flagged", res.CellDiffs)
	}
	if got := a.Rows[0][0]; got != "007" {
		t.Errorf("cell(0,0) = %v (%T), want text %q", got, got, "007")
	}
}
