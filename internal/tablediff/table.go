// Package tablediff aligns two headerless tables and reports where they differ.
//
// Tables are compared positionally: row i of the first table is compared to
// row i of the second, and columns are matched by their 0-based position in
// the source sheet. The shorter table is padded with placeholder rows so that
// both sides render with the same number of rows.
//
// The package performs no I/O and holds no shared state. Callers parse files
// into [Table] values, call [AlignAndDiff], and render the [Result].
package tablediff

import (
	"fmt"
	"math"
)

// Placeholder replaces blank cells and fills padding rows.
const Placeholder = "-"

// ColumnID identifies a column by its 0-based position in the source sheet.
type ColumnID int

// Row maps a column to its cell value. A missing key is a blank cell.
// Cell values are scalars: string, bool, integer or float types, or nil.
type Row map[ColumnID]any

// Table is an ordered sequence of rows sharing one ordered column set.
type Table struct {
	Columns []ColumnID `json:"columns"`
	Rows    []Row      `json:"rows"`
}

// NewTable builds a table from positional rows. Every row must have the same
// width; column ids are assigned 0..width-1.
func NewTable(rows [][]any) (Table, error) {
	if len(rows) == 0 {
		return Table{}, nil
	}

	width := len(rows[0])
	t := Table{
		Columns: make([]ColumnID, width),
		Rows:    make([]Row, len(rows)),
	}
	for c := range t.Columns {
		t.Columns[c] = ColumnID(c)
	}

	for i, values := range rows {
		if len(values) != width {
			return Table{}, &ShapeError{
				Row:    i,
				Reason: fmt.Sprintf("has %d cells, want %d", len(values), width),
			}
		}
		row := make(Row, width)
		for c, v := range values {
			row[ColumnID(c)] = v
		}
		t.Rows[i] = row
	}

	return t, nil
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether id is part of the table's column set.
func (t Table) HasColumn(id ColumnID) bool {
	for _, c := range t.Columns {
		if c == id {
			return true
		}
	}
	return false
}

// Position returns the index of id within Columns, or -1.
func (t Table) Position(id ColumnID) int {
	for i, c := range t.Columns {
		if c == id {
			return i
		}
	}
	return -1
}

// Values returns row i as a slice ordered by Columns.
func (t Table) Values(i int) []any {
	out := make([]any, len(t.Columns))
	for p, c := range t.Columns {
		out[p] = t.Rows[i][c]
	}
	return out
}

// Clone returns a deep copy of the table. Rows never alias the receiver.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]ColumnID(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Validate checks that the table is rectangular: column ids are unique, rows
// only reference known columns, and every cell holds a scalar.
func (t Table) Validate() error {
	seen := make(map[ColumnID]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if _, dup := seen[c]; dup {
			return &ShapeError{Row: -1, Reason: fmt.Sprintf("duplicate column %d", c)}
		}
		seen[c] = struct{}{}
	}

	for i, row := range t.Rows {
		for c, v := range row {
			if _, ok := seen[c]; !ok {
				return &ShapeError{Row: i, Reason: fmt.Sprintf("unknown column %d", c)}
			}
			if !isScalar(v) {
				return &ShapeError{Row: i, Reason: fmt.Sprintf("column %d holds non-scalar %T", c, v)}
			}
			if isNaN(v) {
				return &ShapeError{Row: i, Reason: fmt.Sprintf("column %d holds NaN", c)}
			}
		}
	}
	return nil
}

// isNaN reports whether v is a NaN float. NaN is unequal to itself, so a
// table holding one would never compare equal to its own copy.
func isNaN(v any) bool {
	switch x := v.(type) {
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// pad appends n rows with a placeholder in every column.
func (t *Table) pad(n int) {
	for ; n > 0; n-- {
		row := make(Row, len(t.Columns))
		for _, c := range t.Columns {
			row[c] = Placeholder
		}
		t.Rows = append(t.Rows, row)
	}
}

// fillBlanks replaces nil and missing cells with the placeholder.
func (t *Table) fillBlanks() {
	for _, row := range t.Rows {
		for _, c := range t.Columns {
			if v, ok := row[c]; !ok || v == nil {
				row[c] = Placeholder
			}
		}
	}
}

// Equal reports whether a and b have the same columns in the same order and
// the same cell values in every row. Missing cells compare equal to nil.
func Equal(a, b Table) bool {
	if len(a.Columns) != len(b.Columns) || len(a.Rows) != len(b.Rows) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	for i := range a.Rows {
		for _, c := range a.Columns {
			if a.Rows[i][c] != b.Rows[i][c] {
				return false
			}
		}
	}
	return true
}
