package tablediff

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func mustTable(t *testing.T, rows ...[]any) Table {
	t.Helper()
	tbl, err := NewTable(rows)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return tbl
}

func TestEqualize_RowCounts(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Table
		wantN int
	}{
		{
			name:  "first longer",
			a:     mustTable(t, []any{"a"}, []any{"b"}, []any{"c"}),
			b:     mustTable(t, []any{"a"}),
			wantN: 3,
		},
		{
			name:  "second longer",
			a:     mustTable(t, []any{"a", "b"}),
			b:     mustTable(t, []any{1}, []any{2}),
			wantN: 2,
		},
		{
			name:  "equal lengths",
			a:     mustTable(t, []any{"a"}, []any{"b"}),
			b:     mustTable(t, []any{"c"}, []any{"d"}),
			wantN: 2,
		},
		{
			name:  "both empty",
			a:     Table{},
			b:     Table{},
			wantN: 0,
		},
		{
			name:  "one empty",
			a:     Table{},
			b:     mustTable(t, []any{"x", "y"}),
			wantN: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := Equalize(tt.a, tt.b)
			if a.Len() != tt.wantN || b.Len() != tt.wantN {
				t.Errorf("Equalize() lengths = %d, %d, want %d", a.Len(), b.Len(), tt.wantN)
			}
		})
	}
}

func TestEqualize_PaddingUsesOwnColumns(t *testing.T) {
	a := mustTable(t, []any{"x", "y", "z"}, []any{"x", "y", "z"})
	b := mustTable(t, []any{"x"})

	_, got := Equalize(a, b)

	want := Row{0: Placeholder}
	if !reflect.DeepEqual(got.Rows[1], want) {
		t.Errorf("padding row = %v, want %v", got.Rows[1], want)
	}
}

func TestEqualize_NormalizesBlanks(t *testing.T) {
	a := Table{
		Columns: []ColumnID{0, 1},
		Rows:    []Row{{0: nil, 1: "kept"}, {1: 3.5}},
	}

	got, _ := Equalize(a, Table{})

	want := []Row{{0: Placeholder, 1: "kept"}, {0: Placeholder, 1: 3.5}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("rows = %v, want %v", got.Rows, want)
	}
}

func TestEqualize_DoesNotMutateInputs(t *testing.T) {
	a := mustTable(t, []any{nil, "y"}, []any{"x", nil})
	b := mustTable(t, []any{"x", "y"})
	before := a.Clone()

	Equalize(a, b)

	if !reflect.DeepEqual(a, before) {
		t.Errorf("input mutated: %v, want %v", a, before)
	}
	if b.Len() != 1 {
		t.Errorf("second input grew to %d rows", b.Len())
	}
}

func TestEqualize_Idempotent(t *testing.T) {
	a := mustTable(t, []any{nil, "y"}, []any{"x", nil})
	b := mustTable(t, []any{"x"})

	a1, b1 := Equalize(a, b)
	a2, b2 := Equalize(a1, b1)

	if !reflect.DeepEqual(a1, a2) || !reflect.DeepEqual(b1, b2) {
		t.Error("second Equalize() changed already-equalized tables")
	}
}

func TestCommonColumns(t *testing.T) {
	a := Table{Columns: []ColumnID{3, 0, 2, 1}}
	b := Table{Columns: []ColumnID{1, 2, 5}}

	got := CommonColumns(a, b)

	want := []ColumnID{2, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CommonColumns() = %v, want %v", got, want)
	}
}

func TestDifferingRows(t *testing.T) {
	tests := []struct {
		name string
		a, b Table
		want []int
	}{
		{
			name: "identical tables",
			a:    mustTable(t, []any{"a", int64(1)}, []any{"b", int64(2)}),
			b:    mustTable(t, []any{"a", int64(1)}, []any{"b", int64(2)}),
			want: []int{},
		},
		{
			name: "one changed cell",
			a:    mustTable(t, []any{"a"}, []any{"b"}, []any{"c"}),
			b:    mustTable(t, []any{"a"}, []any{"B"}, []any{"c"}),
			want: []int{1},
		},
		{
			name: "no type coercion",
			a:    mustTable(t, []any{int64(1)}),
			b:    mustTable(t, []any{float64(1)}),
			want: []int{0},
		},
		{
			name: "column only in second makes every row differ",
			a:    mustTable(t, []any{"a"}, []any{"b"}),
			b:    mustTable(t, []any{"a", "x"}, []any{"b", "y"}),
			want: []int{0, 1},
		},
		{
			name: "column only in first makes every row differ",
			a:    mustTable(t, []any{"a", "x"}),
			b:    mustTable(t, []any{"a"}),
			want: []int{0},
		},
		{
			name: "rows beyond shorter table differ",
			a:    mustTable(t, []any{"a"}, []any{"b"}),
			b:    mustTable(t, []any{"a"}),
			want: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DifferingRows(tt.a, tt.b)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DifferingRows() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommonRowIndices(t *testing.T) {
	a := mustTable(t, []any{1}, []any{2}, []any{3})
	b := mustTable(t, []any{1}, []any{2})

	got := CommonRowIndices(a, b)

	if !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("CommonRowIndices() = %v, want [0 1]", got)
	}
}

func TestCellDiffs_OrderIsColumnThenRow(t *testing.T) {
	a := mustTable(t, []any{"a", "b"}, []any{"c", "d"})
	b := mustTable(t, []any{"A", "B"}, []any{"C", "d"})

	got := CellDiffs(a, b, CommonRowIndices(a, b))

	want := []CellDiff{
		{Row: 0, Position: 0, Column: 0, Value: "A"},
		{Row: 1, Position: 0, Column: 0, Value: "C"},
		{Row: 0, Position: 1, Column: 1, Value: "B"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CellDiffs() = %v, want %v", got, want)
	}
}

func TestCellDiffs_PositionIsWithinSecondTable(t *testing.T) {
	a := Table{
		Columns: []ColumnID{0, 1, 2},
		Rows:    []Row{{0: "a", 1: "b", 2: "c"}},
	}
	b := Table{
		Columns: []ColumnID{2, 0},
		Rows:    []Row{{2: "changed", 0: "a"}},
	}

	got := CellDiffs(a, b, []int{0})

	want := []CellDiff{{Row: 0, Position: 0, Column: 2, Value: "changed"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CellDiffs() = %v, want %v", got, want)
	}
	for _, d := range got {
		if b.Columns[d.Position] != d.Column {
			t.Errorf("diff %v: position does not index its column in the second table", d)
		}
	}
}

func TestCellDiffs_FirstOnlyColumnsAreInvisible(t *testing.T) {
	a := mustTable(t, []any{"a", "only-in-first"})
	b := mustTable(t, []any{"a"})

	if got := CellDiffs(a, b, []int{0}); len(got) != 0 {
		t.Errorf("CellDiffs() = %v, want none", got)
	}
}

func TestAlignAndDiff_PaddedSecondTable(t *testing.T) {
	a := mustTable(t, []any{"x", "y"}, []any{"x", "z"})
	b := mustTable(t, []any{"x", "y"})

	res, err := AlignAndDiff(a, b)
	if err != nil {
		t.Fatalf("AlignAndDiff() error = %v", err)
	}

	wantRight := []Row{{0: "x", 1: "y"}, {0: Placeholder, 1: Placeholder}}
	if !reflect.DeepEqual(res.Right.Rows, wantRight) {
		t.Errorf("Right.Rows = %v, want %v", res.Right.Rows, wantRight)
	}
	if !reflect.DeepEqual(res.DifferingRows, []int{1}) {
		t.Errorf("DifferingRows = %v, want [1]", res.DifferingRows)
	}

	for _, want := range []CellDiff{
		{Row: 1, Position: 1, Column: 1, Value: Placeholder},
		{Row: 1, Position: 0, Column: 0, Value: Placeholder},
	} {
		if !containsDiff(res.CellDiffs, want) {
			t.Errorf("CellDiffs = %v, missing %v", res.CellDiffs, want)
		}
	}
	if len(res.CellDiffs) != 2 {
		t.Errorf("len(CellDiffs) = %d, want 2", len(res.CellDiffs))
	}
}

func TestAlignAndDiff_ColumnOnlyInSecond(t *testing.T) {
	a := mustTable(t, []any{"a", "b"})
	b := mustTable(t, []any{"a", "b", "new"})

	res, err := AlignAndDiff(a, b)
	if err != nil {
		t.Fatalf("AlignAndDiff() error = %v", err)
	}

	if !reflect.DeepEqual(res.CommonColumns, []ColumnID{0, 1}) {
		t.Errorf("CommonColumns = %v, want [0 1]", res.CommonColumns)
	}
	want := CellDiff{Row: 0, Position: 2, Column: 2, Value: "new"}
	if !containsDiff(res.CellDiffs, want) {
		t.Errorf("CellDiffs = %v, missing %v", res.CellDiffs, want)
	}
}

func TestAlignAndDiff_BothEmpty(t *testing.T) {
	res, err := AlignAndDiff(Table{}, Table{})
	if err != nil {
		t.Fatalf("AlignAndDiff() error = %v", err)
	}

	if res.Left.Len() != 0 || res.Right.Len() != 0 {
		t.Errorf("equalized lengths = %d, %d, want 0", res.Left.Len(), res.Right.Len())
	}
	if len(res.DifferingRows) != 0 || len(res.CellDiffs) != 0 {
		t.Errorf("got diffs %v %v, want none", res.DifferingRows, res.CellDiffs)
	}
	if !res.Identical() {
		t.Error("Identical() = false, want true")
	}
}

func TestAlignAndDiff_IdenticalTables(t *testing.T) {
	a := mustTable(t, []any{"a", nil}, []any{int64(3), 4.5})
	b := mustTable(t, []any{"a", nil}, []any{int64(3), 4.5})

	res, err := AlignAndDiff(a, b)
	if err != nil {
		t.Fatalf("AlignAndDiff() error = %v", err)
	}
	if !res.Identical() {
		t.Errorf("got diffs %v %v, want none", res.DifferingRows, res.CellDiffs)
	}
}

func TestAlignAndDiff_Completeness(t *testing.T) {
	a := mustTable(t,
		[]any{"a", "b", "c"},
		[]any{"d", nil, "f"},
		[]any{"g", "h", "i"},
	)
	b := mustTable(t,
		[]any{"a", "B", "c"},
		[]any{"d", "e", "f"},
	)

	res, err := AlignAndDiff(a, b)
	if err != nil {
		t.Fatalf("AlignAndDiff() error = %v", err)
	}

	for i := range res.Left.Rows {
		for pos, c := range res.Right.Columns {
			if !res.Left.HasColumn(c) {
				continue
			}
			if res.Left.Rows[i][c] == res.Right.Rows[i][c] {
				continue
			}
			if !res.RowDiffers(i) {
				t.Errorf("row %d not reported as differing", i)
			}
			if !res.CellDiffers(i, pos) {
				t.Errorf("cell (%d, %d) not reported", i, pos)
			}
		}
	}
	for _, d := range res.CellDiffs {
		if d.Value != res.Right.Rows[d.Row][d.Column] {
			t.Errorf("diff %v does not carry the second table's value", d)
		}
	}
}

func TestAlignAndDiff_ShapeErrors(t *testing.T) {
	good := mustTable(t, []any{"a"})

	tests := []struct {
		name string
		a, b Table
	}{
		{
			name: "unknown column in row",
			a:    Table{Columns: []ColumnID{0}, Rows: []Row{{0: "a", 7: "b"}}},
			b:    good,
		},
		{
			name: "duplicate column",
			a:    good,
			b:    Table{Columns: []ColumnID{0, 0}, Rows: []Row{{0: "a"}}},
		},
		{
			name: "non-scalar cell",
			a:    Table{Columns: []ColumnID{0}, Rows: []Row{{0: []string{"x"}}}},
			b:    good,
		},
		{
			name: "NaN cell",
			a:    good,
			b:    Table{Columns: []ColumnID{0}, Rows: []Row{{0: math.NaN()}}},
		},
		{
			name: "float32 NaN cell",
			a:    Table{Columns: []ColumnID{0}, Rows: []Row{{0: float32(math.NaN())}}},
			b:    good,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AlignAndDiff(tt.a, tt.b)
			if !errors.Is(err, ErrShape) {
				t.Fatalf("AlignAndDiff() error = %v, want ErrShape", err)
			}
			var se *ShapeError
			if !errors.As(err, &se) || se.Table == "" {
				t.Errorf("error %v does not name the malformed table", err)
			}
		})
	}
}

func TestNewTable_RaggedRows(t *testing.T) {
	_, err := NewTable([][]any{{"a", "b"}, {"c"}})
	if !errors.Is(err, ErrShape) {
		t.Errorf("NewTable() error = %v, want ErrShape", err)
	}
}

func containsDiff(diffs []CellDiff, want CellDiff) bool {
	for _, d := range diffs {
		if d == want {
			return true
		}
	}
	return false
}
