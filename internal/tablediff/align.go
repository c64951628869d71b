package tablediff

import (
	"errors"
	"log/slog"
	"time"
)

// CellDiff is one cell of the second table whose value differs from the
// corresponding cell of the first table.
type CellDiff struct {
	Row      int      `json:"row"`      // row index after equalization
	Position int      `json:"position"` // index of Column within the second table's Columns
	Column   ColumnID `json:"column"`
	Value    any      `json:"value"` // always taken from the second table
}

// Result is the output of AlignAndDiff.
type Result struct {
	Left          Table      `json:"left"`
	Right         Table      `json:"right"`
	CommonColumns []ColumnID `json:"common_columns"`
	DifferingRows []int      `json:"differing_rows"`
	CellDiffs     []CellDiff `json:"cell_diffs"`

	rowSet  map[int]struct{}
	cellSet map[[2]int]struct{}
}

// RowDiffers reports whether row i is in DifferingRows.
func (r *Result) RowDiffers(i int) bool {
	if r.rowSet == nil {
		r.index()
	}
	_, ok := r.rowSet[i]
	return ok
}

// CellDiffers reports whether the right-hand cell at (row, position) is in
// CellDiffs.
func (r *Result) CellDiffers(row, position int) bool {
	if r.cellSet == nil {
		r.index()
	}
	_, ok := r.cellSet[[2]int{row, position}]
	return ok
}

// Identical reports whether no row and no cell differs.
func (r *Result) Identical() bool {
	return len(r.DifferingRows) == 0 && len(r.CellDiffs) == 0
}

func (r *Result) index() {
	r.rowSet = make(map[int]struct{}, len(r.DifferingRows))
	for _, i := range r.DifferingRows {
		r.rowSet[i] = struct{}{}
	}
	r.cellSet = make(map[[2]int]struct{}, len(r.CellDiffs))
	for _, d := range r.CellDiffs {
		r.cellSet[[2]int{d.Row, d.Position}] = struct{}{}
	}
}

// Equalize pads the shorter table with placeholder rows so both tables have
// the same row count, then replaces blank cells in both with Placeholder.
// Padding rows carry one placeholder per column of the table being padded.
// The inputs are not modified.
func Equalize(a, b Table) (Table, Table) {
	a, b = a.Clone(), b.Clone()

	switch {
	case len(a.Rows) > len(b.Rows):
		b.pad(len(a.Rows) - len(b.Rows))
	case len(b.Rows) > len(a.Rows):
		a.pad(len(b.Rows) - len(a.Rows))
	}

	a.fillBlanks()
	b.fillBlanks()
	return a, b
}

// CommonColumns returns the columns present in both tables, in a's order.
func CommonColumns(a, b Table) []ColumnID {
	inB := columnSet(b)
	common := make([]ColumnID, 0, len(a.Columns))
	for _, c := range a.Columns {
		if _, ok := inB[c]; ok {
			common = append(common, c)
		}
	}
	return common
}

// DifferingRows returns, in ascending order, the indices of rows that differ
// in any column of either table. A column present in only one table makes
// every row differ. Rows past the end of the shorter table also differ.
func DifferingRows(a, b Table) []int {
	differing := []int{}
	if Equal(a, b) {
		return differing
	}

	inA, inB := columnSet(a), columnSet(b)
	union := append([]ColumnID(nil), a.Columns...)
	for _, c := range b.Columns {
		if _, ok := inA[c]; !ok {
			union = append(union, c)
		}
	}

	n := max(len(a.Rows), len(b.Rows))
	for i := 0; i < n; i++ {
		if i >= len(a.Rows) || i >= len(b.Rows) {
			differing = append(differing, i)
			continue
		}
		for _, c := range union {
			_, okA := inA[c]
			_, okB := inB[c]
			if !okA || !okB || a.Rows[i][c] != b.Rows[i][c] {
				differing = append(differing, i)
				break
			}
		}
	}
	return differing
}

// CommonRowIndices returns the row indices present in both tables.
func CommonRowIndices(a, b Table) []int {
	n := min(len(a.Rows), len(b.Rows))
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// CellDiffs walks b's columns in order and, for each, the rows in common.
// A column shared with a yields a diff wherever the values are unequal; a
// column that exists only in b yields a diff for every row. Columns that
// exist only in a are not reported.
func CellDiffs(a, b Table, common []int) []CellDiff {
	inA := columnSet(a)
	diffs := []CellDiff{}

	for pos, c := range b.Columns {
		_, shared := inA[c]
		for _, i := range common {
			v := b.Rows[i][c]
			if shared && v == a.Rows[i][c] {
				continue
			}
			diffs = append(diffs, CellDiff{Row: i, Position: pos, Column: c, Value: v})
		}
	}
	return diffs
}

func columnSet(t Table) map[ColumnID]struct{} {
	set := make(map[ColumnID]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		set[c] = struct{}{}
	}
	return set
}

// Aligner runs the full align-and-diff pipeline. The zero value is not
// usable; construct one with NewAligner.
type Aligner struct {
	logger *slog.Logger
}

// Option configures an Aligner.
type Option func(*Aligner)

// WithLogger sets the logger used for diagnostics. A nil logger keeps the
// default, which discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aligner) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAligner returns an Aligner. Without options it logs nothing.
func NewAligner(opts ...Option) *Aligner {
	a := &Aligner{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAligner = NewAligner()

// AlignAndDiff validates, equalizes and diffs two tables with a silent
// Aligner.
func AlignAndDiff(a, b Table) (*Result, error) {
	return defaultAligner.AlignAndDiff(a, b)
}

// AlignAndDiff validates both tables, equalizes their row counts and
// computes the diff. It returns a *ShapeError if either table is malformed.
func (al *Aligner) AlignAndDiff(a, b Table) (*Result, error) {
	start := time.Now()

	if err := a.Validate(); err != nil {
		return nil, nameTable(err, "first")
	}
	if err := b.Validate(); err != nil {
		return nil, nameTable(err, "second")
	}

	left, right := Equalize(a, b)
	al.logger.Debug("tables equalized",
		"rows_first", a.Len(),
		"rows_second", b.Len(),
		"rows", left.Len(),
	)

	res := &Result{
		Left:          left,
		Right:         right,
		CommonColumns: CommonColumns(left, right),
		DifferingRows: DifferingRows(left, right),
	}
	res.CellDiffs = CellDiffs(left, right, CommonRowIndices(left, right))
	res.index()

	al.logger.Debug("tables compared",
		"common_columns", len(res.CommonColumns),
		"differing_rows", len(res.DifferingRows),
		"cell_diffs", len(res.CellDiffs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func nameTable(err error, name string) error {
	var se *ShapeError
	if errors.As(err, &se) {
		se.Table = name
	}
	return err
}
