package pdfdiff

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Op is one edit between the lines of two pages. Tag is "equal", "replace",
// "delete" or "insert"; [I1,I2) indexes the first page, [J1,J2) the second.
type Op struct {
	Tag string `json:"tag"`
	I1  int    `json:"i1"`
	I2  int    `json:"i2"`
	J1  int    `json:"j1"`
	J2  int    `json:"j2"`
}

// PageDiff compares one page of each document. A page missing from one
// side compares as an empty page.
type PageDiff struct {
	Number  int      `json:"number"`
	Before  []string `json:"before"`
	After   []string `json:"after"`
	Ops     []Op     `json:"ops"`
	Changed bool     `json:"changed"`
}

// ChangedAfter reports whether line j of the second page is part of an edit.
func (d PageDiff) ChangedAfter(j int) bool {
	for _, op := range d.Ops {
		if op.Tag != "equal" && j >= op.J1 && j < op.J2 {
			return true
		}
	}
	return false
}

// ChangedBefore reports whether line i of the first page is part of an edit.
func (d PageDiff) ChangedBefore(i int) bool {
	for _, op := range d.Ops {
		if op.Tag != "equal" && i >= op.I1 && i < op.I2 {
			return true
		}
	}
	return false
}

var tags = map[byte]string{
	'e': "equal",
	'r': "replace",
	'd': "delete",
	'i': "insert",
}

// ComparePages pairs pages by position and diffs their lines.
func ComparePages(a, b []Page) []PageDiff {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	diffs := make([]PageDiff, n)
	for i := 0; i < n; i++ {
		var before, after []string
		if i < len(a) {
			before = a[i].Lines
		}
		if i < len(b) {
			after = b[i].Lines
		}
		diffs[i] = compareLines(i+1, before, after)
	}
	return diffs
}

func compareLines(number int, before, after []string) PageDiff {
	d := PageDiff{Number: number, Before: before, After: after}

	if len(before) == 0 && len(after) == 0 {
		return d
	}

	for _, oc := range difflib.NewMatcher(before, after).GetOpCodes() {
		tag := tags[oc.Tag]
		if tag != "equal" {
			d.Changed = true
		}
		d.Ops = append(d.Ops, Op{Tag: tag, I1: oc.I1, I2: oc.I2, J1: oc.J1, J2: oc.J2})
	}
	return d
}

// ChangedPages returns the numbers of pages that differ.
func ChangedPages(diffs []PageDiff) []int {
	pages := []int{}
	for _, d := range diffs {
		if d.Changed {
			pages = append(pages, d.Number)
		}
	}
	return pages
}
