package tablediff

import (
	"errors"
	"fmt"
)

// ErrShape is the sentinel wrapped by every ShapeError.
var ErrShape = errors.New("malformed table")

// ShapeError reports a table that is not rectangular.
type ShapeError struct {
	Table  string // "first" or "second" when known
	Row    int    // -1 for column-level problems
	Reason string
}

func (e *ShapeError) Error() string {
	where := "table"
	if e.Table != "" {
		where = e.Table + " table"
	}
	if e.Row < 0 {
		return fmt.Sprintf("malformed %s: %s", where, e.Reason)
	}
	return fmt.Sprintf("malformed %s: row %d %s", where, e.Row, e.Reason)
}

func (e *ShapeError) Unwrap() error {
	return ErrShape
}
