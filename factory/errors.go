package factory

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTable = errors.New("table missing")
	ErrMalformedRow = errors.New("malformed table row")
	ErrMissingCell  = errors.New("cell missing")
	ErrNotANumber   = errors.New("cell is not a number")
	ErrNotAString   = errors.New("cell is not a string")
)

// RowError reports a row with the wrong number of cells.
// Got is -1 when the row is neither a list nor an object.
type RowError struct {
	Table string
	Row   int
	Want  int
	Got   int
}

func (e *RowError) Error() string {
	if e.Got < 0 {
		return fmt.Sprintf("%s row %d: expected a list or an object", e.Table, e.Row)
	}
	return fmt.Sprintf("%s row %d: expected %d cells, got %d", e.Table, e.Row, e.Want, e.Got)
}

func (e *RowError) Unwrap() error {
	return ErrMalformedRow
}

// CellError reports one bad cell.
type CellError struct {
	Table  string
	Row    int
	Column string
	Value  interface{}
	Err    error
}

func (e *CellError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s row %d, %s: %v", e.Table, e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("%s row %d, %s: %v (%v)", e.Table, e.Row, e.Column, e.Err, e.Value)
}

func (e *CellError) Unwrap() error {
	return e.Err
}
