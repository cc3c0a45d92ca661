package adder

import (
	"errors"
	"fmt"
)

var (
	// ErrShape is matched by every ShapeError.
	ErrShape = errors.New("table shape mismatch")

	// ErrUnknownModel is returned when a row selects a model variant that
	// does not exist.
	ErrUnknownModel = errors.New("unknown model")
)

// ShapeError reports a wrong number of input tables or a missing table.
// It is raised before any row is read.
type ShapeError struct {
	Category string
	Got      int
	Min      int
	Max      int
	Msg      string
}

func (e *ShapeError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("adder %s: %s", e.Category, e.Msg)
	}
	if e.Min == e.Max {
		return fmt.Sprintf("adder %s: got %d tables, expected %d", e.Category, e.Got, e.Min)
	}
	return fmt.Sprintf("adder %s: got %d tables, expected %d to %d", e.Category, e.Got, e.Min, e.Max)
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// RowError reports a primary row whose construction failed.
type RowError struct {
	Category string
	Row      int
	ID       string
	Err      error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("adder %s: row %d (%s): %v", e.Category, e.Row, e.ID, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
