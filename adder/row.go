package adder

import (
	"fmt"

	"github.com/hugr-lab/gridframe/table"
)

// RowView reads one row of one input table.
// Every Apply method calls its setter only when the column was supplied and
// the row holds a present value; it never calls a setter with a default.
type RowView struct {
	tbl *table.UpdatingTable
	row int
}

// NewRowView returns a view of row in tbl.
func NewRowView(tbl *table.UpdatingTable, row int) RowView {
	return RowView{tbl: tbl, row: row}
}

// Row returns the row number within its table.
func (v RowView) Row() int { return v.row }

// Has reports whether the column was supplied and holds a value at this row.
func (v RowView) Has(name string) bool {
	s, ok := v.column(name)
	return ok && s.IsPresent(v.row)
}

func (v RowView) column(name string) (*table.Series, bool) {
	if v.tbl == nil {
		return nil, false
	}
	return v.tbl.Column(name)
}

// String returns the value of a string column.
func (v RowView) String(name string) (string, bool) {
	s, ok := v.column(name)
	if !ok {
		return "", false
	}
	val, present, err := s.StringAt(v.row)
	return val, present && err == nil
}

// Int returns the value of an integer column.
func (v RowView) Int(name string) (int, bool) {
	s, ok := v.column(name)
	if !ok {
		return 0, false
	}
	val, present, err := s.IntAt(v.row)
	return val, present && err == nil
}

// Double returns the value of a floating point column. NaN is absent.
func (v RowView) Double(name string) (float64, bool) {
	s, ok := v.column(name)
	if !ok {
		return 0, false
	}
	val, present, err := s.DoubleAt(v.row)
	return val, present && err == nil
}

// Bool returns the value of a boolean column.
func (v RowView) Bool(name string) (bool, bool) {
	s, ok := v.column(name)
	if !ok {
		return false, false
	}
	val, present, err := s.BoolAt(v.row)
	return val, present && err == nil
}

// Enum returns the ordinal of an enum column within values. The column may
// carry ordinals or value names; a name outside values is an error.
func (v RowView) Enum(name string, values []string) (int, bool, error) {
	s, ok := v.column(name)
	if !ok || !s.IsPresent(v.row) {
		return 0, false, nil
	}
	if s.Kind() == table.String {
		str, _, err := s.StringAt(v.row)
		if err != nil {
			return 0, false, err
		}
		for ord, val := range values {
			if val == str {
				return ord, true, nil
			}
		}
		return 0, false, fmt.Errorf("column %s: unknown value %q", name, str)
	}
	ord, _, err := s.EnumAt(v.row)
	if err != nil {
		return 0, false, err
	}
	if ord < 0 || ord >= len(values) {
		return 0, false, fmt.Errorf("column %s: ordinal %d out of range", name, ord)
	}
	return ord, true, nil
}

// ApplyString calls set with the value of a string column when present.
func (v RowView) ApplyString(name string, set func(string)) {
	if val, ok := v.String(name); ok {
		set(val)
	}
}

// ApplyInt calls set with the value of an integer column when present.
func (v RowView) ApplyInt(name string, set func(int)) {
	if val, ok := v.Int(name); ok {
		set(val)
	}
}

// ApplyDouble calls set with the value of a floating point column when present.
func (v RowView) ApplyDouble(name string, set func(float64)) {
	if val, ok := v.Double(name); ok {
		set(val)
	}
}

// ApplyBool calls set with the value of a boolean column when present.
func (v RowView) ApplyBool(name string, set func(bool)) {
	if val, ok := v.Bool(name); ok {
		set(val)
	}
}

// ApplyEnum calls set with the ordinal of an enum column when present.
func (v RowView) ApplyEnum(name string, values []string, set func(int)) error {
	ord, ok, err := v.Enum(name, values)
	if err != nil {
		return err
	}
	if ok {
		set(ord)
	}
	return nil
}

// Row is one primary row together with its correlated secondary rows.
type Row struct {
	// ID is the primary identifier of the row.
	ID string
	// Index is the row number in the primary table.
	Index int

	primary RowView
	related [][]RowView
}

// Primary returns the view of the primary row.
func (r *Row) Primary() RowView { return r.primary }

// Related returns the rows of secondary table k (k >= 1, in declaration
// order) that reference this row. The slice is empty, not nil, when the table
// was supplied but no row references this one, and nil when the table was
// omitted.
func (r *Row) Related(k int) []RowView {
	if k < 1 || k > len(r.related) {
		return nil
	}
	return r.related[k-1]
}

// HasTable reports whether secondary table k was supplied.
func (r *Row) HasTable(k int) bool {
	return r.Related(k) != nil
}

// Step applies some columns of a row to a builder value.
type Step[B any] func(v RowView, b B) error

// Apply runs steps in order and stops at the first error.
func Apply[B any](v RowView, b B, steps ...Step[B]) error {
	for _, step := range steps {
		if err := step(v, b); err != nil {
			return err
		}
	}
	return nil
}

// String returns a step applying a string column.
func String[B any](name string, set func(B, string)) Step[B] {
	return func(v RowView, b B) error {
		v.ApplyString(name, func(val string) { set(b, val) })
		return nil
	}
}

// Int returns a step applying an integer column.
func Int[B any](name string, set func(B, int)) Step[B] {
	return func(v RowView, b B) error {
		v.ApplyInt(name, func(val int) { set(b, val) })
		return nil
	}
}

// Double returns a step applying a floating point column.
func Double[B any](name string, set func(B, float64)) Step[B] {
	return func(v RowView, b B) error {
		v.ApplyDouble(name, func(val float64) { set(b, val) })
		return nil
	}
}

// Bool returns a step applying a boolean column.
func Bool[B any](name string, set func(B, bool)) Step[B] {
	return func(v RowView, b B) error {
		v.ApplyBool(name, func(val bool) { set(b, val) })
		return nil
	}
}

// Enum returns a step applying an enum column.
func Enum[B any](name string, values []string, set func(B, int)) Step[B] {
	return func(v RowView, b B) error {
		return v.ApplyEnum(name, values, func(val int) { set(b, val) })
	}
}
