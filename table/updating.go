package table

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// UpdatingTable is the input side of the boundary: an ordered set of columns
// supplied by a caller. Columns may be looked up by name or by a position
// resolved once with Position. A column that was not supplied is reported as
// absent rather than as an error.
type UpdatingTable struct {
	name      string
	columns   []*Series
	positions map[string]int
	index     []int
	rows      int
}

// NewUpdatingTable builds a table over the columns of an Arrow record.
// Column kinds and index flags are read from field metadata.
// The record's arrays are retained; call Release when done.
func NewUpdatingTable(name string, rec arrow.Record) (*UpdatingTable, error) {
	if rec == nil {
		return nil, schemaErr(name, "", "record is nil")
	}

	schema := rec.Schema()
	series := make([]*Series, 0, schema.NumFields())
	release := func() {
		for _, s := range series {
			s.Release()
		}
	}
	for i := 0; i < schema.NumFields(); i++ {
		desc, err := DescriptorOf(schema.Field(i))
		if err != nil {
			release()
			return nil, withTable(err, name)
		}
		s, err := NewSeries(desc, rec.Column(i))
		if err != nil {
			release()
			return nil, withTable(err, name)
		}
		series = append(series, s)
	}

	t, err := newUpdatingTable(name, series)
	if err != nil {
		release()
		return nil, err
	}
	return t, nil
}

// NewUpdatingTableFromSeries builds a table over existing series.
// Each series is retained; the caller keeps its own references.
func NewUpdatingTableFromSeries(name string, series ...*Series) (*UpdatingTable, error) {
	t, err := newUpdatingTable(name, series)
	if err != nil {
		return nil, err
	}
	for _, s := range series {
		s.Retain()
	}
	return t, nil
}

func newUpdatingTable(name string, series []*Series) (*UpdatingTable, error) {
	t := &UpdatingTable{
		name:      name,
		columns:   series,
		positions: make(map[string]int, len(series)),
		rows:      -1,
	}
	for i, s := range series {
		if s == nil {
			return nil, schemaErr(name, "", fmt.Sprintf("column %d is nil", i))
		}
		if _, dup := t.positions[s.Name()]; dup {
			return nil, schemaErr(name, s.Name(), "duplicate column")
		}
		if t.rows >= 0 && s.Len() != t.rows {
			return nil, schemaErr(name, s.Name(), fmt.Sprintf("has %d rows, expected %d", s.Len(), t.rows))
		}
		t.rows = s.Len()
		t.positions[s.Name()] = i
		if s.IsIndex() {
			t.index = append(t.index, i)
		}
	}
	if t.rows < 0 {
		t.rows = 0
	}
	return t, nil
}

func withTable(err error, name string) error {
	if se, ok := err.(*SchemaError); ok && se.Table == "" {
		se.Table = name
	}
	return err
}

// Name returns the table name used in error messages.
func (t *UpdatingTable) Name() string { return t.name }

// NumRows returns the number of rows.
func (t *UpdatingTable) NumRows() int { return t.rows }

// NumColumns returns the number of supplied columns.
func (t *UpdatingTable) NumColumns() int { return len(t.columns) }

// Position returns the position of the named column, or -1 if not supplied.
func (t *UpdatingTable) Position(name string) int {
	if pos, ok := t.positions[name]; ok {
		return pos
	}
	return -1
}

// Column returns the named column, or (nil, false) if not supplied.
func (t *UpdatingTable) Column(name string) (*Series, bool) {
	pos, ok := t.positions[name]
	if !ok {
		return nil, false
	}
	return t.columns[pos], true
}

// ColumnAt returns the column at a resolved position, or nil when out of range.
func (t *UpdatingTable) ColumnAt(pos int) *Series {
	if pos < 0 || pos >= len(t.columns) {
		return nil
	}
	return t.columns[pos]
}

// Columns returns all columns in order. The slice must not be modified.
func (t *UpdatingTable) Columns() []*Series { return t.columns }

// IndexColumns returns the columns flagged as index, in table order.
func (t *UpdatingTable) IndexColumns() []*Series {
	out := make([]*Series, len(t.index))
	for i, pos := range t.index {
		out[i] = t.columns[pos]
	}
	return out
}

// Release releases every column.
func (t *UpdatingTable) Release() {
	for _, s := range t.columns {
		s.Release()
	}
}
