package mapper

import (
	"fmt"
	"slices"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridframe/internal/serialize"
	"github.com/hugr-lab/gridframe/table"
)

// Key holds the index values of one row, in index column order.
// Values are strings for String index columns and ints for Int index columns.
type Key []any

// Str returns the i-th key value as a string ("" if it is not one).
func (k Key) Str(i int) string {
	if i >= len(k) {
		return ""
	}
	s, _ := k[i].(string)
	return s
}

// Int returns the i-th key value as an int (0 if it is not one).
func (k Key) Int(i int) int {
	if i >= len(k) {
		return 0
	}
	v, _ := k[i].(int)
	return v
}

func (k Key) String() string {
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "|")
}

// Mapper is an immutable binding between a container type and a table schema.
// It holds no per-call state and is safe for concurrent use.
type Mapper[C, I any] struct {
	items  ItemsFunc[C, I]
	lookup LookupFunc[C, I]
	index  []*column[I]
	data   []*column[I]
	byName map[string]*column[I]
}

// Schema returns the descriptors of all columns, index columns first.
func (m *Mapper[C, I]) Schema() []table.ColumnDescriptor {
	out := make([]table.ColumnDescriptor, 0, len(m.index)+len(m.data))
	for _, col := range m.index {
		out = append(out, col.desc)
	}
	for _, col := range m.data {
		out = append(out, col.desc)
	}
	return out
}

// ArrowSchema returns the schema produced for a filter.
func (m *Mapper[C, I]) ArrowSchema(filter Filter) (*arrow.Schema, error) {
	cols, err := m.selected(filter)
	if err != nil {
		return nil, err
	}
	descs := make([]table.ColumnDescriptor, len(cols))
	for i, col := range cols {
		descs[i] = col.desc
	}
	return table.NewSchema(descs), nil
}

func (m *Mapper[C, I]) selected(filter Filter) ([]*column[I], error) {
	out := make([]*column[I], 0, len(m.index)+len(m.data))
	out = append(out, m.index...)

	switch filter.mode {
	case allMode:
		out = append(out, m.data...)
	case explicitMode:
		wanted := make(map[string]bool, len(filter.names))
		for _, name := range filter.names {
			col, ok := m.byName[name]
			if !ok {
				return nil, &table.SchemaError{Column: name, Msg: "no such column"}
			}
			if !col.desc.Index {
				wanted[name] = true
			}
		}
		for _, col := range m.data {
			if wanted[col.desc.Name] {
				out = append(out, col)
			}
		}
	default:
		for _, col := range m.data {
			if col.desc.Default {
				out = append(out, col)
			}
		}
	}
	return out, nil
}

// Produce builds one Series per selected column and hands it to emit, one at
// a time, in column order. Each series is released once emit returns; emit
// must Retain it to keep it longer. Production stops at the first emit error.
func (m *Mapper[C, I]) Produce(container C, filter Filter, mem memory.Allocator, emit func(*table.Series) error) error {
	cols, err := m.selected(filter)
	if err != nil {
		return err
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	items := m.items(container)
	for _, col := range cols {
		arr := col.produce(items, mem)
		s, err := table.NewSeries(col.desc, arr)
		arr.Release()
		if err != nil {
			return err
		}
		err = emit(s)
		s.Release()
		if err != nil {
			return fmt.Errorf("emit %s: %w", col.desc.Name, err)
		}
	}
	return nil
}

// ProduceAll collects every produced series. The caller owns the returned
// series and must release each of them.
func (m *Mapper[C, I]) ProduceAll(container C, filter Filter, mem memory.Allocator) ([]*table.Series, error) {
	var out []*table.Series
	err := m.Produce(container, filter, mem, func(s *table.Series) error {
		s.Retain()
		out = append(out, s)
		return nil
	})
	if err != nil {
		for _, s := range out {
			s.Release()
		}
		return nil, err
	}
	return out, nil
}

// NewRecord produces the selected columns as a single Arrow record.
// Caller MUST call Release on the record.
func (m *Mapper[C, I]) NewRecord(container C, filter Filter, mem memory.Allocator) (arrow.Record, error) {
	series, err := m.ProduceAll(container, filter, mem)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, s := range series {
			s.Release()
		}
	}()
	return serialize.NewRecord(series)
}

// update is one input column resolved against its binding.
type update[I any] struct {
	col    *column[I]
	series *table.Series
}

// ApplyUpdates writes the values of tbl into the items of container.
//
// The table is validated first: a missing index column, an absent index value,
// an unknown or read-only column, a column of the wrong kind, or an enum value
// outside the column's values is a schema error and nothing is applied. Rows
// are then applied in order: rows whose index matches no item are skipped, and
// setters are called only for values that are present, so omitted columns and
// absent values never reset an attribute. When two rows share an index the
// later one wins.
//
// A setter error stops the call at the failing row. Rows before it stay
// applied, and the returned count covers them alongside the error.
//
// Returns the number of rows that matched an item.
func (m *Mapper[C, I]) ApplyUpdates(container C, tbl *table.UpdatingTable) (int, error) {
	if tbl == nil {
		return 0, &table.SchemaError{Msg: "update table is nil"}
	}

	keys := make([]*table.Series, len(m.index))
	for i, col := range m.index {
		pos := tbl.Position(col.desc.Name)
		if pos < 0 {
			return 0, &table.SchemaError{Table: tbl.Name(), Column: col.desc.Name, Msg: "index column missing"}
		}
		s := tbl.ColumnAt(pos)
		if s.Kind() != col.desc.Kind {
			return 0, &table.SchemaError{Table: tbl.Name(), Column: col.desc.Name,
				Msg: fmt.Sprintf("index is %s, expected %s", s.Kind(), col.desc.Kind)}
		}
		for row := 0; row < s.Len(); row++ {
			if !s.IsPresent(row) {
				return 0, &table.SchemaError{Table: tbl.Name(), Column: col.desc.Name,
					Msg: fmt.Sprintf("missing index value at row %d", row)}
			}
		}
		keys[i] = s
	}

	var updates []update[I]
	for _, s := range tbl.Columns() {
		col, ok := m.byName[s.Name()]
		if !ok {
			return 0, &table.SchemaError{Table: tbl.Name(), Column: s.Name(), Msg: "no such column"}
		}
		if col.desc.Index {
			continue
		}
		if col.apply == nil {
			return 0, &table.SchemaError{Table: tbl.Name(), Column: s.Name(), Msg: "column is not modifiable"}
		}
		if !kindCompatible(col.desc.Kind, s.Kind()) {
			return 0, &table.SchemaError{Table: tbl.Name(), Column: s.Name(),
				Msg: fmt.Sprintf("got %s values, expected %s", s.Kind(), col.desc.Kind)}
		}
		if col.desc.Kind == table.Enum {
			if err := checkEnum(tbl.Name(), col.desc, s); err != nil {
				return 0, err
			}
		}
		updates = append(updates, update[I]{col: col, series: s})
	}

	applied := 0
	for row := 0; row < tbl.NumRows(); row++ {
		key := make(Key, len(keys))
		for i, s := range keys {
			v, _, err := m.index[i].key(s, row)
			if err != nil {
				return applied, err
			}
			key[i] = v
		}
		item, ok := m.lookup(container, key)
		if !ok {
			continue
		}
		for _, u := range updates {
			if !u.series.IsPresent(row) {
				continue
			}
			if err := u.col.apply(item, u.series, row); err != nil {
				return applied, fmt.Errorf("update %s at row %d (%s): %w", u.col.desc.Name, row, key, err)
			}
		}
		applied++
	}
	return applied, nil
}

// checkEnum verifies that every present value of s names one of the values
// of an enum column, by name or by ordinal.
func checkEnum(tableName string, desc table.ColumnDescriptor, s *table.Series) error {
	for row := 0; row < s.Len(); row++ {
		if s.Kind() == table.String {
			name, ok, err := s.StringAt(row)
			if err != nil {
				return err
			}
			if ok && !slices.Contains(desc.EnumValues, name) {
				return &table.SchemaError{Table: tableName, Column: desc.Name,
					Msg: fmt.Sprintf("unknown value %q at row %d", name, row)}
			}
			continue
		}
		v, ok, err := s.EnumAt(row)
		if err != nil {
			return &table.SchemaError{Table: tableName, Column: desc.Name, Msg: err.Error()}
		}
		if ok && v >= len(desc.EnumValues) {
			return &table.SchemaError{Table: tableName, Column: desc.Name,
				Msg: fmt.Sprintf("ordinal %d out of range at row %d", v, row)}
		}
	}
	return nil
}

func kindCompatible(want, got table.Kind) bool {
	if want == got {
		return true
	}
	return want == table.Enum && got == table.String
}
