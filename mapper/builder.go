// Package mapper binds named, typed columns to getter/setter pairs on domain
// objects.
//
// A Builder collects column bindings for one container type C holding items of
// type I. Build freezes them into an immutable Mapper that is reused for every
// call: Produce streams one Series per column out of a container, ApplyUpdates
// writes the present values of an UpdatingTable back into the matching items.
//
// Example:
//
//	m, err := mapper.NewBuilder[*Network, *Generator]().
//	    StringIndex("id", func(g *Generator) string { return g.ID }).
//	    Doubles("target_p",
//	        func(g *Generator) float64 { return g.TargetP },
//	        func(g *Generator, v float64) error { g.TargetP = v; return nil }).
//	    Build(
//	        func(n *Network) []*Generator { return n.Generators() },
//	        func(n *Network, k mapper.Key) (*Generator, bool) { return n.Generator(k.Str(0)) })
package mapper

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridframe/table"
)

// ItemsFunc lists the items of a container in production order.
type ItemsFunc[C, I any] func(container C) []I

// LookupFunc finds the item identified by key in a container.
type LookupFunc[C, I any] func(container C, key Key) (I, bool)

// ColumnOption adjusts a column registration.
type ColumnOption func(*table.ColumnDescriptor)

// NotDefault excludes the column from DefaultAttributes.
func NotDefault() ColumnOption {
	return func(d *table.ColumnDescriptor) { d.Default = false }
}

// column is one binding between a table column and an item attribute.
type column[I any] struct {
	desc    table.ColumnDescriptor
	produce func(items []I, mem memory.Allocator) arrow.Array
	apply   func(item I, s *table.Series, row int) error
	key     func(s *table.Series, row int) (any, bool, error)
}

// Builder collects column bindings. Not thread-safe - use only during initialization.
type Builder[C, I any] struct {
	columns []*column[I]
}

// NewBuilder creates an empty builder.
func NewBuilder[C, I any]() *Builder[C, I] {
	return &Builder[C, I]{}
}

func (b *Builder[C, I]) add(col *column[I], opts []ColumnOption) *Builder[C, I] {
	for _, opt := range opts {
		opt(&col.desc)
	}
	b.columns = append(b.columns, col)
	return b
}

// StringIndex declares a string index column. Calling StringIndex or IntIndex
// more than once declares a composite index, in call order.
func (b *Builder[C, I]) StringIndex(name string, get func(I) string) *Builder[C, I] {
	col := &column[I]{desc: table.ColumnDescriptor{Name: name, Kind: table.String, Index: true, Default: true}}
	if get != nil {
		col.produce = func(items []I, mem memory.Allocator) arrow.Array {
			ab := array.NewStringBuilder(mem)
			defer ab.Release()
			ab.Reserve(len(items))
			for _, it := range items {
				ab.Append(get(it))
			}
			return ab.NewArray()
		}
	}
	col.key = func(s *table.Series, row int) (any, bool, error) {
		v, ok, err := s.StringAt(row)
		return v, ok, err
	}
	return b.add(col, nil)
}

// IntIndex declares an integer index column.
func (b *Builder[C, I]) IntIndex(name string, get func(I) int) *Builder[C, I] {
	col := &column[I]{desc: table.ColumnDescriptor{Name: name, Kind: table.Int, Index: true, Default: true}}
	if get != nil {
		col.produce = intProducer(get)
	}
	col.key = func(s *table.Series, row int) (any, bool, error) {
		v, ok, err := s.IntAt(row)
		return v, ok, err
	}
	return b.add(col, nil)
}

// Strings declares a string column. A nil setter makes it read-only.
func (b *Builder[C, I]) Strings(name string, get func(I) string, set func(I, string) error, opts ...ColumnOption) *Builder[C, I] {
	col := &column[I]{desc: dataDescriptor(name, table.String, set != nil)}
	if get != nil {
		col.produce = func(items []I, mem memory.Allocator) arrow.Array {
			ab := array.NewStringBuilder(mem)
			defer ab.Release()
			ab.Reserve(len(items))
			for _, it := range items {
				ab.Append(get(it))
			}
			return ab.NewArray()
		}
	}
	if set != nil {
		col.apply = func(it I, s *table.Series, row int) error {
			v, ok, err := s.StringAt(row)
			if err != nil || !ok {
				return err
			}
			return set(it, v)
		}
	}
	return b.add(col, opts)
}

// Ints declares an integer column. A nil setter makes it read-only.
func (b *Builder[C, I]) Ints(name string, get func(I) int, set func(I, int) error, opts ...ColumnOption) *Builder[C, I] {
	col := &column[I]{desc: dataDescriptor(name, table.Int, set != nil)}
	if get != nil {
		col.produce = intProducer(get)
	}
	if set != nil {
		col.apply = func(it I, s *table.Series, row int) error {
			v, ok, err := s.IntAt(row)
			if err != nil || !ok {
				return err
			}
			return set(it, v)
		}
	}
	return b.add(col, opts)
}

// Doubles declares a floating point column. A nil setter makes it read-only.
// NaN values are produced as is and are treated as absent on update.
func (b *Builder[C, I]) Doubles(name string, get func(I) float64, set func(I, float64) error, opts ...ColumnOption) *Builder[C, I] {
	col := &column[I]{desc: dataDescriptor(name, table.Double, set != nil)}
	if get != nil {
		col.produce = func(items []I, mem memory.Allocator) arrow.Array {
			ab := array.NewFloat64Builder(mem)
			defer ab.Release()
			ab.Reserve(len(items))
			for _, it := range items {
				ab.Append(get(it))
			}
			return ab.NewArray()
		}
	}
	if set != nil {
		col.apply = func(it I, s *table.Series, row int) error {
			v, ok, err := s.DoubleAt(row)
			if err != nil || !ok {
				return err
			}
			return set(it, v)
		}
	}
	return b.add(col, opts)
}

// Bools declares a boolean column. A nil setter makes it read-only.
func (b *Builder[C, I]) Bools(name string, get func(I) bool, set func(I, bool) error, opts ...ColumnOption) *Builder[C, I] {
	col := &column[I]{desc: dataDescriptor(name, table.Bool, set != nil)}
	if get != nil {
		col.produce = func(items []I, mem memory.Allocator) arrow.Array {
			ab := array.NewBooleanBuilder(mem)
			defer ab.Release()
			ab.Reserve(len(items))
			for _, it := range items {
				ab.Append(get(it))
			}
			return ab.NewArray()
		}
	}
	if set != nil {
		col.apply = func(it I, s *table.Series, row int) error {
			v, ok, err := s.BoolAt(row)
			if err != nil || !ok {
				return err
			}
			return set(it, v)
		}
	}
	return b.add(col, opts)
}

// Enums declares an enumerated column whose getter and setter work with
// ordinals into values. Updates accept either ordinals (Enum columns) or value
// names (String columns).
func (b *Builder[C, I]) Enums(name string, values []string, get func(I) int, set func(I, int) error, opts ...ColumnOption) *Builder[C, I] {
	desc := dataDescriptor(name, table.Enum, set != nil)
	desc.EnumValues = append([]string(nil), values...)
	col := &column[I]{desc: desc}
	if get != nil {
		col.produce = func(items []I, mem memory.Allocator) arrow.Array {
			ab := array.NewInt32Builder(mem)
			defer ab.Release()
			ab.Reserve(len(items))
			for _, it := range items {
				ab.Append(int32(get(it)))
			}
			return ab.NewArray()
		}
	}
	if set != nil {
		col.apply = func(it I, s *table.Series, row int) error {
			if s.Kind() == table.String {
				name, ok, err := s.StringAt(row)
				if err != nil || !ok {
					return err
				}
				for ord, v := range desc.EnumValues {
					if v == name {
						return set(it, ord)
					}
				}
				return fmt.Errorf("unknown %s value %q", desc.Name, name)
			}
			v, ok, err := s.EnumAt(row)
			if err != nil || !ok {
				return err
			}
			if v >= len(desc.EnumValues) {
				return fmt.Errorf("%s ordinal %d out of range", desc.Name, v)
			}
			return set(it, v)
		}
	}
	return b.add(col, opts)
}

// Build freezes the bindings into an immutable Mapper.
// Returns a schema error for duplicate or empty names, missing getters,
// a missing index, or missing item provider/lookup functions.
func (b *Builder[C, I]) Build(items ItemsFunc[C, I], lookup LookupFunc[C, I]) (*Mapper[C, I], error) {
	if items == nil {
		return nil, &table.SchemaError{Msg: "item provider is required"}
	}
	if lookup == nil {
		return nil, &table.SchemaError{Msg: "index lookup is required"}
	}

	m := &Mapper[C, I]{
		items:  items,
		lookup: lookup,
		byName: make(map[string]*column[I], len(b.columns)),
	}
	for _, col := range b.columns {
		if col.desc.Name == "" {
			return nil, &table.SchemaError{Msg: "column name cannot be empty"}
		}
		if _, dup := m.byName[col.desc.Name]; dup {
			return nil, &table.SchemaError{Column: col.desc.Name, Msg: "column registered twice"}
		}
		if col.produce == nil {
			return nil, &table.SchemaError{Column: col.desc.Name, Msg: "getter is required"}
		}
		m.byName[col.desc.Name] = col
		if col.desc.Index {
			m.index = append(m.index, col)
		} else {
			m.data = append(m.data, col)
		}
	}
	if len(m.index) == 0 {
		return nil, &table.SchemaError{Msg: "no index column declared"}
	}
	return m, nil
}

func dataDescriptor(name string, kind table.Kind, modifiable bool) table.ColumnDescriptor {
	return table.ColumnDescriptor{Name: name, Kind: kind, Modifiable: modifiable, Default: true}
}

func intProducer[I any](get func(I) int) func([]I, memory.Allocator) arrow.Array {
	return func(items []I, mem memory.Allocator) arrow.Array {
		ab := array.NewInt64Builder(mem)
		defer ab.Release()
		ab.Reserve(len(items))
		for _, it := range items {
			ab.Append(int64(get(it)))
		}
		return ab.NewArray()
	}
}
