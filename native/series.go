package native

import (
	"errors"
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridframe/table"
)

// Series is the C layout of one column (gf_series).
//
// Data holds Length elements whose type depends on Kind: char* for String
// (NULL when absent), int64 for Int, double for Double (NaN when absent),
// int32 for Bool and Enum. Valid holds one uint8 per row (1 = present) and is
// empty when every row is present.
type Series struct {
	Name  *byte
	Kind  int32
	Index int32
	Data  Array
	Valid Array
}

// AllocSeries copies s into C memory.
func AllocSeries(h *Heap, s *table.Series) (Series, error) {
	n := s.Len()
	out := Series{
		Name: AllocString(h, s.Name()),
		Kind: int32(s.Kind()),
	}
	if s.IsIndex() {
		out.Index = 1
	}

	data := s.Data()
	if data.NullN() > 0 {
		var valid []uint8
		out.Valid, valid = AllocArray[uint8](h, n)
		for i := range valid {
			if data.IsValid(i) {
				valid[i] = 1
			}
		}
	}

	switch s.Kind() {
	case table.String:
		var view []*byte
		out.Data, view = AllocArray[*byte](h, n)
		for i := range view {
			if v, ok, _ := s.StringAt(i); ok {
				view[i] = AllocString(h, v)
			}
		}
	case table.Int:
		var view []int64
		out.Data, view = AllocArray[int64](h, n)
		for i := range view {
			v, _, _ := s.IntAt(i)
			view[i] = int64(v)
		}
	case table.Double:
		var view []float64
		out.Data, view = AllocArray[float64](h, n)
		for i := range view {
			if v, ok, _ := s.DoubleAt(i); ok {
				view[i] = v
			} else {
				view[i] = math.NaN()
			}
		}
	case table.Bool:
		var view []int32
		out.Data, view = AllocArray[int32](h, n)
		for i := range view {
			if v, _, _ := s.BoolAt(i); v {
				view[i] = 1
			}
		}
	case table.Enum:
		var view []int32
		out.Data, view = AllocArray[int32](h, n)
		for i := range view {
			v, _, _ := s.EnumAt(i)
			view[i] = int32(v)
		}
	default:
		err := fmt.Errorf("column %s: unsupported kind %s", s.Name(), s.Kind())
		return Series{}, errors.Join(err, FreeSeries(h, &out))
	}
	return out, nil
}

// FreeSeries releases every block of s, strings first.
func FreeSeries(h *Heap, s *Series) error {
	var errs []error
	if table.Kind(s.Kind) == table.String {
		for _, p := range View[*byte](s.Data) {
			errs = append(errs, FreeString(h, p))
		}
	}
	errs = append(errs,
		FreeArray(h, s.Data),
		FreeArray(h, s.Valid),
		FreeString(h, s.Name),
	)
	*s = Series{}
	return errors.Join(errs...)
}

// SeriesCollector copies series into C memory one at a time, so a mapper can
// stream its columns without keeping them all alive. Add matches the emit
// callback of a mapper.
type SeriesCollector struct {
	h     *Heap
	items []Series
}

// NewSeriesCollector creates a collector allocating from h.
func NewSeriesCollector(h *Heap) *SeriesCollector {
	return &SeriesCollector{h: h}
}

// Add copies one series.
func (c *SeriesCollector) Add(s *table.Series) error {
	cs, err := AllocSeries(c.h, s)
	if err != nil {
		return err
	}
	c.items = append(c.items, cs)
	return nil
}

// Finish allocates the series array and hands ownership of everything added
// to the caller.
func (c *SeriesCollector) Finish() Array {
	arr, view := AllocArray[Series](c.h, len(c.items))
	copy(view, c.items)
	c.items = nil
	return arr
}

// Abort releases everything added so far.
func (c *SeriesCollector) Abort() error {
	var errs []error
	for i := range c.items {
		errs = append(errs, FreeSeries(c.h, &c.items[i]))
	}
	c.items = nil
	return errors.Join(errs...)
}

// CollectSeries runs produce with a collector's Add as emit and returns the
// collected array. Whatever was collected is released when produce fails or
// panics.
func CollectSeries(h *Heap, produce func(emit func(*table.Series) error) error) (Array, error) {
	c := NewSeriesCollector(h)
	defer c.Abort()
	if err := produce(c.Add); err != nil {
		return Array{}, err
	}
	return c.Finish(), nil
}

// AllocSeriesArray copies series into a C array of gf_series.
func AllocSeriesArray(h *Heap, series []*table.Series) (Array, error) {
	c := NewSeriesCollector(h)
	for _, s := range series {
		if err := c.Add(s); err != nil {
			return Array{}, errors.Join(err, c.Abort())
		}
	}
	return c.Finish(), nil
}

// FreeSeriesArray releases an array returned by AllocSeriesArray or
// SeriesCollector.Finish, every series before the array itself.
func FreeSeriesArray(h *Heap, a Array) error {
	if err := checkOwned(h, a); err != nil {
		return err
	}
	var errs []error
	view := View[Series](a)
	for i := range view {
		errs = append(errs, FreeSeries(h, &view[i]))
	}
	errs = append(errs, FreeArray(h, a))
	return errors.Join(errs...)
}

// ImportSeriesArray copies a caller-owned series array into Arrow backed
// series. The caller keeps ownership of a and must release the result.
func ImportSeriesArray(a Array, mem memory.Allocator) ([]*table.Series, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	view := View[Series](a)
	out := make([]*table.Series, 0, len(view))
	for i := range view {
		s, err := importSeries(&view[i], mem)
		if err != nil {
			for _, prev := range out {
				prev.Release()
			}
			return nil, fmt.Errorf("series %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func importSeries(cs *Series, mem memory.Allocator) (*table.Series, error) {
	name := GoString(cs.Name)
	kind := table.Kind(cs.Kind)
	if !kind.Valid() || name == "" {
		return nil, &table.SchemaError{Column: name, Msg: fmt.Sprintf("invalid series kind %d", cs.Kind)}
	}
	n := cs.Data.Len()
	valid := View[uint8](cs.Valid)
	if valid != nil && len(valid) != n {
		return nil, &table.SchemaError{Column: name, Msg: fmt.Sprintf("validity has %d rows, data has %d", len(valid), n)}
	}
	present := func(i int) bool { return valid == nil || valid[i] != 0 }

	var arr arrow.Array
	switch kind {
	case table.String:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for i, p := range View[*byte](cs.Data) {
			if p == nil || !present(i) {
				b.AppendNull()
			} else {
				b.Append(GoString(p))
			}
		}
		arr = b.NewArray()
	case table.Int:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for i, v := range View[int64](cs.Data) {
			appendOrNull(b, present(i), v)
		}
		arr = b.NewArray()
	case table.Double:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for i, v := range View[float64](cs.Data) {
			appendOrNull(b, present(i), v)
		}
		arr = b.NewArray()
	case table.Bool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for i, v := range View[int32](cs.Data) {
			appendOrNull(b, present(i), v != 0)
		}
		arr = b.NewArray()
	case table.Enum:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		for i, v := range View[int32](cs.Data) {
			appendOrNull(b, present(i), v)
		}
		arr = b.NewArray()
	}
	defer arr.Release()

	desc := table.ColumnDescriptor{Name: name, Kind: kind, Index: cs.Index != 0, Modifiable: true, Default: true}
	return table.NewSeries(desc, arr)
}

type nullableBuilder[T any] interface {
	Append(T)
	AppendNull()
}

func appendOrNull[T any](b nullableBuilder[T], ok bool, v T) {
	if ok {
		b.Append(v)
	} else {
		b.AppendNull()
	}
}
