package table

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Series is a named, typed, ordered sequence of values backed by an Arrow array.
type Series struct {
	desc ColumnDescriptor
	data arrow.Array
}

// NewSeries wraps an Arrow array. The array is retained; the caller keeps its
// own reference and must still release it.
func NewSeries(desc ColumnDescriptor, data arrow.Array) (*Series, error) {
	if desc.Name == "" {
		return nil, schemaErr("", "", "series name cannot be empty")
	}
	if data == nil {
		return nil, schemaErr("", desc.Name, "series has no data")
	}
	if !desc.Kind.accepts(data.DataType()) {
		return nil, schemaErr("", desc.Name, fmt.Sprintf("arrow type %s does not match kind %s", data.DataType(), desc.Kind))
	}
	data.Retain()
	return &Series{desc: desc, data: data}, nil
}

// Name returns the column name.
func (s *Series) Name() string { return s.desc.Name }

// Kind returns the column kind.
func (s *Series) Kind() Kind { return s.desc.Kind }

// IsIndex reports whether the column is (part of) the index.
func (s *Series) IsIndex() bool { return s.desc.Index }

// Descriptor returns the column descriptor.
func (s *Series) Descriptor() ColumnDescriptor { return s.desc }

// Data returns the backing array. It is owned by the series.
func (s *Series) Data() arrow.Array { return s.data }

// Len returns the number of rows.
func (s *Series) Len() int { return s.data.Len() }

// Retain increases the reference count.
func (s *Series) Retain() { s.data.Retain() }

// Release decreases the reference count, freeing the data when it reaches zero.
func (s *Series) Release() { s.data.Release() }

// MarkIndex flags the series as an index column.
// It must be called before the series is shared.
func (s *Series) MarkIndex() *Series {
	s.desc.Index = true
	return s
}

func (s *Series) checkRow(row int) error {
	if row < 0 || row >= s.data.Len() {
		return fmt.Errorf("series %s: row %d out of range [0, %d)", s.desc.Name, row, s.data.Len())
	}
	return nil
}

func (s *Series) checkKind(k Kind) error {
	if s.desc.Kind != k {
		return fmt.Errorf("series %s: %s column read as %s", s.desc.Name, s.desc.Kind, k)
	}
	return nil
}

// IsPresent reports whether row holds a value. Out of range rows, nulls and
// NaN doubles are absent.
func (s *Series) IsPresent(row int) bool {
	if row < 0 || row >= s.data.Len() || s.data.IsNull(row) {
		return false
	}
	if arr, ok := s.data.(*array.Float64); ok {
		return !math.IsNaN(arr.Value(row))
	}
	return true
}

// StringAt returns the value at row of a String column.
func (s *Series) StringAt(row int) (string, bool, error) {
	if err := s.checkKind(String); err != nil {
		return "", false, err
	}
	if err := s.checkRow(row); err != nil {
		return "", false, err
	}
	if !s.IsPresent(row) {
		return "", false, nil
	}
	return s.data.(*array.String).Value(row), true, nil
}

// IntAt returns the value at row of an Int column.
func (s *Series) IntAt(row int) (int, bool, error) {
	if err := s.checkKind(Int); err != nil {
		return 0, false, err
	}
	if err := s.checkRow(row); err != nil {
		return 0, false, err
	}
	if !s.IsPresent(row) {
		return 0, false, nil
	}
	switch arr := s.data.(type) {
	case *array.Int64:
		return int(arr.Value(row)), true, nil
	case *array.Int32:
		return int(arr.Value(row)), true, nil
	}
	return 0, false, fmt.Errorf("series %s: unexpected array %T", s.desc.Name, s.data)
}

// DoubleAt returns the value at row of a Double column. NaN is reported as absent.
func (s *Series) DoubleAt(row int) (float64, bool, error) {
	if err := s.checkKind(Double); err != nil {
		return math.NaN(), false, err
	}
	if err := s.checkRow(row); err != nil {
		return math.NaN(), false, err
	}
	if !s.IsPresent(row) {
		return math.NaN(), false, nil
	}
	return s.data.(*array.Float64).Value(row), true, nil
}

// BoolAt returns the value at row of a Bool column.
func (s *Series) BoolAt(row int) (bool, bool, error) {
	if err := s.checkKind(Bool); err != nil {
		return false, false, err
	}
	if err := s.checkRow(row); err != nil {
		return false, false, err
	}
	if !s.IsPresent(row) {
		return false, false, nil
	}
	return s.data.(*array.Boolean).Value(row), true, nil
}

// EnumAt returns the ordinal at row of an Enum column.
func (s *Series) EnumAt(row int) (int, bool, error) {
	if err := s.checkKind(Enum); err != nil {
		return 0, false, err
	}
	if err := s.checkRow(row); err != nil {
		return 0, false, err
	}
	if !s.IsPresent(row) {
		return 0, false, nil
	}
	v := int(s.data.(*array.Int32).Value(row))
	if v < 0 || (len(s.desc.EnumValues) > 0 && v >= len(s.desc.EnumValues)) {
		return 0, false, fmt.Errorf("series %s: ordinal %d out of range at row %d", s.desc.Name, v, row)
	}
	return v, true, nil
}

// EnumName returns the value name at row of an Enum column.
func (s *Series) EnumName(row int) (string, bool, error) {
	v, ok, err := s.EnumAt(row)
	if err != nil || !ok {
		return "", ok, err
	}
	if v >= len(s.desc.EnumValues) {
		return "", false, fmt.Errorf("series %s: no value names declared", s.desc.Name)
	}
	return s.desc.EnumValues[v], true, nil
}

// IndexOf returns the first row holding value, or -1 when no row matches or the
// value type does not fit the column kind. Ints match Int and Enum columns,
// strings match String columns and Enum value names.
func (s *Series) IndexOf(value any) int {
	for row := 0; row < s.Len(); row++ {
		if !s.IsPresent(row) {
			continue
		}
		if s.valueEquals(row, value) {
			return row
		}
	}
	return -1
}

func (s *Series) valueEquals(row int, value any) bool {
	switch s.desc.Kind {
	case String:
		v, ok := value.(string)
		return ok && s.data.(*array.String).Value(row) == v
	case Int:
		v, ok := toInt(value)
		if !ok {
			return false
		}
		got, _, _ := s.IntAt(row)
		return got == v
	case Double:
		v, ok := value.(float64)
		return ok && s.data.(*array.Float64).Value(row) == v
	case Bool:
		v, ok := value.(bool)
		return ok && s.data.(*array.Boolean).Value(row) == v
	case Enum:
		if name, ok := value.(string); ok {
			got, _, _ := s.EnumName(row)
			return got == name
		}
		v, ok := toInt(value)
		return ok && int(s.data.(*array.Int32).Value(row)) == v
	}
	return false
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	}
	return 0, false
}

// NewStringSeries builds a String series. valid may be nil (all present).
func NewStringSeries(mem memory.Allocator, name string, values []string, valid []bool) *Series {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return newOwned(ColumnDescriptor{Name: name, Kind: String, Default: true, Modifiable: true}, b.NewArray())
}

// NewIntSeries builds an Int series. valid may be nil (all present).
func NewIntSeries(mem memory.Allocator, name string, values []int, valid []bool) *Series {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.Reserve(len(values))
	for i, v := range values {
		if valid != nil && !valid[i] {
			b.AppendNull()
			continue
		}
		b.Append(int64(v))
	}
	return newOwned(ColumnDescriptor{Name: name, Kind: Int, Default: true, Modifiable: true}, b.NewArray())
}

// NewDoubleSeries builds a Double series. valid may be nil; NaN values are absent either way.
func NewDoubleSeries(mem memory.Allocator, name string, values []float64, valid []bool) *Series {
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return newOwned(ColumnDescriptor{Name: name, Kind: Double, Default: true, Modifiable: true}, b.NewArray())
}

// NewBoolSeries builds a Bool series. valid may be nil (all present).
func NewBoolSeries(mem memory.Allocator, name string, values []bool, valid []bool) *Series {
	b := array.NewBooleanBuilder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return newOwned(ColumnDescriptor{Name: name, Kind: Bool, Default: true, Modifiable: true}, b.NewArray())
}

// NewEnumSeries builds an Enum series from ordinals into enumValues.
func NewEnumSeries(mem memory.Allocator, name string, enumValues []string, ordinals []int, valid []bool) *Series {
	b := array.NewInt32Builder(mem)
	defer b.Release()
	b.Reserve(len(ordinals))
	for i, v := range ordinals {
		if valid != nil && !valid[i] {
			b.AppendNull()
			continue
		}
		b.Append(int32(v))
	}
	desc := ColumnDescriptor{Name: name, Kind: Enum, Default: true, Modifiable: true, EnumValues: enumValues}
	return newOwned(desc, b.NewArray())
}

// newOwned takes ownership of a freshly built array without an extra retain.
func newOwned(desc ColumnDescriptor, data arrow.Array) *Series {
	return &Series{desc: desc, data: data}
}
