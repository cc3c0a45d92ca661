package table

import (
	"errors"
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

func TestSeriesAccessors(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	str := NewStringSeries(mem, "id", []string{"a", "", "c"}, []bool{true, false, true})
	defer str.Release()
	dbl := NewDoubleSeries(mem, "p", []float64{1.5, math.NaN(), 3}, nil)
	defer dbl.Release()
	ints := NewIntSeries(mem, "n", []int{7, 8}, []bool{false, true})
	defer ints.Release()
	bools := NewBoolSeries(mem, "on", []bool{true, false}, nil)
	defer bools.Release()
	enums := NewEnumSeries(mem, "type", []string{"HYDRO", "NUCLEAR"}, []int{1, 0}, nil)
	defer enums.Release()

	if v, ok, err := str.StringAt(0); err != nil || !ok || v != "a" {
		t.Errorf("StringAt(0) = %q, %v, %v", v, ok, err)
	}
	if _, ok, err := str.StringAt(1); err != nil || ok {
		t.Errorf("StringAt(1) should be absent, got ok=%v err=%v", ok, err)
	}
	if _, _, err := str.StringAt(3); err == nil {
		t.Error("StringAt(3) should fail: row out of range")
	}
	if _, _, err := str.DoubleAt(0); err == nil {
		t.Error("DoubleAt on a string column should fail")
	}

	if v, ok, _ := dbl.DoubleAt(0); !ok || v != 1.5 {
		t.Errorf("DoubleAt(0) = %v, %v", v, ok)
	}
	if _, ok, _ := dbl.DoubleAt(1); ok {
		t.Error("NaN must be reported as absent")
	}

	if _, ok, _ := ints.IntAt(0); ok {
		t.Error("IntAt(0) should be absent")
	}
	if v, ok, _ := ints.IntAt(1); !ok || v != 8 {
		t.Errorf("IntAt(1) = %d, %v", v, ok)
	}

	if v, ok, _ := bools.BoolAt(1); !ok || v {
		t.Errorf("BoolAt(1) = %v, %v", v, ok)
	}

	if name, ok, err := enums.EnumName(0); err != nil || !ok || name != "NUCLEAR" {
		t.Errorf("EnumName(0) = %q, %v, %v", name, ok, err)
	}
}

func TestSeriesIndexOf(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	ids := NewStringSeries(mem, "id", []string{"el1", "el2", "el3"}, nil)
	defer ids.Release()
	nums := NewIntSeries(mem, "num", []int{10, 20}, nil)
	defer nums.Release()
	enums := NewEnumSeries(mem, "side", []string{"ONE", "TWO"}, []int{1}, nil)
	defer enums.Release()

	tests := []struct {
		name   string
		series *Series
		value  any
		want   int
	}{
		{"string found", ids, "el2", 1},
		{"string not found", ids, "el9", -1},
		{"wrong value type", ids, 3, -1},
		{"int found", nums, 20, 1},
		{"int64 found", nums, int64(10), 0},
		{"enum by name", enums, "TWO", 0},
		{"enum by ordinal", enums, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.series.IndexOf(tt.value); got != tt.want {
				t.Errorf("IndexOf(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestNewSeriesKindMismatch(t *testing.T) {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Append(1)
	arr := b.NewArray()
	defer arr.Release()

	_, err := NewSeries(ColumnDescriptor{Name: "x", Kind: String}, arr)
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestUpdatingTableLookup(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	id := NewStringSeries(mem, "id", []string{"a", "b"}, nil).MarkIndex()
	defer id.Release()
	p := NewDoubleSeries(mem, "p", []float64{1, 2}, nil)
	defer p.Release()

	tbl, err := NewUpdatingTableFromSeries("loads", id, p)
	if err != nil {
		t.Fatalf("NewUpdatingTableFromSeries() failed: %v", err)
	}
	defer tbl.Release()

	if tbl.NumRows() != 2 {
		t.Errorf("NumRows() = %d, want 2", tbl.NumRows())
	}
	if pos := tbl.Position("p"); pos != 1 {
		t.Errorf("Position(p) = %d, want 1", pos)
	}
	if pos := tbl.Position("q"); pos != -1 {
		t.Errorf("Position(q) = %d, want -1", pos)
	}
	if _, ok := tbl.Column("q"); ok {
		t.Error("Column(q) should be absent")
	}
	if tbl.ColumnAt(5) != nil {
		t.Error("ColumnAt(5) should be nil")
	}
	if idx := tbl.IndexColumns(); len(idx) != 1 || idx[0].Name() != "id" {
		t.Errorf("IndexColumns() = %v", idx)
	}
}

func TestUpdatingTableRejectsBadShapes(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	a := NewStringSeries(mem, "id", []string{"a", "b"}, nil)
	defer a.Release()
	short := NewDoubleSeries(mem, "p", []float64{1}, nil)
	defer short.Release()
	dup := NewStringSeries(mem, "id", []string{"c", "d"}, nil)
	defer dup.Release()

	if _, err := NewUpdatingTableFromSeries("t", a, short); !errors.Is(err, ErrSchema) {
		t.Errorf("length mismatch: expected schema error, got %v", err)
	}
	if _, err := NewUpdatingTableFromSeries("t", a, dup); !errors.Is(err, ErrSchema) {
		t.Errorf("duplicate name: expected schema error, got %v", err)
	}
}

func TestUpdatingTableFromRecord(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	schema := NewSchema([]ColumnDescriptor{
		{Name: "id", Kind: String, Index: true},
		{Name: "type", Kind: Enum, EnumValues: []string{"A", "B"}, Modifiable: true},
	})
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).AppendValues([]string{"x", "y"}, nil)
	b.Field(1).(*array.Int32Builder).AppendValues([]int32{1, 0}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	tbl, err := NewUpdatingTable("gens", rec)
	if err != nil {
		t.Fatalf("NewUpdatingTable() failed: %v", err)
	}
	defer tbl.Release()

	idx := tbl.IndexColumns()
	if len(idx) != 1 || idx[0].Name() != "id" {
		t.Fatalf("index columns = %v", idx)
	}
	col, _ := tbl.Column("type")
	if name, _, _ := col.EnumName(0); name != "B" {
		t.Errorf("EnumName(0) = %q, want B", name)
	}
}

func TestFindIndexColumns(t *testing.T) {
	indexMeta := arrow.NewMetadata([]string{MetaIndex}, []string{"true"})
	falseMeta := arrow.NewMetadata([]string{MetaIndex}, []string{"false"})

	tests := []struct {
		name   string
		schema *arrow.Schema
		want   []int
	}{
		{
			name: "single",
			schema: arrow.NewSchema([]arrow.Field{
				{Name: "id", Type: arrow.BinaryTypes.String, Metadata: indexMeta},
				{Name: "p", Type: arrow.PrimitiveTypes.Float64},
			}, nil),
			want: []int{0},
		},
		{
			name: "composite",
			schema: arrow.NewSchema([]arrow.Field{
				{Name: "p", Type: arrow.PrimitiveTypes.Float64},
				{Name: "element_id", Type: arrow.BinaryTypes.String, Metadata: indexMeta},
				{Name: "side", Type: arrow.PrimitiveTypes.Int32, Metadata: indexMeta},
			}, nil),
			want: []int{1, 2},
		},
		{
			name: "explicit false",
			schema: arrow.NewSchema([]arrow.Field{
				{Name: "id", Type: arrow.BinaryTypes.String, Metadata: falseMeta},
			}, nil),
			want: nil,
		},
		{
			name:   "nil schema",
			schema: nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindIndexColumns(tt.schema)
			if len(got) != len(tt.want) {
				t.Fatalf("FindIndexColumns() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("FindIndexColumns() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDescriptorOfInfersKind(t *testing.T) {
	d, err := DescriptorOf(arrow.Field{Name: "v", Type: arrow.PrimitiveTypes.Int32})
	if err != nil {
		t.Fatalf("DescriptorOf() failed: %v", err)
	}
	if d.Kind != Int || !d.Modifiable || !d.Default {
		t.Errorf("DescriptorOf() = %+v", d)
	}

	if _, err := DescriptorOf(arrow.Field{Name: "b", Type: arrow.BinaryTypes.Binary}); !errors.Is(err, ErrSchema) {
		t.Errorf("binary field: expected schema error, got %v", err)
	}
}
