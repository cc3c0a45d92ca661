package serialize

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/klauspost/compress/zstd"

	"github.com/hugr-lab/gridframe/table"
)

func sampleSeries(mem memory.Allocator) []*table.Series {
	return []*table.Series{
		table.NewStringSeries(mem, "id", []string{"G1", "G2", "G3"}, nil).MarkIndex(),
		table.NewDoubleSeries(mem, "target_p", []float64{100, 0, 42.5}, []bool{true, false, true}),
		table.NewEnumSeries(mem, "energy_source", []string{"HYDRO", "NUCLEAR"}, []int{1, 0, 1}, nil),
	}
}

func release(series []*table.Series) {
	for _, s := range series {
		s.Release()
	}
}

func TestSeriesStreamRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	series := sampleSeries(mem)
	defer release(series)

	data, err := SerializeSeries(series, mem)
	if err != nil {
		t.Fatalf("SerializeSeries() failed: %v", err)
	}

	tables, err := ReadTables("generators", data, mem)
	if err != nil {
		t.Fatalf("ReadTables() failed: %v", err)
	}
	defer func() {
		for _, tbl := range tables {
			tbl.Release()
		}
	}()

	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	tbl := tables[0]
	if tbl.Name() != "generators" || tbl.NumRows() != 3 || tbl.NumColumns() != 3 {
		t.Fatalf("table %s: %d rows, %d columns", tbl.Name(), tbl.NumRows(), tbl.NumColumns())
	}
	if idx := tbl.IndexColumns(); len(idx) != 1 || idx[0].Name() != "id" {
		t.Errorf("index columns = %v", idx)
	}

	p, _ := tbl.Column("target_p")
	if _, ok, _ := p.DoubleAt(1); ok {
		t.Error("absent value should stay absent")
	}
	if v, ok, _ := p.DoubleAt(2); !ok || v != 42.5 {
		t.Errorf("DoubleAt(2) = %v, %v", v, ok)
	}

	src, _ := tbl.Column("energy_source")
	if name, _, _ := src.EnumName(0); name != "NUCLEAR" {
		t.Errorf("EnumName(0) = %q, want NUCLEAR", name)
	}
}

func newCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(zstd.SpeedDefault)
	if err != nil {
		t.Fatalf("NewCodec() failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCompressedStream(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)
	c := newCodec(t)

	series := sampleSeries(mem)
	defer release(series)

	compressed, err := c.EncodeSeries(series, mem)
	if err != nil {
		t.Fatalf("EncodeSeries() failed: %v", err)
	}
	tables, err := c.DecodeTables("generators", compressed, mem)
	if err != nil {
		t.Fatalf("DecodeTables() failed: %v", err)
	}
	for _, tbl := range tables {
		if tbl.NumRows() != 3 {
			t.Errorf("NumRows() = %d, want 3", tbl.NumRows())
		}
		tbl.Release()
	}
}

func TestCompressedRecords(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)
	c := newCodec(t)

	series := sampleSeries(mem)
	defer release(series)
	rec, err := NewRecord(series)
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Release()

	compressed, err := c.EncodeRecord(rec, mem)
	if err != nil {
		t.Fatalf("EncodeRecord() failed: %v", err)
	}
	records, err := c.DecodeRecords(compressed, mem)
	if err != nil {
		t.Fatalf("DecodeRecords() failed: %v", err)
	}
	if len(records) != 1 || records[0].NumRows() != 3 || records[0].NumCols() != 3 {
		t.Errorf("decoded %d records", len(records))
	}
	for _, r := range records {
		r.Release()
	}
}

func TestNewRecordLengthMismatch(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	a := table.NewStringSeries(mem, "id", []string{"a", "b"}, nil)
	defer a.Release()
	b := table.NewIntSeries(mem, "n", []int{1}, nil)
	defer b.Release()

	if _, err := NewRecord([]*table.Series{a, b}); !errors.Is(err, table.ErrSchema) {
		t.Errorf("expected schema error, got %v", err)
	}
}

func TestReadTablesRejectsGarbage(t *testing.T) {
	if _, err := ReadTables("x", []byte("not arrow"), memory.DefaultAllocator); err == nil {
		t.Error("garbage input should fail")
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	c := newCodec(t)
	for _, in := range [][]byte{nil, []byte("not zstd")} {
		if _, err := c.DecodeTables("x", in, memory.DefaultAllocator); err == nil {
			t.Errorf("DecodeTables(%q) should fail", in)
		}
	}
}
