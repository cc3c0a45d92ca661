package native

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc/codes"

	"github.com/hugr-lab/gridframe/adder"
	"github.com/hugr-lab/gridframe/results"
	"github.com/hugr-lab/gridframe/table"
)

func newHeap(t *testing.T) (*Heap, *memory.CheckedAllocator) {
	t.Helper()
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	return NewHeap(mem), mem
}

func assertReleased(t *testing.T, h *Heap, mem *memory.CheckedAllocator) {
	t.Helper()
	if n := h.Outstanding(); n != 0 {
		t.Errorf("%d blocks still live", n)
	}
	mem.AssertSize(t, 0)
}

func TestHeapOwnership(t *testing.T) {
	h, mem := newHeap(t)
	defer assertReleased(t, h, mem)

	p := h.Alloc(16)
	if !h.Owns(p) || h.Outstanding() != 1 {
		t.Fatal("allocated block should be tracked")
	}
	if err := h.Free(p); err != nil {
		t.Fatalf("Free() failed: %v", err)
	}
	if err := h.Free(p); !errors.Is(err, ErrNotOwned) {
		t.Errorf("double free: expected ErrNotOwned, got %v", err)
	}

	var local int64
	if err := h.Free(unsafe.Pointer(&local)); !errors.Is(err, ErrNotOwned) {
		t.Errorf("foreign pointer: expected ErrNotOwned, got %v", err)
	}
	if err := h.Free(nil); err != nil {
		t.Errorf("Free(nil) = %v", err)
	}
	if h.Alloc(0) != nil {
		t.Error("zero-size allocation should be nil")
	}
}

func TestStrings(t *testing.T) {
	h, mem := newHeap(t)
	defer assertReleased(t, h, mem)

	p := AllocString(h, "héllo")
	if got := GoString(p); got != "héllo" {
		t.Errorf("GoString() = %q", got)
	}
	if err := FreeString(h, p); err != nil {
		t.Fatal(err)
	}

	arr := AllocStringArray(h, []string{"a", "", "ccc"})
	if got := GoStrings(arr); len(got) != 3 || got[2] != "ccc" || got[1] != "" {
		t.Errorf("GoStrings() = %q", got)
	}
	if err := FreeStringArray(h, arr); err != nil {
		t.Fatal(err)
	}

	b := AllocBytes(h, []byte{1, 2, 3})
	if v := View[byte](b); len(v) != 3 || v[2] != 3 {
		t.Errorf("View[byte]() = %v", v)
	}
	if err := FreeBytes(h, b); err != nil {
		t.Fatal(err)
	}

	if empty := AllocStringArray(h, nil); empty.Ptr != nil || empty.Length != 0 {
		t.Errorf("empty array = %+v", empty)
	}
}

func TestSeriesArrayRoundTrip(t *testing.T) {
	h, hmem := newHeap(t)
	defer assertReleased(t, h, hmem)
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	series := []*table.Series{
		table.NewStringSeries(mem, "id", []string{"a", "", "c"}, []bool{true, false, true}).MarkIndex(),
		table.NewIntSeries(mem, "n", []int{1, 2, 3}, nil),
		table.NewDoubleSeries(mem, "p", []float64{1.5, 0, 3}, []bool{true, false, true}),
		table.NewBoolSeries(mem, "on", []bool{true, false, true}, nil),
		table.NewEnumSeries(mem, "e", []string{"X", "Y"}, []int{1, 0, 1}, nil),
	}
	defer func() {
		for _, s := range series {
			s.Release()
		}
	}()

	arr, err := AllocSeriesArray(h, series)
	if err != nil {
		t.Fatalf("AllocSeriesArray() failed: %v", err)
	}

	view := View[Series](arr)
	if len(view) != 5 {
		t.Fatalf("got %d series, want 5", len(view))
	}
	if GoString(view[0].Name) != "id" || view[0].Index != 1 || table.Kind(view[0].Kind) != table.String {
		t.Errorf("series 0 header = %+v", view[0])
	}
	if strs := View[*byte](view[0].Data); strs[1] != nil {
		t.Error("absent string should be NULL")
	}
	if valid := View[uint8](view[0].Valid); len(valid) != 3 || valid[1] != 0 || valid[0] != 1 {
		t.Errorf("validity = %v", valid)
	}
	if view[1].Valid.Ptr != nil {
		t.Error("a series without absent values should have no validity array")
	}
	if d := View[float64](view[2].Data); !math.IsNaN(d[1]) || d[2] != 3 {
		t.Errorf("double data = %v", d)
	}
	if b := View[int32](view[3].Data); b[0] != 1 || b[1] != 0 {
		t.Errorf("bool data = %v", b)
	}

	imported, err := ImportSeriesArray(arr, mem)
	if err != nil {
		t.Fatalf("ImportSeriesArray() failed: %v", err)
	}
	defer func() {
		for _, s := range imported {
			s.Release()
		}
	}()
	if !imported[0].IsIndex() || imported[0].IsPresent(1) {
		t.Error("imported id column lost index flag or absence")
	}
	if v, _, _ := imported[1].IntAt(2); v != 3 {
		t.Errorf("imported n[2] = %d", v)
	}
	if imported[2].IsPresent(1) {
		t.Error("imported p[1] should be absent")
	}
	if v, _, _ := imported[4].EnumAt(0); v != 1 {
		t.Errorf("imported e[0] = %d", v)
	}

	if err := FreeSeriesArray(h, arr); err != nil {
		t.Fatalf("FreeSeriesArray() failed: %v", err)
	}
	if err := FreeSeriesArray(h, arr); !errors.Is(err, ErrNotOwned) {
		t.Errorf("second free: expected ErrNotOwned, got %v", err)
	}
}

func TestSeriesCollectorAbort(t *testing.T) {
	h, hmem := newHeap(t)
	defer assertReleased(t, h, hmem)

	s := table.NewStringSeries(memory.DefaultAllocator, "id", []string{"a", "b"}, nil)
	defer s.Release()

	c := NewSeriesCollector(h)
	for i := 0; i < 3; i++ {
		if err := c.Add(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Abort(); err != nil {
		t.Fatalf("Abort() failed: %v", err)
	}
}

func TestCollectSeries(t *testing.T) {
	s := table.NewStringSeries(memory.DefaultAllocator, "id", []string{"a", "b"}, nil)
	defer s.Release()
	emitTwice := func(emit func(*table.Series) error) error {
		for i := 0; i < 2; i++ {
			if err := emit(s); err != nil {
				return err
			}
		}
		return nil
	}

	t.Run("success", func(t *testing.T) {
		h, hmem := newHeap(t)
		defer assertReleased(t, h, hmem)

		arr, err := CollectSeries(h, emitTwice)
		if err != nil {
			t.Fatalf("CollectSeries() failed: %v", err)
		}
		if arr.Len() != 2 {
			t.Errorf("Len() = %d, want 2", arr.Len())
		}
		if err := FreeSeriesArray(h, arr); err != nil {
			t.Fatalf("FreeSeriesArray() failed: %v", err)
		}
	})

	t.Run("error", func(t *testing.T) {
		h, hmem := newHeap(t)
		defer assertReleased(t, h, hmem)

		_, err := CollectSeries(h, func(emit func(*table.Series) error) error {
			if err := emitTwice(emit); err != nil {
				return err
			}
			return io.ErrUnexpectedEOF
		})
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("expected the produce error, got %v", err)
		}
	})

	t.Run("panic", func(t *testing.T) {
		h, hmem := newHeap(t)
		defer assertReleased(t, h, hmem)

		var info ErrorInfo
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		ok := Guard(h, logger, "collect", &info, func() error {
			_, err := CollectSeries(h, func(emit func(*table.Series) error) error {
				if err := emitTwice(emit); err != nil {
					return err
				}
				panic("getter failed")
			})
			return err
		})
		if ok || codes.Code(info.Code) != codes.Internal {
			t.Errorf("Guard() = %v, code %d, want Internal", ok, info.Code)
		}
		ClearError(h, &info)
	})
}

func TestImportRejectsBadKind(t *testing.T) {
	h, hmem := newHeap(t)
	defer assertReleased(t, h, hmem)

	arr, view := AllocArray[Series](h, 1)
	view[0] = Series{Name: AllocString(h, "x"), Kind: 42}
	defer func() {
		if err := FreeSeriesArray(h, arr); err != nil {
			t.Error(err)
		}
	}()

	if _, err := ImportSeriesArray(arr, nil); !errors.Is(err, table.ErrSchema) {
		t.Errorf("expected schema error, got %v", err)
	}
}

func TestContingencyResults(t *testing.T) {
	h, mem := newHeap(t)
	defer assertReleased(t, h, mem)

	crs := []*results.ContingencyResult{
		{ContingencyID: "c1", Status: results.Converged, Violations: []results.LimitViolation{
			{SubjectID: "L1", LimitName: "permanent", Limit: 1000, Value: 1100, Side: 1},
			{SubjectID: "B1", LimitType: results.HighVoltage, Limit: 420, Value: 430},
		}},
		{ContingencyID: "c2", Status: results.SolverFailed},
	}

	arr := AllocContingencyResults(h, crs)
	view := View[ContingencyResult](arr)
	if len(view) != 2 || GoString(view[0].ContingencyID) != "c1" {
		t.Fatalf("results = %+v", view)
	}
	vs := View[LimitViolation](view[0].Violations)
	if len(vs) != 2 || GoString(vs[0].SubjectID) != "L1" || vs[0].Side != 1 || vs[1].Value != 430 {
		t.Errorf("violations = %+v", vs)
	}
	if view[1].Violations.Ptr != nil || view[1].Status != int32(results.SolverFailed) {
		t.Errorf("result c2 = %+v", view[1])
	}

	if err := FreeContingencyResults(h, arr); err != nil {
		t.Fatalf("FreeContingencyResults() failed: %v", err)
	}
}

func TestLayouts(t *testing.T) {
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"gf_array", unsafe.Sizeof(Array{}), 16},
		{"gf_series", unsafe.Sizeof(Series{}), 48},
		{"gf_table", unsafe.Sizeof(Table{}), 24},
		{"gf_limit_violation", unsafe.Sizeof(LimitViolation{}), 64},
		{"gf_contingency_result", unsafe.Sizeof(ContingencyResult{}), 32},
		{"gf_error", unsafe.Sizeof(ErrorInfo{}), 16},
	}
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip("layouts are checked on 64-bit platforms")
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s is %d bytes, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func TestGuard(t *testing.T) {
	h, mem := newHeap(t)
	defer assertReleased(t, h, mem)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		fn   func() error
		want codes.Code
	}{
		{"ok", func() error { return nil }, codes.OK},
		{"schema", func() error { return &table.SchemaError{Column: "id", Msg: "missing"} }, codes.InvalidArgument},
		{"shape", func() error { return &adder.ShapeError{Category: "lines", Got: 0, Min: 1, Max: 2} }, codes.FailedPrecondition},
		{"unknown model", func() error { return &adder.RowError{Err: adder.ErrUnknownModel} }, codes.InvalidArgument},
		{"ownership", func() error { return ErrNotOwned }, codes.FailedPrecondition},
		{"panic", func() error { panic("boom") }, codes.Internal},
		{"other", func() error { return errors.New("x") }, codes.Unknown},
	}

	var out ErrorInfo
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok := Guard(h, logger, tt.name, &out, tt.fn)
			if ok != (tt.want == codes.OK) {
				t.Errorf("Guard() = %v", ok)
			}
			if codes.Code(out.Code) != tt.want {
				t.Errorf("code = %v, want %v", codes.Code(out.Code), tt.want)
			}
			if (out.Message != nil) != (tt.want != codes.OK) {
				t.Errorf("message = %q", GoString(out.Message))
			}
		})
	}
	ClearError(h, &out)
	if out.Code != 0 || out.Message != nil {
		t.Errorf("ClearError() left %+v", out)
	}
}

func TestImportTables(t *testing.T) {
	h, hmem := newHeap(t)
	defer assertReleased(t, h, hmem)
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	ids := table.NewStringSeries(mem, "id", []string{"B1", "B2"}, nil).MarkIndex()
	v := table.NewDoubleSeries(mem, "nominal_v", []float64{400, 225}, nil)
	cols, err := AllocSeriesArray(h, []*table.Series{ids, v})
	ids.Release()
	v.Release()
	if err != nil {
		t.Fatalf("AllocSeriesArray() failed: %v", err)
	}

	arr, view := AllocArray[Table](h, 1)
	view[0] = Table{Name: AllocString(h, "buses"), Columns: cols}

	tables, err := ImportTables(arr, mem)
	if err != nil {
		t.Fatalf("ImportTables() failed: %v", err)
	}
	if len(tables) != 1 || tables[0].Name() != "buses" || tables[0].NumRows() != 2 {
		t.Fatalf("imported %v", tables)
	}
	if idx := tables[0].IndexColumns(); len(idx) != 1 || idx[0].Name() != "id" {
		t.Errorf("index columns = %v", idx)
	}
	tables[0].Release()

	if _, err := ImportTable(nil, mem); !errors.Is(err, table.ErrSchema) {
		t.Errorf("NULL table: expected schema error, got %v", err)
	}

	if err := FreeString(h, view[0].Name); err != nil {
		t.Fatal(err)
	}
	if err := FreeSeriesArray(h, cols); err != nil {
		t.Fatal(err)
	}
	if err := FreeArray(h, arr); err != nil {
		t.Fatal(err)
	}
}
