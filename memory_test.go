package gridframe

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridframe/mapper"
	"github.com/hugr-lab/gridframe/mappers"
	"github.com/hugr-lab/gridframe/table"
)

// TestMemoryLeaksEveryElementType produces every network table and checks
// that all series are released.
func TestMemoryLeaksEveryElementType(t *testing.T) {
	allocator := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer allocator.AssertSize(t, 0)
	reg := newTestRegistry(t, allocator, false)
	net := populate(t, reg, allocator)

	for _, et := range mappers.NetworkTypes() {
		series, err := reg.ProduceAll(net, et, mapper.AllAttributes)
		if err != nil {
			t.Fatalf("ProduceAll(%s) failed: %v", et, err)
		}
		for _, s := range series {
			s.Release()
		}
	}
}

// TestMemoryLeaksInConcurrentProduce tests that a shared registry can serve
// concurrent callers without leaking.
func TestMemoryLeaksInConcurrentProduce(t *testing.T) {
	allocator := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer allocator.AssertSize(t, 0)
	reg := newTestRegistry(t, allocator, true)
	net := populate(t, reg, allocator)

	done := make(chan bool, 5)
	for i := 0; i < 5; i++ {
		go func() {
			data, err := reg.ProduceIPC(net, mappers.Generators, mapper.DefaultAttributes)
			if err != nil || len(data) == 0 {
				t.Errorf("ProduceIPC failed: %v", err)
				done <- false
				return
			}
			done <- true
		}()
	}

	// Wait for all to complete
	for i := 0; i < 5; i++ {
		<-done
	}
}

// TestNoMemoryLeaksWithErrors tests that memory is released even when an
// emit callback or an update fails halfway.
func TestNoMemoryLeaksWithErrors(t *testing.T) {
	allocator := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer allocator.AssertSize(t, 0)
	reg := newTestRegistry(t, allocator, false)
	net := populate(t, reg, allocator)

	stop := errors.New("stop")
	calls := 0
	err := reg.Produce(net, mappers.Generators, mapper.AllAttributes, func(*table.Series) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("expected emit error, got %v", err)
	}

	bad := newTable(t, "generators",
		table.NewStringSeries(allocator, "id", []string{"G1"}, nil).MarkIndex(),
		table.NewStringSeries(allocator, "bus_id", []string{"B2"}, nil),
	)
	defer bad.Release()
	if _, err := reg.Update(net, mappers.Generators, bad); !errors.Is(err, table.ErrSchema) {
		t.Errorf("read-only column: expected schema error, got %v", err)
	}
}
