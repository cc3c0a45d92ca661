// Package native copies tables and result structs into C-compatible memory
// blocks owned by a foreign caller, and releases them again.
//
// Every Alloc function has exactly one matching Free function. Structs that
// hold nested blocks (strings, per-row arrays) free those blocks before the
// block that holds them. A Heap records every block it hands out, so freeing a
// block twice or freeing memory it does not own is reported as ErrNotOwned
// instead of corrupting memory.
//
// Layouts mirror cmd/libgridframe/gridframe.h and must be kept in sync with it.
package native

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ErrNotOwned is returned when freeing a block the heap did not allocate or
// already released.
var ErrNotOwned = errors.New("block not owned by heap")

// Heap hands out memory blocks from an Arrow allocator and tracks them until
// they are freed. It is safe for concurrent use.
type Heap struct {
	mem  memory.Allocator
	mu   sync.Mutex
	live map[unsafe.Pointer][]byte
}

// NewHeap creates a heap over mem. A nil mem uses memory.DefaultAllocator.
// A heap handing blocks to C code must use a C allocator such as
// mallocator.NewMallocator.
func NewHeap(mem memory.Allocator) *Heap {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &Heap{mem: mem, live: make(map[unsafe.Pointer][]byte)}
}

// Alloc returns a zeroed block of size bytes, or nil when size is zero.
func (h *Heap) Alloc(size int) unsafe.Pointer {
	if size <= 0 {
		return nil
	}
	buf := h.mem.Allocate(size)
	clear(buf)
	p := unsafe.Pointer(&buf[0])

	h.mu.Lock()
	h.live[p] = buf
	h.mu.Unlock()
	return p
}

// Free releases a block returned by Alloc. Freeing nil is a no-op.
func (h *Heap) Free(p unsafe.Pointer) error {
	if p == nil {
		return nil
	}
	h.mu.Lock()
	buf, ok := h.live[p]
	delete(h.live, p)
	h.mu.Unlock()

	if !ok {
		return ErrNotOwned
	}
	h.mem.Free(buf)
	return nil
}

// Owns reports whether p is a live block of this heap.
func (h *Heap) Owns(p unsafe.Pointer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.live[p]
	return ok
}

// Outstanding returns the number of live blocks.
func (h *Heap) Outstanding() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}
