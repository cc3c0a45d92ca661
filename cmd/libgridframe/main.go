// Command libgridframe builds the gridframe C shared library:
//
//	go build -buildmode=c-shared -o libgridframe.so ./cmd/libgridframe
//
// Memory returned to callers comes from the C heap and is tracked by a
// native.Heap, so every gf_free_* call is checked against what was handed out.
// The ABI is described in gridframe.h.
package main

import (
	"github.com/apache/arrow-go/v18/arrow/memory/mallocator"

	"github.com/hugr-lab/gridframe/native"
)

var heap = native.NewHeap(mallocator.NewMallocator())

func main() {}
