package native

import (
	"errors"
	"unsafe"
)

// Array is a pointer to Length contiguous elements. A zero-length array has a
// nil Ptr.
type Array struct {
	Ptr    unsafe.Pointer
	Length int64
}

// Len returns the number of elements.
func (a Array) Len() int { return int(a.Length) }

// AllocArray allocates n zeroed elements of T and returns the array together
// with a slice view of it.
func AllocArray[T any](h *Heap, n int) (Array, []T) {
	if n <= 0 {
		return Array{}, nil
	}
	var zero T
	p := h.Alloc(n * int(unsafe.Sizeof(zero)))
	return Array{Ptr: p, Length: int64(n)}, unsafe.Slice((*T)(p), n)
}

// View returns the elements of a as a slice sharing its memory.
func View[T any](a Array) []T {
	if a.Ptr == nil || a.Length <= 0 {
		return nil
	}
	return unsafe.Slice((*T)(a.Ptr), a.Length)
}

// FreeArray releases the block of a. Nested blocks must be released first.
func FreeArray(h *Heap, a Array) error {
	return h.Free(a.Ptr)
}

// checkOwned fails before a nested free reads the elements of a released or
// foreign array.
func checkOwned(h *Heap, a Array) error {
	if a.Ptr != nil && !h.Owns(a.Ptr) {
		return ErrNotOwned
	}
	return nil
}

// AllocString copies s into a NUL-terminated block.
func AllocString(h *Heap, s string) *byte {
	p := h.Alloc(len(s) + 1)
	copy(unsafe.Slice((*byte)(p), len(s)+1), s)
	return (*byte)(p)
}

// FreeString releases a string returned by AllocString. nil is a no-op.
func FreeString(h *Heap, p *byte) error {
	return h.Free(unsafe.Pointer(p))
}

// GoString copies a NUL-terminated string. nil yields "".
func GoString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// AllocStringArray copies values into an array of NUL-terminated strings.
func AllocStringArray(h *Heap, values []string) Array {
	arr, view := AllocArray[*byte](h, len(values))
	for i, s := range values {
		view[i] = AllocString(h, s)
	}
	return arr
}

// FreeStringArray releases every string of a and then a itself.
func FreeStringArray(h *Heap, a Array) error {
	if err := checkOwned(h, a); err != nil {
		return err
	}
	var errs []error
	for _, p := range View[*byte](a) {
		errs = append(errs, FreeString(h, p))
	}
	errs = append(errs, FreeArray(h, a))
	return errors.Join(errs...)
}

// GoStrings copies an array of NUL-terminated strings.
func GoStrings(a Array) []string {
	view := View[*byte](a)
	out := make([]string, len(view))
	for i, p := range view {
		out[i] = GoString(p)
	}
	return out
}

// AllocBytes copies b into a byte array.
func AllocBytes(h *Heap, b []byte) Array {
	arr, view := AllocArray[byte](h, len(b))
	copy(view, b)
	return arr
}

// FreeBytes releases an array returned by AllocBytes.
func FreeBytes(h *Heap, a Array) error {
	return FreeArray(h, a)
}
