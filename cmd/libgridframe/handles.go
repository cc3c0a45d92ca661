package main

import (
	"errors"
	"runtime/cgo"
	"unsafe"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/gridframe"
)

// handleValue resolves a caller-held handle. Zero, released and mistyped
// handles are NotFound.
func handleValue[T any](h uintptr, what string) (v T, err error) {
	if h == 0 {
		return v, status.Errorf(codes.NotFound, "%s handle is null", what)
	}
	defer func() {
		if recover() != nil {
			err = status.Errorf(codes.NotFound, "invalid %s handle %d", what, h)
		}
	}()
	v, ok := cgo.Handle(h).Value().(T)
	if !ok {
		return v, status.Errorf(codes.NotFound, "handle %d is not a %s", h, what)
	}
	return v, nil
}

// deleteHandle releases h. Releasing an invalid handle is NotFound.
func deleteHandle(h uintptr, what string) (err error) {
	if h == 0 {
		return status.Errorf(codes.NotFound, "%s handle is null", what)
	}
	defer func() {
		if recover() != nil {
			err = status.Errorf(codes.NotFound, "invalid %s handle %d", what, h)
		}
	}()
	cgo.Handle(h).Delete()
	return nil
}

// requireOut rejects a NULL out-parameter before anything is allocated for it.
func requireOut(p unsafe.Pointer, what string) error {
	if p == nil {
		return status.Errorf(codes.InvalidArgument, "%s out-parameter is null", what)
	}
	return nil
}

// appliedCount is the result of an update entry point: n on success, and on
// error n when some rows were applied before the failure, -1 otherwise.
func appliedCount(n int, err error) int {
	if err != nil && n == 0 {
		return -1
	}
	return n
}

// boundary gives registry errors a status code. Other errors are classified
// by native.Code.
func boundary(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gridframe.ErrCategoryNotFound), errors.Is(err, gridframe.ErrUnknownElementType):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, gridframe.ErrInvalidConfig):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return err
}
