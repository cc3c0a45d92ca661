package main

import (
	"errors"
	"fmt"
	"runtime/cgo"
	"testing"
	"unsafe"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/gridframe"
	"github.com/hugr-lab/gridframe/adder"
	"github.com/hugr-lab/gridframe/native"
	"github.com/hugr-lab/gridframe/network"
)

func TestHandleValue(t *testing.T) {
	net := network.New("n1")
	h := uintptr(cgo.NewHandle(net))

	got, err := handleValue[*network.Network](h, "network")
	if err != nil || got != net {
		t.Fatalf("handleValue() = %v, %v", got, err)
	}
	if _, err := handleValue[*gridframe.Registry](h, "registry"); status.Code(err) != codes.NotFound {
		t.Errorf("mistyped handle: expected NotFound, got %v", err)
	}

	if err := deleteHandle(h, "network"); err != nil {
		t.Fatalf("deleteHandle() failed: %v", err)
	}
	if _, err := handleValue[*network.Network](h, "network"); status.Code(err) != codes.NotFound {
		t.Errorf("released handle: expected NotFound, got %v", err)
	}
	if err := deleteHandle(h, "network"); status.Code(err) != codes.NotFound {
		t.Errorf("second delete: expected NotFound, got %v", err)
	}
	if _, err := handleValue[*network.Network](0, "network"); status.Code(err) != codes.NotFound {
		t.Errorf("null handle: expected NotFound, got %v", err)
	}
}

func TestBoundaryCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"nil", nil, codes.OK},
		{"category", fmt.Errorf("%w: x", gridframe.ErrCategoryNotFound), codes.NotFound},
		{"element type", fmt.Errorf("%w: X", gridframe.ErrUnknownElementType), codes.NotFound},
		{"config", fmt.Errorf("%w: dup", gridframe.ErrInvalidConfig), codes.InvalidArgument},
		{"shape passes through", &adder.ShapeError{Category: "buses", Msg: "no tables"}, codes.FailedPrecondition},
		{"other", errors.New("boom"), codes.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := native.Code(boundary(tt.err)); got != tt.want {
				t.Errorf("code = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRequireOut(t *testing.T) {
	if err := requireOut(nil, "series"); status.Code(err) != codes.InvalidArgument {
		t.Errorf("null out: expected InvalidArgument, got %v", err)
	}
	var arr native.Array
	if err := requireOut(unsafe.Pointer(&arr), "series"); err != nil {
		t.Errorf("requireOut() failed: %v", err)
	}
}

func TestAppliedCount(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		n    int
		err  error
		want int
	}{
		{"success", 3, nil, 3},
		{"nothing matched", 0, nil, 0},
		{"rejected up front", 0, boom, -1},
		{"failed after some rows", 2, boom, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := appliedCount(tt.n, tt.err); got != tt.want {
				t.Errorf("appliedCount(%d, %v) = %d, want %d", tt.n, tt.err, got, tt.want)
			}
		})
	}
}
