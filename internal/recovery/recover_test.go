package recovery

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecoverToError(t *testing.T) {
	logger := quietLogger()

	err := RecoverToError(logger, "op", func() error { panic("boom") })
	if status.Code(err) != codes.Internal {
		t.Errorf("panic should become Internal, got %v", err)
	}

	want := errors.New("plain")
	if err := RecoverToError(logger, "op", func() error { return want }); err != want {
		t.Errorf("returned error should pass through, got %v", err)
	}
}
