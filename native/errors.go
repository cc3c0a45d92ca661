package native

import (
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/gridframe/adder"
	"github.com/hugr-lab/gridframe/internal/recovery"
	"github.com/hugr-lab/gridframe/network"
	"github.com/hugr-lab/gridframe/table"
)

// ErrorInfo is the error out-parameter of every fallible entry point
// (gf_error). Code is a gRPC status code, 0 when the call succeeded. Message
// is owned by the caller once set and released with ClearError.
type ErrorInfo struct {
	Code    int32
	Message *byte
}

// Code classifies err for the error channel.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	switch {
	case errors.Is(err, table.ErrSchema), errors.Is(err, adder.ErrUnknownModel):
		return codes.InvalidArgument
	case errors.Is(err, adder.ErrShape), errors.Is(err, ErrNotOwned):
		return codes.FailedPrecondition
	case errors.Is(err, network.ErrUnknownReference):
		return codes.NotFound
	case errors.Is(err, network.ErrDuplicateID):
		return codes.AlreadyExists
	}
	var rowErr *adder.RowError
	if errors.As(err, &rowErr) {
		return codes.InvalidArgument
	}
	return codes.Unknown
}

// SetError writes err into out. A nil err clears out. A message already in
// out is released first.
func SetError(h *Heap, out *ErrorInfo, err error) {
	if out == nil {
		return
	}
	ClearError(h, out)
	if err == nil {
		return
	}
	out.Code = int32(Code(err))
	out.Message = AllocString(h, err.Error())
}

// ClearError releases the message of out and resets it.
func ClearError(h *Heap, out *ErrorInfo) {
	if out == nil {
		return
	}
	if out.Message != nil {
		_ = FreeString(h, out.Message)
	}
	*out = ErrorInfo{}
}

// Guard runs fn at the outermost point of an entry point. Returned errors
// and panics are written into out; nothing propagates further.
// Reports whether fn succeeded.
func Guard(h *Heap, logger *slog.Logger, op string, out *ErrorInfo, fn func() error) bool {
	if logger == nil {
		logger = slog.Default()
	}
	err := recovery.RecoverToError(logger, op, fn)
	SetError(h, out, err)
	if err != nil {
		logger.Debug("Entry point failed",
			"operation", op,
			"code", Code(err).String(),
			"error", err,
		)
	}
	return err == nil
}
