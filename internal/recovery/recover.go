// Package recovery turns panics into errors at the outermost point of an
// exported entry point, so that no panic unwinds into a foreign caller.
package recovery

import (
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecoverToError runs fn and converts a panic into a codes.Internal status
// error.
//
// Example:
//
//	err := recovery.RecoverToError(logger, "gf_produce", func() error {
//	    return registry.Produce(net, elementType, filter, emit)
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = status.Errorf(codes.Internal, "%s panicked: %v", operation, r)
		}
	}()

	return fn()
}
