package gridframe

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DefaultProviderName is used when Config.DefaultProvider is empty.
const DefaultProviderName = "OpenLoadFlow"

// Config contains the process-wide settings captured when a registry is built.
type Config struct {
	// Allocator for Arrow memory management.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: Only used if Logger is nil.
	LogLevel *slog.Level

	// DefaultProvider names the engine implementation used when a caller
	// does not pick one.
	// OPTIONAL: Uses DefaultProviderName if empty.
	DefaultProvider string

	// Compression enables zstd on IPC streams produced by the registry.
	Compression bool
}

// Standard errors returned by gridframe package.
var (
	// ErrInvalidConfig indicates Config or registry validation failed.
	ErrInvalidConfig = errors.New("invalid registry config")

	// ErrCategoryNotFound indicates an adder category lookup failed.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrUnknownElementType indicates no mapper serves an element type.
	ErrUnknownElementType = errors.New("unknown element type")
)

// resolve fills in defaults.
func (c Config) resolve() (Config, error) {
	if c.Allocator == nil {
		c.Allocator = memory.DefaultAllocator
	}
	if c.Logger == nil {
		if c.LogLevel != nil {
			c.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: *c.LogLevel,
			}))
		} else {
			c.Logger = slog.Default()
		}
	}
	if c.DefaultProvider == "" {
		c.DefaultProvider = DefaultProviderName
	}
	for _, r := range c.DefaultProvider {
		if r < ' ' {
			return c, fmt.Errorf("%w: provider name contains control characters", ErrInvalidConfig)
		}
	}
	return c, nil
}
