// Package ctxlog passes a slog.Logger through context.Context so that
// every layer logs through the logger the application configured, without
// threading a logger argument through each call.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is an unexported type so no other package can collide with it.
type key struct{}

var loggerKey = key{}

// WithLogger returns a context carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from the context. Library code may be
// called without one; the process-wide default logger is the fallback.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// With returns a context whose logger carries the extra attributes, for
// scoping log output to one model or one optimization run.
func With(ctx context.Context, args ...any) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(args...))
}
