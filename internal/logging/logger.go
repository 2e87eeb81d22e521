// Package logging defines the structured logger used across the service.
// The interface keeps call sites independent of the backing implementation;
// the default one wraps slog.
package logging

import "context"

// Logger is a context-aware structured logger. Variadic args are
// alternating key-value pairs:
//
//	log.Info(ctx, "file uploaded", "identifier", id, "size", size)
type Logger interface {
	// Debug logs fine-grained diagnostics.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs normal operational events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always carries the given key-value pairs.
	With(args ...any) Logger
}
