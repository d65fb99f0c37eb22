package logger

import (
	"context"
	"log/slog"
)

// Fields are kept in the context rather than a logger so a component's own
// logger can be scoped to the request, not only the process default.
type fieldsKey struct{}

// With returns a context carrying fields in addition to any already attached.
func With(ctx context.Context, fields ...any) context.Context {
	prev := Fields(ctx)
	merged := make([]any, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// Fields returns the key/value pairs attached to ctx.
func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(fieldsKey{}).([]any)
	return f
}

// Scoped returns base with the request fields of ctx applied.
func Scoped(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = LoggerWrapper()
	}
	if f := Fields(ctx); len(f) > 0 {
		return base.With(f...)
	}
	return base
}

// From returns the process logger scoped to ctx.
func From(ctx context.Context) *slog.Logger {
	return Scoped(ctx, LoggerWrapper())
}
