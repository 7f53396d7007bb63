// Package logger configures the process-wide slog logger and carries a
// per-request logger through contexts.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type contextKey struct{}

// Setup installs the default slog logger. Format is "json" or "text";
// anything else falls back to text. Unknown levels fall back to info.
func Setup(level string, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler).With("service", "docsearch"))
}

// WithRequestID stores the request id so FromContext can attach it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// FromContext returns a logger carrying the request id stored in ctx, or the
// default logger when none is present.
func FromContext(ctx context.Context) *slog.Logger {
	if requestID, ok := ctx.Value(contextKey{}).(string); ok && requestID != "" {
		return slog.Default().With("request_id", requestID)
	}
	return slog.Default()
}

// WithComponent returns the default logger tagged with a component name.
func WithComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
