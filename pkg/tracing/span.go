// Package tracing times the phases of a request as a tree of spans and emits
// the tree through slog when the root span completes. It is deliberately
// in-process: spans never leave the service.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type spanContextKey struct{}

// Span is one timed phase. Child spans are attached via StartChildSpan and
// share the root's trace id.
type Span struct {
	Name    string
	TraceID string

	mu       sync.Mutex
	start    time.Time
	duration time.Duration
	attrs    []slog.Attr
	children []*Span
}

// StartSpan opens a root span and stores it in the returned context. traceID
// ties the emitted log lines to the request (normally the request id).
func StartSpan(ctx context.Context, name string, traceID string) (context.Context, *Span) {
	span := &Span{
		Name:    name,
		TraceID: traceID,
		start:   time.Now(),
	}
	return context.WithValue(ctx, spanContextKey{}, span), span
}

// StartChildSpan opens a span under the one stored in ctx. Without a parent
// in ctx the child behaves as a root with an empty trace id.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	child := &Span{
		Name:  name,
		start: time.Now(),
	}
	if parent := SpanFromContext(ctx); parent != nil {
		child.TraceID = parent.TraceID
		parent.mu.Lock()
		parent.children = append(parent.children, child)
		parent.mu.Unlock()
	}
	return context.WithValue(ctx, spanContextKey{}, child), child
}

// SpanFromContext returns the span stored in ctx, or nil.
func SpanFromContext(ctx context.Context) *Span {
	span, _ := ctx.Value(spanContextKey{}).(*Span)
	return span
}

// End freezes the span's duration. Ending twice keeps the first duration.
func (s *Span) End() {
	s.mu.Lock()
	if s.duration == 0 {
		s.duration = time.Since(s.start)
	}
	s.mu.Unlock()
}

// SetAttr records a key-value pair emitted with the span's log line.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.attrs = append(s.attrs, slog.Any(key, value))
	s.mu.Unlock()
}

// Duration returns the frozen duration, or the running time if the span has
// not ended.
func (s *Span) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.duration == 0 {
		return time.Since(s.start)
	}
	return s.duration
}

// Log emits the span and its descendants as one slog line per span.
func (s *Span) Log() {
	s.emit(0)
}

func (s *Span) emit(depth int) {
	s.mu.Lock()
	duration := s.duration
	if duration == 0 {
		duration = time.Since(s.start)
	}
	attrs := make([]slog.Attr, 0, len(s.attrs)+4)
	attrs = append(attrs,
		slog.String("trace_id", s.TraceID),
		slog.String("span", s.Name),
		slog.Int64("duration_ms", duration.Milliseconds()),
		slog.Int("depth", depth),
	)
	attrs = append(attrs, s.attrs...)
	children := s.children
	s.mu.Unlock()

	slog.LogAttrs(context.Background(), slog.LevelInfo, "span", attrs...)
	for _, child := range children {
		child.emit(depth + 1)
	}
}
