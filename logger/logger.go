// Package logger builds slog loggers for the SDK: a JSON stdout logger for
// command-line consumers, an optional Sentry-backed variant, and a no-op
// logger used as the default inside library components.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/codesechub/hubclient/requestid"
)

// ContextExtractor extracts a slog attribute from context.
// Extractors run per log call so request-scoped values stay fresh.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// WithRequestID returns an extractor that attaches the outbound request ID
// stored in the context by the API client.
func WithRequestID() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id := requestid.FromContext(ctx)
		if id == "" {
			return slog.Attr{}, false
		}
		return slog.String("request_id", id), true
	}
}

// New creates a JSON-formatted logger writing to stdout.
func New(extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(newContextHandler(h, extractors...))
}

// NewDebug creates a JSON-formatted stdout logger that also emits debug
// records, including per-request traces from the API client.
func NewDebug(extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return slog.New(newContextHandler(h, extractors...))
}

// NewNope creates a logger that discards all output.
// Library components use it when no logger is injected.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// contextHandler wraps a slog.Handler and injects context-extracted
// attributes into every record.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func newContextHandler(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	return &contextHandler{next: next, extractors: clean}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
