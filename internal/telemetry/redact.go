package telemetry

import (
	"context"
	"log/slog"
	"strings"
)

// RedactHandler wraps a slog handler and scrubs configured secret
// values (provider API keys and the like) from log output. The secret
// set is fixed at construction.
type RedactHandler struct {
	inner   slog.Handler
	secrets []string
}

// NewRedactHandler creates a handler that redacts the given values.
// Empty values are ignored.
func NewRedactHandler(inner slog.Handler, secrets ...string) *RedactHandler {
	kept := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return &RedactHandler{inner: inner, secrets: kept}
}

// Enabled delegates to the inner handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle scrubs secret values from the message and string attributes.
func (h *RedactHandler) Handle(ctx context.Context, record slog.Record) error {
	if len(h.secrets) == 0 {
		return h.inner.Handle(ctx, record)
	}

	redacted := slog.NewRecord(record.Time, record.Level, h.scrub(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		if a.Value.Kind() == slog.KindString {
			a = slog.String(a.Key, h.scrub(a.Value.String()))
		}
		redacted.AddAttrs(a)
		return true
	})
	return h.inner.Handle(ctx, redacted)
}

func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RedactHandler{inner: h.inner.WithAttrs(attrs), secrets: h.secrets}
}

func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{inner: h.inner.WithGroup(name), secrets: h.secrets}
}

func (h *RedactHandler) scrub(s string) string {
	for _, secret := range h.secrets {
		s = strings.ReplaceAll(s, secret, "***REDACTED***")
	}
	return s
}
