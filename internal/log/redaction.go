// Package log provides slog plumbing shared by the command-line tools:
// a handler that scrubs credential material from records and a size-based
// rotating file writer.
package log

import (
	"context"
	"log/slog"
	"strings"
)

// sensitiveKeys lists attribute key substrings whose values are scrubbed.
// Matching is case-insensitive.
var sensitiveKeys = []string{
	"password",
	"pass",
	"secret",
	"token",
	"ticket",
	"cred",
	"keytab",
	"authorization",
}

const redactedValue = "[REDACTED]"

// RedactingHandler wraps another slog.Handler and replaces the values of
// credential-bearing attributes before they reach it.
type RedactingHandler struct {
	next slog.Handler
}

// NewRedactingHandler wraps next with redaction.
func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	var attrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, redactAttr(a))
		return true
	})

	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	out.AddAttrs(attrs...)
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbed[i] = redactAttr(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(scrubbed)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		members := make([]any, len(group))
		for i, g := range group {
			members[i] = redactAttr(g)
		}
		return slog.Group(a.Key, members...)
	}

	key := strings.ToLower(a.Key)
	for _, sens := range sensitiveKeys {
		if strings.Contains(key, sens) {
			return slog.String(a.Key, redactedValue)
		}
	}
	return a
}
