package logging

import (
	"context"
	"log/slog"

	"mercator-hq/confkit/pkg/mask"
)

// Handler wraps a slog.Handler, adding context fields and, when a masker
// is set, redacting attributes.
type Handler struct {
	next   slog.Handler
	masker *mask.Masker
}

// NewHandler wraps next. A nil masker disables redaction.
func NewHandler(next slog.Handler, masker *mask.Masker) *Handler {
	return &Handler{next: next, masker: masker}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	fields := contextFields(ctx)
	if h.masker == nil && len(fields) == 0 {
		return h.next.Handle(ctx, r)
	}

	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	for _, a := range fields {
		out.AddAttrs(h.redact(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redact(a)
	}
	return &Handler{next: h.next.WithAttrs(redacted), masker: h.masker}
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name), masker: h.masker}
}

func (h *Handler) redact(a slog.Attr) slog.Attr {
	if h.masker == nil {
		return a
	}
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, g := range group {
			out[i] = h.redact(g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	if h.masker.IsSensitiveKey(a.Key) {
		return slog.Any(a.Key, mask.Value(a.Value.Any()))
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, h.masker.String(a.Value.String()))
	}
	if err, ok := a.Value.Any().(error); ok {
		return slog.String(a.Key, h.masker.String(err.Error()))
	}
	return a
}
