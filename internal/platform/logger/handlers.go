package logger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// RedactingHandler masks sensitive attributes, including ones nested in groups.
type RedactingHandler struct {
	inner slog.Handler
	keys  map[string]struct{}
}

func NewRedactingHandler(inner slog.Handler, sensitive []string) *RedactingHandler {
	m := make(map[string]struct{}, len(sensitive))
	for _, k := range sensitive {
		m[strings.ToLower(k)] = struct{}{}
	}
	return &RedactingHandler{inner: inner, keys: m}
}

// Enabled implements slog.Handler.
func (h *RedactingHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.inner.Enabled(ctx, l)
}

// Handle implements slog.Handler.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	nr := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		nr.AddAttrs(h.redact(a))
		return true
	})
	return h.inner.Handle(ctx, nr)
}

// WithAttrs implements slog.Handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.redact(a)
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(clean), keys: h.keys}
}

// WithGroup implements slog.Handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name), keys: h.keys}
}

func (h *RedactingHandler) redact(a slog.Attr) slog.Attr {
	if _, ok := h.keys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, redacted)
	}
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		out := make([]any, len(group))
		for i, ga := range group {
			out[i] = h.redact(ga)
		}
		return slog.Group(a.Key, out...)
	case slog.KindString:
		if looksSensitive(v.String()) {
			return slog.String(a.Key, redacted)
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// looksSensitive catches bearer headers and JWTs logged under innocent keys.
func looksSensitive(s string) bool {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return true
	}
	return strings.HasPrefix(s, "eyJ") && strings.Count(s, ".") == 2
}

// MultiHandler fans a record out to every enabled handler. A failing sink
// does not stop the others; their errors are joined.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled implements slog.Handler.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs implements slog.Handler.
func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(x slog.Handler) slog.Handler { return x.WithAttrs(attrs) })
}

// WithGroup implements slog.Handler.
func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.each(func(x slog.Handler) slog.Handler { return x.WithGroup(name) })
}

func (h *MultiHandler) each(f func(slog.Handler) slog.Handler) *MultiHandler {
	out := make([]slog.Handler, len(h.handlers))
	for i, x := range h.handlers {
		out[i] = f(x)
	}
	return &MultiHandler{handlers: out}
}
