package logging

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// MultiHandler writes each record to several handlers, such as the stderr
// handler and the JSON handler behind --log-file.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler returns a handler that writes to every one of handlers.
// Nested MultiHandlers are flattened and a single handler is returned as is.
func NewMultiHandler(handlers ...slog.Handler) slog.Handler {
	var flat []slog.Handler
	for _, h := range handlers {
		if m, ok := h.(*MultiHandler); ok {
			flat = append(flat, m.handlers...)
			continue
		}
		if h != nil {
			flat = append(flat, h)
		}
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &MultiHandler{handlers: flat}
}

// Enabled reports whether any handler accepts level.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sub := range h.handlers {
		if sub.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes a copy of r to each handler that accepts its level. A
// failing handler does not keep the others from writing; all failures are
// returned together.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, sub := range h.handlers {
		if !sub.Enabled(ctx, r.Level) {
			continue
		}
		if err := sub.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(sub slog.Handler) slog.Handler { return sub.WithAttrs(attrs) })
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.each(func(sub slog.Handler) slog.Handler { return sub.WithGroup(name) })
}

func (h *MultiHandler) each(f func(slog.Handler) slog.Handler) *MultiHandler {
	out := make([]slog.Handler, len(h.handlers))
	for i, sub := range h.handlers {
		out[i] = f(sub)
	}
	return &MultiHandler{handlers: out}
}
