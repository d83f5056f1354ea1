package log

import (
	"context"
	"log/slog"

	"github.com/ErlanBelekov/social-discovery/internal/reqctx"
)

// contextAttrs are copied from the request context onto every record, so a
// line logged deep in the auth adapter still ties back to its request and
// browser.
var contextAttrs = []struct {
	key  string
	from func(context.Context) string
}{
	{"request_id", reqctx.RequestID},
	{"client_id", reqctx.ClientID},
}

// ContextHandler wraps an slog.Handler and adds contextAttrs to each record.
// Loggers built with a client_id attribute already (per-instance loggers) do
// not get it twice.
type ContextHandler struct {
	inner       slog.Handler
	clientBound bool
}

func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, a := range contextAttrs {
		if a.key == "client_id" && h.clientBound {
			continue
		}
		if v := a.from(ctx); v != "" {
			r.AddAttrs(slog.String(a.key, v))
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prebound := h.clientBound
	for _, a := range attrs {
		if a.Key == "client_id" {
			prebound = true
		}
	}
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), clientBound: prebound}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name), clientBound: h.clientBound}
}
