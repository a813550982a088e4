package logging

import (
	"context"
	"log/slog"
)

// fanoutHandler sends every record to both the local sink and the OTLP
// bridge handler. A bridge failure never affects the local log — logging
// itself must not be a point of failure.
type fanoutHandler struct {
	local  slog.Handler
	bridge slog.Handler
}

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.local.Enabled(ctx, level) || h.bridge.Enabled(ctx, level)
}

func (h fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.local.Handle(ctx, record.Clone())
	_ = h.bridge.Handle(ctx, record.Clone())
	return err
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return fanoutHandler{local: h.local.WithAttrs(attrs), bridge: h.bridge.WithAttrs(attrs)}
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	return fanoutHandler{local: h.local.WithGroup(name), bridge: h.bridge.WithGroup(name)}
}
