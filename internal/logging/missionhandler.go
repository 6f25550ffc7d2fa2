package logging

import (
	"context"
	"log/slog"
)

// MissionSource reports the mission being executed. An empty name means no
// mission has been created yet; attempt is 0 until the first launch.
type MissionSource func() (name string, attempt int)

// MissionHandler stamps every record with the current mission and attempt,
// read at the time the record is handled.
type MissionHandler struct {
	inner  slog.Handler
	source MissionSource
}

// NewMissionHandler wraps inner. A nil source leaves records untouched.
func NewMissionHandler(inner slog.Handler, source MissionSource) *MissionHandler {
	return &MissionHandler{inner: inner, source: source}
}

func (h *MissionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *MissionHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.source != nil {
		name, attempt := h.source()
		if name != "" {
			r.AddAttrs(slog.String("mission", name))
		}
		if attempt > 0 {
			r.AddAttrs(slog.Int("attempt", attempt))
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *MissionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MissionHandler{inner: h.inner.WithAttrs(attrs), source: h.source}
}

func (h *MissionHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &MissionHandler{inner: h.inner.WithGroup(name), source: h.source}
}
