package logging

import (
	"context"
	"log/slog"

	"termstatus/statusline"
)

// StatusHandler wraps an slog.Handler so that every record is emitted
// through a status line coordinator as one serialized unit: the status row
// is cleared, the underlying handler writes its line, and the status is
// repainted beneath it. Records at warn level and above additionally raise
// a matching notification on the status line.
//
// This lets code that only speaks slog coexist with the overwritten status
// row without any extra synchronization:
//
//	status := statusline.New()
//	base := slog.NewTextHandler(os.Stderr, nil)
//	logger := slog.New(logging.NewStatusHandler(base, status))
type StatusHandler struct {
	underlying slog.Handler
	status     *statusline.StatusLine
}

// NewStatusHandler creates a StatusHandler routing records to underlying
// through the given status line.
func NewStatusHandler(underlying slog.Handler, status *statusline.StatusLine) *StatusHandler {
	return &StatusHandler{
		underlying: underlying,
		status:     status,
	}
}

// Enabled defers to the underlying handler; a level it suppresses never
// reaches the status line and never produces a notification.
func (h *StatusHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.underlying.Enabled(ctx, level)
}

// Handle emits the record through the status line's serial worker and
// returns without waiting for the write to land. Errors from the underlying
// handler or the sink stay on the queued job's future; surfacing them here
// would require blocking every log call on the queue and would deadlock a
// logger that is itself invoked from a queued job.
func (h *StatusHandler) Handle(ctx context.Context, r slog.Record) error {
	sev := statusline.SeverityForLevel(r.Level)
	note := ""
	if r.Level >= slog.LevelWarn {
		note = r.Message
	}

	rec := r.Clone()
	h.status.Emit(sev, note, func() error {
		return h.underlying.Handle(ctx, rec)
	})
	return nil
}

// WithAttrs returns a StatusHandler whose underlying handler carries attrs.
func (h *StatusHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &StatusHandler{
		underlying: h.underlying.WithAttrs(attrs),
		status:     h.status,
	}
}

// WithGroup returns a StatusHandler whose underlying handler opens group.
func (h *StatusHandler) WithGroup(name string) slog.Handler {
	return &StatusHandler{
		underlying: h.underlying.WithGroup(name),
		status:     h.status,
	}
}
