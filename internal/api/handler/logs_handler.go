package handler

import (
	"log/slog"
	"net/http"

	"credit-portal/internal/infrastructure/logging"
)

// LogsHandler exposes the in-process log ring buffer as a plain-text
// download for support diagnostics.
type LogsHandler struct {
	ring   *logging.RingBuffer
	logger *slog.Logger
}

func NewLogsHandler(ring *logging.RingBuffer, l *slog.Logger) *LogsHandler {
	if ring == nil {
		panic("ring buffer cannot be nil")
	}
	return &LogsHandler{
		ring:   ring,
		logger: l.With("component", "LogsHandler"),
	}
}

// ExportLogs handles GET /logs/export
func (h *LogsHandler) ExportLogs(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "Exporting log buffer", slog.Int("lines", h.ring.Len()))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="credit-portal-logs.txt"`)
	w.WriteHeader(http.StatusOK)
	w.Write(h.ring.Export())
}
