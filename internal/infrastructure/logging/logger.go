package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/traceid"

	"credit-portal/internal/config"
)

// NewLogger builds the application logger and the exportable ring buffer
// sink. Every record goes both to stdout (JSON or text per config) and to
// the ring buffer, which callers can expose for download.
func NewLogger(cfg config.LoggerConfig) (*slog.Logger, *RingBuffer) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var primary slog.Handler
	if strings.ToLower(cfg.Encoding) == "text" {
		primary = slog.NewTextHandler(os.Stdout, opts)
	} else {
		primary = slog.NewJSONHandler(os.Stdout, opts)
	}

	primary = traceid.LogHandler(primary)

	ring := NewRingBuffer(cfg.RingSize)
	logger := slog.New(NewTeeHandler(primary, ring.Handler(level)))
	slog.SetDefault(logger)
	return logger, ring
}

// TeeHandler forwards every record to all wrapped handlers.
type TeeHandler struct {
	handlers []slog.Handler
}

func NewTeeHandler(handlers ...slog.Handler) *TeeHandler {
	return &TeeHandler{handlers: handlers}
}

func (t *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *TeeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &TeeHandler{handlers: next}
}

func (t *TeeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return &TeeHandler{handlers: next}
}
