package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const DefaultRingSize = 1000

// RingBuffer retains the most recent formatted log lines so they can be
// exported as a plain-text dump. It replaces the browser-local `app_logs`
// store of the original portal: same `timestamp [LEVEL] message` line
// format, same bounded size, but injected as a sink instead of living in a
// global singleton.
type RingBuffer struct {
	mu    sync.Mutex
	lines []string
	size  int
}

func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{size: size}
}

func (b *RingBuffer) append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.size {
		b.lines = b.lines[len(b.lines)-b.size:]
	}
}

// Export returns the retained lines joined by newlines, oldest first.
func (b *RingBuffer) Export() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return []byte(strings.Join(b.lines, "\n"))
}

func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

func (b *RingBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}

// Handler adapts the buffer into an slog sink at the given level.
func (b *RingBuffer) Handler(level slog.Level) slog.Handler {
	return &ringHandler{buf: b, level: level}
}

type ringHandler struct {
	buf   *RingBuffer
	level slog.Level
	attrs []slog.Attr
}

func (h *ringHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *ringHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Time.UTC().Format(time.RFC3339))
	sb.WriteString(" [")
	sb.WriteString(levelTag(record.Level))
	sb.WriteString("] ")
	sb.WriteString(record.Message)

	for _, attr := range h.attrs {
		writeAttr(&sb, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&sb, attr)
		return true
	})

	h.buf.append(sb.String())
	return nil
}

func (h *ringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ringHandler{buf: h.buf, level: h.level, attrs: merged}
}

func (h *ringHandler) WithGroup(string) slog.Handler {
	// Groups are flattened; the export format is a flat line per record.
	return h
}

func writeAttr(sb *strings.Builder, attr slog.Attr) {
	sb.WriteString(" ")
	sb.WriteString(attr.Key)
	sb.WriteString("=")
	sb.WriteString(fmt.Sprint(attr.Value.Any()))
}

func levelTag(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
