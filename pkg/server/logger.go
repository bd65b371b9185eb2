package server

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type logStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// RecordingHandler is a slog.Handler that keeps every record of a run in
// memory and forwards it to an optional base handler.
type RecordingHandler struct {
	base   slog.Handler
	store  *logStore
	attrs  []slog.Attr
	groups []string
}

func NewRecordingHandler(base slog.Handler) *RecordingHandler {
	return &RecordingHandler{base: base, store: &logStore{}}
}

func (h *RecordingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *RecordingHandler) Handle(ctx context.Context, r slog.Record) error {
	meta := make(map[string]any)
	for _, a := range h.attrs {
		meta[a.Key] = a.Value.Any()
	}
	prefix := ""
	for _, g := range h.groups {
		prefix += g + "."
	}
	r.Attrs(func(a slog.Attr) bool {
		meta[prefix+a.Key] = a.Value.Any()
		return true
	})
	if len(meta) == 0 {
		meta = nil
	}

	h.store.mu.Lock()
	h.store.entries = append(h.store.entries, LogEntry{
		Timestamp: r.Time,
		Level:     r.Level.String(),
		Message:   r.Message,
		Metadata:  meta,
	})
	h.store.mu.Unlock()

	if h.base != nil && h.base.Enabled(ctx, r.Level) {
		return h.base.Handle(ctx, r)
	}
	return nil
}

func (h *RecordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), h.prefixed(attrs)...)
	if h.base != nil {
		next.base = h.base.WithAttrs(attrs)
	}
	return &next
}

func (h *RecordingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	if h.base != nil {
		next.base = h.base.WithGroup(name)
	}
	return &next
}

// Entries returns a copy of everything recorded so far.
func (h *RecordingHandler) Entries() []LogEntry {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return append([]LogEntry{}, h.store.entries...)
}

func (h *RecordingHandler) prefixed(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}
	prefix := ""
	for _, g := range h.groups {
		prefix += g + "."
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}
