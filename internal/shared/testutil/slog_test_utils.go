package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log line with its attributes flattened.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Has reports whether the record carries key with value.
func (r LogRecord) Has(key string, value any) bool {
	v, ok := r.Attrs[key]
	return ok && v == value
}

type recordSink struct {
	mu      sync.Mutex
	records []LogRecord
}

// BufferedSlogHandler records every log line at every level and echoes it
// to t.Log so failing tests show what the code logged.
type BufferedSlogHandler struct {
	sink  *recordSink
	attrs []slog.Attr
	t     *testing.T
}

func NewBufferedSlogHandler(t *testing.T) *BufferedSlogHandler {
	return &BufferedSlogHandler{sink: &recordSink{}, t: t}
}

// NewTestLogger returns a logger and the handler capturing its output.
func NewTestLogger(t *testing.T) (*slog.Logger, *BufferedSlogHandler) {
	h := NewBufferedSlogHandler(t)
	return slog.New(h), h
}

func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	rec := LogRecord{Level: r.Level, Message: r.Message, Attrs: make(map[string]any, len(h.attrs)+r.NumAttrs())}
	for _, a := range h.attrs {
		rec.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value.Any()
		return true
	})

	h.sink.mu.Lock()
	h.sink.records = append(h.sink.records, rec)
	h.sink.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", rec.Level, rec.Message, rec.Attrs)
	}
	return nil
}

// WithAttrs returns a handler that shares this handler's records.
func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BufferedSlogHandler{
		sink:  h.sink,
		attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...),
		t:     h.t,
	}
}

// WithGroup ignores the group; captured keys stay flat.
func (h *BufferedSlogHandler) WithGroup(string) slog.Handler { return h }

func (h *BufferedSlogHandler) GetRecords() []LogRecord {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return append([]LogRecord(nil), h.sink.records...)
}

func (h *BufferedSlogHandler) GetRecordsByLevel(level slog.Level) []LogRecord {
	return h.filter(func(r LogRecord) bool { return r.Level == level })
}

// ContainsMessage matches message as a substring of any record's message.
func (h *BufferedSlogHandler) ContainsMessage(message string) bool {
	return len(h.filter(func(r LogRecord) bool { return strings.Contains(r.Message, message) })) > 0
}

// ContainsAttr reports whether any record carries key with value. Integer
// attributes compare as int64.
func (h *BufferedSlogHandler) ContainsAttr(key string, value any) bool {
	return len(h.filter(func(r LogRecord) bool { return r.Has(key, value) })) > 0
}

func (h *BufferedSlogHandler) filter(keep func(LogRecord) bool) []LogRecord {
	var out []LogRecord
	for _, r := range h.GetRecords() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// AssertLogContains fails t unless a record at level contains message.
func AssertLogContains(t *testing.T, handler *BufferedSlogHandler, level slog.Level, message string) {
	t.Helper()
	records := handler.GetRecordsByLevel(level)
	for _, r := range records {
		if strings.Contains(r.Message, message) {
			return
		}
	}
	t.Errorf("no %s record containing %q; got:", level, message)
	for _, r := range records {
		t.Logf("  - %s", r.Message)
	}
}
