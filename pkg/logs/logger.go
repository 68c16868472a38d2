package logs

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes JSON lines with a timestamp and event fields. A nil or
// disabled Logger drops every event.
type Logger struct {
	out    *sink
	fields map[string]any
}

type sink struct {
	mu      sync.Mutex
	w       *bufio.Writer
	c       io.Closer
	enabled bool
}

// NewFromEnv returns a logger if SYNCEDIT_LOG is set to a truthy value
// or if SYNCEDIT_LOG_FILE is provided. Otherwise it returns a disabled logger.
// When enabled and no file is specified, it writes to ./syncedit.log.
func NewFromEnv() *Logger {
	lf := os.Getenv("SYNCEDIT_LOG_FILE")
	enabled := false
	if v := os.Getenv("SYNCEDIT_LOG"); v != "" && v != "0" && v != "false" {
		enabled = true
	}
	if lf != "" {
		enabled = true
	}
	if !enabled {
		return Disabled()
	}
	if lf == "" {
		lf = filepath.Join(".", "syncedit.log")
	}
	f, err := os.OpenFile(lf, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		// The terminal belongs to the UI, so there is nowhere to report this.
		return Disabled()
	}
	return New(f)
}

// New writes events to w. If w is an io.Closer it is closed by Close.
func New(w io.Writer) *Logger {
	s := &sink{w: bufio.NewWriter(w), enabled: true}
	if c, ok := w.(io.Closer); ok {
		s.c = c
	}
	return &Logger{out: s}
}

// Disabled returns a logger that drops everything.
func Disabled() *Logger {
	return &Logger{out: &sink{}}
}

// With returns a logger that adds fields to every event. The returned
// logger shares the underlying writer.
func (l *Logger) With(fields map[string]any) *Logger {
	if l == nil {
		return nil
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{out: l.out, fields: merged}
}

// Close flushes and closes the underlying file if enabled.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if !l.out.enabled {
		return
	}
	_ = l.out.w.Flush()
	if l.out.c != nil {
		_ = l.out.c.Close()
	}
	l.out.enabled = false
}

// Event writes a JSON line with the event name and fields.
// Common fields: client, url, variant, index, peer, error, state.
func (l *Logger) Event(event string, fields map[string]any) {
	if l == nil {
		return
	}
	rec := map[string]any{
		"time":  time.Now().Format(time.RFC3339Nano),
		"event": event,
	}
	for k, v := range l.fields {
		rec[k] = v
	}
	for k, v := range fields {
		rec[k] = v
	}
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if !l.out.enabled {
		return
	}
	enc := json.NewEncoder(l.out.w)
	_ = enc.Encode(rec)
	_ = l.out.w.Flush()
}
