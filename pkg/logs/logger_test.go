package logs

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEventWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf).With(map[string]any{"client": "c1"})
	l.Event("session.open", map[string]any{"url": "ws://x/"})
	l.With(map[string]any{"client": "c2"}).Event("transport.closed", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if rec["event"] != "session.open" || rec["client"] != "c1" || rec["url"] != "ws://x/" {
		t.Fatalf("unexpected record %v", rec)
	}
	if _, ok := rec["time"]; !ok {
		t.Fatalf("missing time field")
	}
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if rec["client"] != "c2" {
		t.Fatalf("With should override inherited fields, got %v", rec["client"])
	}
}

func TestDisabledAndNil(t *testing.T) {
	var nilLogger *Logger
	nilLogger.Event("x", nil)
	nilLogger.Close()
	if nilLogger.With(map[string]any{"a": 1}) != nil {
		t.Fatalf("With on nil logger should stay nil")
	}
	Disabled().Event("x", map[string]any{"a": 1})
}

func TestCloseStopsWriting(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Close()
	l.Event("late", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output after Close, got %q", buf.String())
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("SYNCEDIT_LOG", "")
	t.Setenv("SYNCEDIT_LOG_FILE", "")
	l := NewFromEnv()
	l.Event("ignored", nil)
	l.Close()

	path := filepath.Join(t.TempDir(), "out.log")
	t.Setenv("SYNCEDIT_LOG_FILE", path)
	l = NewFromEnv()
	l.Event("written", map[string]any{"n": 1})
	l.Close()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"event":"written"`) {
		t.Fatalf("expected event in log file, got %q", data)
	}
}
