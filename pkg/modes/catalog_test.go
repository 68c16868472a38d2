package modes

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLookupAndNext(t *testing.T) {
	c := Default()
	if _, ok := c.Lookup("markdown"); !ok {
		t.Fatalf("expected markdown in builtin catalog")
	}
	if _, ok := c.Lookup("cobol"); ok {
		t.Fatalf("unexpected cobol mode")
	}
	if got := c.Next("markdown").ID; got != "c_cpp" {
		t.Fatalf("expected c_cpp after markdown, got %s", got)
	}
	last := c.Modes[len(c.Modes)-1].ID
	if got := c.Next(last).ID; got != c.Modes[0].ID {
		t.Fatalf("expected wrap to %s, got %s", c.Modes[0].ID, got)
	}
	if got := c.Next("nope").ID; got != c.Modes[0].ID {
		t.Fatalf("unknown mode should restart at the first entry, got %s", got)
	}
}

func TestDetectByPath(t *testing.T) {
	c := Default()
	if m, ok := c.DetectByPath("/tmp/main.GO"); !ok || m.ID != "golang" {
		t.Fatalf("expected golang for .GO, got %v %v", m, ok)
	}
	if _, ok := c.DetectByPath("Makefile"); ok {
		t.Fatalf("expected no mode for a file without extension")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if c, err := Load(filepath.Join(dir, "missing.yaml")); err != nil || len(c.Modes) != len(Default().Modes) {
		t.Fatalf("missing file should give defaults, got %v %v", c, err)
	}

	path := filepath.Join(dir, "modes.yaml")
	data := "modes:\n  - id: haskell\n    name: Haskell\n    extensions: [.hs]\n  - id: text\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Modes) != 2 || c.Modes[0].ID != "haskell" || c.Modes[0].Extensions[0] != ".hs" {
		t.Fatalf("unexpected catalog %+v", c.Modes)
	}

	if err := os.WriteFile(path, []byte("modes:\n  - id: a\n  - id: a\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}
