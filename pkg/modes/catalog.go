// Package modes lists the editing modes a session can announce to its peer.
package modes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Spec defines one mode. ID is the name sent on the wire.
type Spec struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`
}

// Catalog is the ordered list of known modes.
type Catalog struct {
	Modes []Spec `yaml:"modes"`
}

// Default returns the builtin catalog.
func Default() *Catalog {
	return &Catalog{Modes: []Spec{
		{ID: "markdown", Name: "Markdown", Extensions: []string{".md", ".markdown"}},
		{ID: "c_cpp", Name: "C/C++", Extensions: []string{".c", ".h", ".cpp", ".hpp"}},
		{ID: "python", Name: "Python", Extensions: []string{".py"}},
		{ID: "javascript", Name: "JavaScript", Extensions: []string{".js"}},
		{ID: "golang", Name: "Go", Extensions: []string{".go"}},
		{ID: "rust", Name: "Rust", Extensions: []string{".rs"}},
		{ID: "text", Name: "Plain text", Extensions: []string{".txt"}},
	}}
}

// Load reads a YAML catalog. A missing file yields the builtin catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("modes %s: %w", path, err)
	}
	if len(c.Modes) == 0 {
		return Default(), nil
	}
	seen := make(map[string]bool, len(c.Modes))
	for i, m := range c.Modes {
		if m.ID == "" {
			return nil, fmt.Errorf("modes %s: entry %d has no id", path, i)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("modes %s: duplicate id %q", path, m.ID)
		}
		seen[m.ID] = true
	}
	return &c, nil
}

// LoadDefault reads ~/.syncedit/modes.yaml.
func LoadDefault() (*Catalog, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	return Load(filepath.Join(home, ".syncedit", "modes.yaml"))
}

// Lookup finds a mode by id.
func (c *Catalog) Lookup(id string) (Spec, bool) {
	for _, m := range c.Modes {
		if m.ID == id {
			return m, true
		}
	}
	return Spec{}, false
}

// Next returns the mode after id, wrapping around. Unknown ids yield the
// first mode.
func (c *Catalog) Next(id string) Spec {
	if len(c.Modes) == 0 {
		return Spec{}
	}
	for i, m := range c.Modes {
		if m.ID == id {
			return c.Modes[(i+1)%len(c.Modes)]
		}
	}
	return c.Modes[0]
}

// DetectByPath returns the first mode claiming the file's extension.
func (c *Catalog) DetectByPath(path string) (Spec, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return Spec{}, false
	}
	for _, m := range c.Modes {
		for _, e := range m.Extensions {
			if strings.EqualFold(e, ext) {
				return m, true
			}
		}
	}
	return Spec{}, false
}
