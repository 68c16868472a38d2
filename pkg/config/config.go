package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"
)

// Multi-character edit policies.
const (
	MultiCharDrop      = "drop"
	MultiCharDecompose = "decompose"
)

// Keybinding represents a single key combination.
type Keybinding struct {
	Key  tcell.Key
	Rune rune
	Mod  tcell.ModMask
	text string
}

// Server locates the session peer.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// URL renders the websocket endpoint.
func (s Server) URL() string {
	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(s.Host, strconv.Itoa(s.Port)), Path: s.Path}
	return u.String()
}

// Reconnect controls what happens when the connection drops.
type Reconnect struct {
	Enabled         bool          `yaml:"enabled"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxElapsed      time.Duration `yaml:"max_elapsed"`
}

// Edits controls how local edits are translated.
type Edits struct {
	MultiChar string `yaml:"multi_char"`
}

// ThemeConfig selects a builtin theme and the peer cursor palette.
type ThemeConfig struct {
	Name       string   `yaml:"name"`
	PeerColors []string `yaml:"peer_colors"`
}

// Config holds user configuration values.
type Config struct {
	Server    Server                `yaml:"server"`
	Reconnect Reconnect             `yaml:"reconnect"`
	Edits     Edits                 `yaml:"edits"`
	Mode      string                `yaml:"mode"`
	Keymap    map[string]Keybinding `yaml:"keymap"`
	Theme     ThemeConfig           `yaml:"theme"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server:    Server{Host: "127.0.0.1", Port: 3012, Path: "/"},
		Reconnect: Reconnect{Enabled: true, InitialInterval: 250 * time.Millisecond, MaxElapsed: 30 * time.Second},
		Edits:     Edits{MultiChar: MultiCharDrop},
		Mode:      "markdown",
		Keymap:    DefaultKeymap(),
		Theme:     ThemeConfig{Name: "default"},
	}
}

// DefaultKeymap provides builtin command bindings.
func DefaultKeymap() map[string]Keybinding {
	return map[string]Keybinding{
		"quit":    mustParse("Ctrl+Q"),
		"compile": mustParse("Ctrl+R"),
		"commit":  mustParse("Ctrl+G"),
		"mode":    mustParse("Ctrl+L"),
		"theme":   mustParse("Ctrl+T"),
		"help":    mustParse("F1"),
	}
}

// Load loads configuration from the provided path. If the file does not
// exist, defaults are returned. Keys absent from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	keymap := cfg.Keymap
	cfg.Keymap = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	for name, kb := range cfg.Keymap {
		keymap[name] = kb
	}
	cfg.Keymap = keymap
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault attempts to read ~/.syncedit/config.yaml.
func LoadDefault() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	path := filepath.Join(home, ".syncedit", "config.yaml")
	return Load(path)
}

// Validate reports the first invalid value, naming its key.
func (c *Config) Validate() error {
	switch {
	case c.Server.Host == "":
		return errors.New("server.host: must not be empty")
	case c.Server.Port < 1 || c.Server.Port > 65535:
		return fmt.Errorf("server.port: %d out of range", c.Server.Port)
	case !strings.HasPrefix(c.Server.Path, "/"):
		return fmt.Errorf("server.path: %q must start with /", c.Server.Path)
	case c.Reconnect.InitialInterval < 0:
		return errors.New("reconnect.initial_interval: must not be negative")
	case c.Reconnect.MaxElapsed < 0:
		return errors.New("reconnect.max_elapsed: must not be negative")
	case c.Edits.MultiChar != MultiCharDrop && c.Edits.MultiChar != MultiCharDecompose:
		return fmt.Errorf("edits.multi_char: %q is not drop or decompose", c.Edits.MultiChar)
	case c.Mode == "":
		return errors.New("mode: must not be empty")
	}
	if _, ok := BuiltinThemes[c.Theme.Name]; !ok && c.Theme.Name != "" {
		return fmt.Errorf("theme.name: unknown theme %q", c.Theme.Name)
	}
	return nil
}

// ResolveTheme returns the configured theme with the peer palette applied.
func (c *Config) ResolveTheme() Theme {
	th, ok := BuiltinThemes[c.Theme.Name]
	if !ok {
		th = DefaultTheme()
	}
	if len(c.Theme.PeerColors) > 0 {
		palette := make([]tcell.Color, 0, len(c.Theme.PeerColors))
		for _, name := range c.Theme.PeerColors {
			palette = append(palette, ParseColor(name, tcell.ColorFuchsia))
		}
		th.PeerColors = palette
	}
	return th
}

// ParseKeybinding converts a textual key description like "Ctrl+S" or "F1"
// into a Keybinding. Supported forms are Ctrl+<letter> and F1..F12.
func ParseKeybinding(s string) (Keybinding, error) {
	if k, ok := functionKey(s); ok {
		return Keybinding{Key: k, text: s}, nil
	}
	parts := strings.Split(s, "+")
	if len(parts) != 2 {
		return Keybinding{}, errors.New("invalid keybinding: " + s)
	}
	if !strings.EqualFold(parts[0], "ctrl") {
		return Keybinding{}, errors.New("invalid modifier in keybinding: " + s)
	}
	r := []rune(strings.ToLower(parts[1]))
	if len(r) != 1 || r[0] < 'a' || r[0] > 'z' {
		return Keybinding{}, errors.New("invalid key in keybinding: " + s)
	}
	return Keybinding{Key: tcell.KeyRune, Rune: r[0], Mod: tcell.ModCtrl, text: s}, nil
}

func functionKey(s string) (tcell.Key, bool) {
	if len(s) < 2 || (s[0] != 'F' && s[0] != 'f') {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 || n > 12 {
		return 0, false
	}
	return tcell.KeyF1 + tcell.Key(n-1), true
}

// UnmarshalYAML parses a scalar such as "Ctrl+R".
func (k *Keybinding) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: keybinding must be a string", value.Line)
	}
	kb, err := ParseKeybinding(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*k = kb
	return nil
}

// String returns the text the binding was parsed from.
func (k Keybinding) String() string {
	return k.text
}

func mustParse(s string) Keybinding {
	kb, _ := ParseKeybinding(s)
	return kb
}

var ctrlMap = map[rune]tcell.Key{
	'a': tcell.KeyCtrlA,
	'b': tcell.KeyCtrlB,
	'c': tcell.KeyCtrlC,
	'd': tcell.KeyCtrlD,
	'e': tcell.KeyCtrlE,
	'f': tcell.KeyCtrlF,
	'g': tcell.KeyCtrlG,
	'h': tcell.KeyCtrlH,
	'i': tcell.KeyCtrlI,
	'j': tcell.KeyCtrlJ,
	'k': tcell.KeyCtrlK,
	'l': tcell.KeyCtrlL,
	'm': tcell.KeyCtrlM,
	'n': tcell.KeyCtrlN,
	'o': tcell.KeyCtrlO,
	'p': tcell.KeyCtrlP,
	'q': tcell.KeyCtrlQ,
	'r': tcell.KeyCtrlR,
	's': tcell.KeyCtrlS,
	't': tcell.KeyCtrlT,
	'u': tcell.KeyCtrlU,
	'v': tcell.KeyCtrlV,
	'w': tcell.KeyCtrlW,
	'x': tcell.KeyCtrlX,
	'y': tcell.KeyCtrlY,
	'z': tcell.KeyCtrlZ,
}

// Matches returns true if the binding matches the provided event.
func (k Keybinding) Matches(ev *tcell.EventKey) bool {
	if k.Key != tcell.KeyRune {
		return k.Key == ev.Key()
	}
	if k.Rune == ev.Rune() && k.Mod == ev.Modifiers() && ev.Key() == tcell.KeyRune {
		return true
	}
	if k.Mod == tcell.ModCtrl {
		if ctrlKey, ok := ctrlMap[k.Rune]; ok && ev.Key() == ctrlKey {
			return true
		}
	}
	return false
}
