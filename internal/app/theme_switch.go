package app

import (
	"sort"

	"example.com/syncedit/pkg/config"
)

// UseTheme sets the active theme and remembers its name for cycling.
func (r *Runner) UseTheme(name string, th config.Theme) {
	r.themeName = name
	r.Theme = th
	r.requestDraw()
}

func themeNames() []string {
	names := make([]string, 0, len(config.BuiltinThemes))
	for name := range config.BuiltinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// nextTheme cycles through the built-in themes. The peer palette in use is
// carried over so markers keep their colors.
func (r *Runner) nextTheme() {
	names := themeNames()
	if len(names) == 0 {
		return
	}
	next := 0
	for i, name := range names {
		if name == r.themeName {
			next = (i + 1) % len(names)
			break
		}
	}
	palette := r.Theme.PeerColors
	th := config.BuiltinThemes[names[next]]
	if len(palette) > 0 {
		th.PeerColors = palette
	}
	r.UseTheme(names[next], th)
	r.setMiniBuffer([]string{"theme: " + names[next]})
	r.Logger.Event("action", map[string]any{"name": "theme", "theme": names[next]})
}
