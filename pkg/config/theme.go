package config

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Theme represents configurable colors for the editing surface.
type Theme struct {
	UIBackground tcell.Color
	UIForeground tcell.Color

	// Status bar and mini-buffer
	StatusBackground  tcell.Color
	StatusForeground  tcell.Color
	MiniBackground    tcell.Color
	MiniForeground    tcell.Color
	WarningForeground tcell.Color

	// Local cursor
	CursorText       tcell.Color
	CursorEditableBG tcell.Color
	CursorReadOnlyBG tcell.Color

	TextDefault tcell.Color

	// PeerColors is the palette for other participants' cursors, assigned
	// in the order peers are first seen.
	PeerColors []tcell.Color
}

// PeerColor picks the palette entry for the n-th known peer.
func (t Theme) PeerColor(n int) tcell.Color {
	if len(t.PeerColors) == 0 {
		return tcell.ColorFuchsia
	}
	if n < 0 {
		n = -n
	}
	return t.PeerColors[n%len(t.PeerColors)]
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		UIBackground: tcell.ColorBlack,
		UIForeground: tcell.ColorWhite,

		StatusBackground:  tcell.ColorWhite,
		StatusForeground:  tcell.ColorBlack,
		MiniBackground:    tcell.ColorWhite,
		MiniForeground:    tcell.ColorBlack,
		WarningForeground: tcell.ColorRed,

		CursorText:       tcell.ColorBlack,
		CursorEditableBG: tcell.ColorBlue,
		CursorReadOnlyBG: tcell.ColorGray,

		TextDefault: tcell.ColorWhite,

		PeerColors: []tcell.Color{tcell.ColorRed, tcell.ColorGreen, tcell.ColorYellow, tcell.ColorPurple, tcell.ColorTeal},
	}
}

// TerminalTheme follows the terminal's own palette.
func TerminalTheme() Theme {
	return Theme{
		UIBackground: tcell.ColorDefault,
		UIForeground: tcell.ColorDefault,

		StatusBackground:  tcell.ColorGray,
		StatusForeground:  tcell.ColorDefault,
		MiniBackground:    tcell.ColorGray,
		MiniForeground:    tcell.ColorDefault,
		WarningForeground: tcell.ColorRed,

		CursorText:       tcell.ColorDefault,
		CursorEditableBG: tcell.ColorBlue,
		CursorReadOnlyBG: tcell.ColorGray,

		TextDefault: tcell.ColorDefault,

		PeerColors: []tcell.Color{tcell.ColorRed, tcell.ColorGreen, tcell.ColorYellow, tcell.ColorAqua, tcell.ColorFuchsia},
	}
}

// BuiltinThemes exposes the presets by name.
var BuiltinThemes = map[string]Theme{
	"default":  DefaultTheme(),
	"terminal": TerminalTheme(),
	"dark": {
		UIBackground: tcell.ColorBlack,
		UIForeground: tcell.ColorWhite,

		StatusBackground:  tcell.ColorGray,
		StatusForeground:  tcell.ColorWhite,
		MiniBackground:    tcell.ColorGray,
		MiniForeground:    tcell.ColorWhite,
		WarningForeground: tcell.ColorOrangeRed,

		CursorText:       tcell.ColorBlack,
		CursorEditableBG: tcell.ColorLightBlue,
		CursorReadOnlyBG: tcell.ColorDarkGray,

		TextDefault: tcell.ColorWhite,

		PeerColors: []tcell.Color{tcell.ColorLightCoral, tcell.ColorLightGreen, tcell.ColorLightYellow, tcell.ColorPlum, tcell.ColorLightCyan},
	},
}

// ParseColor returns a tcell.Color from a name or hex like "#aabbcc".
// If parsing fails, it returns the provided fallback.
func ParseColor(s string, fallback tcell.Color) tcell.Color {
	if s == "" {
		return fallback
	}
	// tcell.GetColor supports W3C names or #RRGGBB (case-insensitive)
	c := tcell.GetColor(strings.ToLower(s))
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
