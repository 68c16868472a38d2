package app

import (
	"fmt"
	"sort"

	"example.com/syncedit/internal/collab"
	"example.com/syncedit/pkg/buffer"
	"example.com/syncedit/pkg/config"
	"github.com/gdamore/tcell/v2"
)

// renderState captures a snapshot of editor state for drawing.
type renderState struct {
	lines    []string
	cursor   buffer.Position
	topLine  int
	miniBuf  []string
	miniWarn bool
	status   string
	readOnly bool
	markers  []collab.Marker
	showHelp bool
	help     []string
}

// renderSnapshot captures the current runner state into a renderState.
func (r *Runner) renderSnapshot() renderState {
	r.ensureCursorVisible()
	st := renderState{
		lines:    r.Buf.Lines(),
		cursor:   r.Buf.IndexToPosition(r.Cursor),
		topLine:  r.TopLine,
		miniBuf:  append([]string(nil), r.MiniBuf...),
		miniWarn: r.miniWarn,
		status:   r.statusLine(),
		readOnly: r.ReadOnly,
		showHelp: r.ShowHelp,
	}
	if r.Peers != nil {
		st.markers = r.Peers.Visible(r.TopLine, r.TopLine+r.textRows()-1)
	}
	if st.showHelp {
		st.help = helpLines(r.Keymap)
	}
	return st
}

// draw renders the current state synchronously.
func (r *Runner) draw() {
	r.needsDraw = false
	if r.Screen == nil {
		return
	}
	st := r.renderSnapshot()
	if st.showHelp {
		drawHelp(r.Screen, st.help, r.Theme)
		return
	}
	drawFile(r.Screen, st, r.Theme)
}

func (r *Runner) statusLine() string {
	mode := "-"
	state := collab.StateDisconnected.String()
	if r.Session != nil {
		mode = r.Session.Mode()
		if r.Modes != nil {
			if m, ok := r.Modes.Lookup(mode); ok {
				mode = m.Name
			}
		}
		state = r.Session.State().String()
	}
	status := fmt.Sprintf(" %s | %s", mode, state)
	if r.ReadOnly {
		status += " [read-only]"
	}
	if r.Peers != nil && r.Peers.Len() > 0 {
		status += fmt.Sprintf(" | %d peer(s)", r.Peers.Len())
	}
	if kb, ok := r.Keymap["help"]; ok {
		status += " | " + kb.String() + " help"
	}
	return status
}

func helpLines(keymap map[string]config.Keybinding) []string {
	lines := []string{"Help:"}
	names := make([]string, 0, len(keymap))
	for name := range keymap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("- %s: %s", keymap[name].String(), name))
	}
	return append(lines,
		"- Arrow keys or Ctrl+B/F/P/N: Move cursor",
		"- Home/End or Ctrl+A/E: Line start/end",
		"- Ctrl+K: Cut to end of line",
		"- Esc: Clear messages",
		"- Any key: close this help",
	)
}

func drawHelp(s tcell.Screen, lines []string, theme config.Theme) {
	width, height := s.Size()
	s.Clear()
	style := tcell.StyleDefault.Foreground(theme.UIForeground).Background(theme.UIBackground)
	y := (height - len(lines)) / 2
	for i, line := range lines {
		x := max((width-len(line))/2, 0)
		for j, r := range []rune(line) {
			s.SetContent(x+j, y+i, r, nil, style)
		}
	}
	s.Show()
}

func drawFile(s tcell.Screen, st renderState, theme config.Theme) {
	width, height := s.Size()
	s.Clear()
	mbHeight := len(st.miniBuf)
	maxLines := max(height-1-mbHeight, 0)

	textStyle := tcell.StyleDefault.Foreground(theme.TextDefault).Background(theme.UIBackground)
	cursorBG := theme.CursorEditableBG
	if st.readOnly {
		cursorBG = theme.CursorReadOnlyBG
	}
	cursorStyle := tcell.StyleDefault.Foreground(theme.CursorText).Background(cursorBG)

	for i := 0; i < maxLines && st.topLine+i < len(st.lines); i++ {
		runes := []rune(st.lines[st.topLine+i])
		for j := 0; j < width && j < len(runes); j++ {
			ch := runes[j]
			if ch == '\t' {
				ch = ' '
			}
			s.SetContent(j, i, ch, nil, textStyle)
		}
	}

	// peers first, so the local cursor wins a shared cell
	for _, m := range st.markers {
		y := m.Position.Row - st.topLine
		if y < 0 || y >= maxLines || m.Position.Column >= width {
			continue
		}
		x := m.Position.Column
		ch, _, _, _ := s.GetContent(x, y)
		s.SetContent(x, y, ch, nil, tcell.StyleDefault.Foreground(theme.CursorText).Background(theme.PeerColor(m.Slot)))
	}

	if y := st.cursor.Row - st.topLine; y >= 0 && y < maxLines && st.cursor.Column < width {
		ch, _, _, _ := s.GetContent(st.cursor.Column, y)
		s.SetContent(st.cursor.Column, y, ch, nil, cursorStyle)
	}

	status := []rune(st.status)
	statusStyle := tcell.StyleDefault.Foreground(theme.StatusForeground).Background(theme.StatusBackground)
	for x := 0; x < width; x++ {
		ch := ' '
		if x < len(status) {
			ch = status[x]
		}
		s.SetContent(x, height-1, ch, nil, statusStyle)
	}

	miniStyle := tcell.StyleDefault.Foreground(theme.MiniForeground).Background(theme.MiniBackground)
	if st.miniWarn {
		miniStyle = miniStyle.Foreground(theme.WarningForeground)
	}
	for i, line := range st.miniBuf {
		y := height - 1 - mbHeight + i
		runes := []rune(line)
		for x := 0; x < width; x++ {
			ch := ' '
			if x < len(runes) {
				ch = runes[x]
			}
			s.SetContent(x, y, ch, nil, miniStyle)
		}
	}
	s.Show()
}
