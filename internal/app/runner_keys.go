package app

import (
	"example.com/syncedit/pkg/config"
	"github.com/gdamore/tcell/v2"
)

// handleKeyEvent processes a key event. It returns true if the event signals
// the runner should quit.
func (r *Runner) handleKeyEvent(ev *tcell.EventKey) bool {
	if r.pasting {
		r.collectPaste(ev)
		return false
	}
	switch {
	case r.matchCommand(ev, "quit"):
		return true
	case r.matchCommand(ev, "help"):
		r.ShowHelp = true
		r.Logger.Event("action", map[string]any{"name": "help.show"})
		r.requestDraw()
		return false
	case r.matchCommand(ev, "compile"):
		r.runCommand("compile")
		return false
	case r.matchCommand(ev, "commit"):
		r.runCommand("commit")
		return false
	case r.matchCommand(ev, "mode"):
		r.cycleMode()
		return false
	case r.matchCommand(ev, "theme"):
		r.nextTheme()
		return false
	}

	switch ev.Key() {
	case tcell.KeyEsc:
		r.clearMiniBuffer()
		r.requestDraw()
	case tcell.KeyLeft, tcell.KeyCtrlB:
		r.moveCursor(r.Cursor - 1)
	case tcell.KeyRight, tcell.KeyCtrlF:
		r.moveCursor(r.Cursor + 1)
	case tcell.KeyUp, tcell.KeyCtrlP:
		r.moveCursorVertical(-1)
	case tcell.KeyDown, tcell.KeyCtrlN:
		r.moveCursorVertical(1)
	case tcell.KeyHome, tcell.KeyCtrlA:
		start, _ := r.currentLineBounds()
		r.moveCursor(start)
	case tcell.KeyEnd, tcell.KeyCtrlE:
		_, end := r.currentLineBounds()
		r.moveCursor(end)
	case tcell.KeyPgUp:
		r.moveCursorVertical(-max(r.textRows(), 1))
	case tcell.KeyPgDn:
		r.moveCursorVertical(max(r.textRows(), 1))
	case tcell.KeyEnter:
		r.insertText("\n")
	case tcell.KeyTab:
		r.insertText("\t")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r.Cursor > 0 {
			_ = r.deleteRange(r.Cursor-1, r.Cursor)
		}
	case tcell.KeyDelete:
		_ = r.deleteRange(r.Cursor, r.Cursor+1)
	case tcell.KeyCtrlK:
		r.killLine()
	case tcell.KeyRune:
		if ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt) == 0 {
			r.insertText(string(ev.Rune()))
		}
	}
	return false
}

// handlePaste brackets a terminal paste so it reaches the buffer as a single
// edit.
func (r *Runner) handlePaste(ev *tcell.EventPaste) {
	if ev.Start() {
		r.pasting = true
		r.pasted = r.pasted[:0]
		return
	}
	r.pasting = false
	text := string(r.pasted)
	r.pasted = r.pasted[:0]
	r.insertText(text)
	r.Logger.Event("action", map[string]any{"name": "paste", "runes": len([]rune(text))})
}

func (r *Runner) collectPaste(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		r.pasted = append(r.pasted, ev.Rune())
	case tcell.KeyEnter:
		r.pasted = append(r.pasted, '\n')
	case tcell.KeyTab:
		r.pasted = append(r.pasted, '\t')
	}
}

func (r *Runner) runCommand(name string) {
	if r.Session == nil {
		r.ShowWarning(name + ": no session")
		return
	}
	var err error
	if name == "compile" {
		err = r.Session.Compile()
	} else {
		err = r.Session.Commit()
	}
	r.Logger.Event("action", map[string]any{"name": name})
	if err != nil {
		r.ShowWarning(name + ": " + err.Error())
		return
	}
	r.setMiniBuffer([]string{name + " requested"})
	r.requestDraw()
}

func (r *Runner) cycleMode() {
	if r.Session == nil || r.Modes == nil {
		return
	}
	next := r.Modes.Next(r.Session.Mode())
	if err := r.Session.SetMode(next.ID); err != nil {
		r.ShowWarning("mode: " + err.Error())
		return
	}
	r.Logger.Event("action", map[string]any{"name": "mode", "mode": next.ID})
	r.setMiniBuffer([]string{"mode: " + next.Name})
	r.requestDraw()
}

func (r *Runner) matchCommand(ev *tcell.EventKey, name string) bool {
	if r.Keymap == nil {
		r.Keymap = config.DefaultKeymap()
	}
	kb, ok := r.Keymap[name]
	if !ok {
		return false
	}
	return kb.Matches(ev)
}
