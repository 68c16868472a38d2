package app

import (
	"fmt"
	"strings"

	"example.com/syncedit/internal/collab"
	"example.com/syncedit/pkg/buffer"
)

// outputLines caps how much of an Output message stays in the mini-buffer.
const outputLines = 6

var (
	_ collab.Surface = (*Runner)(nil)
	_ collab.Console = (*Runner)(nil)
)

func (r *Runner) PositionToIndex(p buffer.Position) int { return r.Buf.PositionToIndex(p) }

func (r *Runner) IndexToPosition(i int) buffer.Position { return r.Buf.IndexToPosition(i) }

func (r *Runner) Len() int { return r.Buf.Len() }

// ObserveEdits registers fn for every change to the buffer.
func (r *Runner) ObserveEdits(fn func(collab.EditEvent)) {
	r.editObservers = append(r.editObservers, fn)
}

// ObserveCursor registers fn for every change of the cursor position.
func (r *Runner) ObserveCursor(fn func(buffer.Position)) {
	r.cursorObservers = append(r.cursorObservers, fn)
}

func (r *Runner) emit(ev collab.EditEvent) {
	r.requestDraw()
	for _, fn := range r.editObservers {
		fn(ev)
	}
}

func (r *Runner) notifyCursor() {
	p := r.Buf.IndexToPosition(r.Cursor)
	if p == r.lastCursor {
		return
	}
	r.lastCursor = p
	r.requestDraw()
	for _, fn := range r.cursorObservers {
		fn(p)
	}
}

// ApplyCharacterEdit replaces rg with text on behalf of the peer. The local
// cursor keeps its place relative to the surrounding text.
func (r *Runner) ApplyCharacterEdit(rg collab.Range, text string) error {
	if rg.End.Less(rg.Start) {
		return fmt.Errorf("apply edit: range %v..%v is reversed", rg.Start, rg.End)
	}
	start, end := r.Buf.PositionToIndex(rg.Start), r.Buf.PositionToIndex(rg.End)
	if end > start {
		removed := string(r.Buf.Slice(start, end))
		if err := r.Buf.Delete(start, end); err != nil {
			return err
		}
		switch {
		case r.Cursor >= end:
			r.Cursor -= end - start
		case r.Cursor > start:
			r.Cursor = start
		}
		r.emit(collab.EditEvent{Action: collab.ActionRemove, Start: rg.Start, End: rg.End, Lines: splitLines(removed), Origin: collab.OriginRemote})
	}
	if text != "" {
		runes := []rune(text)
		if err := r.Buf.Insert(start, runes); err != nil {
			return err
		}
		if r.Cursor >= start {
			r.Cursor += len(runes)
		}
		at := r.Buf.IndexToPosition(start)
		r.emit(collab.EditEvent{Action: collab.ActionInsert, Start: at, End: r.Buf.IndexToPosition(start + len(runes)), Lines: splitLines(text), Origin: collab.OriginRemote})
	}
	r.notifyCursor()
	return nil
}

// ReplaceAll swaps the document. The removal of the old text is reported as
// a local change even when the document was empty; the new text is reported
// as remote.
func (r *Runner) ReplaceAll(text string) {
	old := r.Buf.String()
	oldEnd := r.Buf.IndexToPosition(r.Buf.Len())
	r.Buf.Reset("")
	r.emit(collab.EditEvent{Action: collab.ActionRemove, End: oldEnd, Lines: splitLines(old), Origin: collab.OriginLocal})
	r.Buf.Reset(text)
	r.Cursor = min(r.Cursor, r.Buf.Len())
	r.emit(collab.EditEvent{Action: collab.ActionInsert, End: r.Buf.IndexToPosition(r.Buf.Len()), Lines: splitLines(text), Origin: collab.OriginRemote})
	r.notifyCursor()
	r.Logger.Event("document.replaced", map[string]any{"runes": r.Buf.Len()})
}

// SetReadOnly toggles editing keys.
func (r *Runner) SetReadOnly(readOnly bool) {
	r.ReadOnly = readOnly
	r.requestDraw()
}

// ShowOutput puts the tail of text in the mini-buffer.
func (r *Runner) ShowOutput(text string) {
	lines := splitLines(strings.TrimRight(text, "\n"))
	if len(lines) > outputLines {
		lines = lines[len(lines)-outputLines:]
	}
	r.setMiniBuffer(lines)
	r.requestDraw()
}

// ShowWarning puts a single highlighted line in the mini-buffer.
func (r *Runner) ShowWarning(text string) {
	r.MiniBuf = []string{text}
	r.miniWarn = true
	r.requestDraw()
}

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}
