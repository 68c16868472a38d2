package app

import (
	"example.com/syncedit/internal/collab"
)

// insertText inserts text at the cursor as one local edit and moves the
// cursor past it.
func (r *Runner) insertText(text string) {
	if text == "" || r.ReadOnly {
		return
	}
	runes := []rune(text)
	at := r.Cursor
	start := r.Buf.IndexToPosition(at)
	if err := r.Buf.Insert(at, runes); err != nil {
		return
	}
	r.Cursor = at + len(runes)
	r.emit(collab.EditEvent{Action: collab.ActionInsert, Start: start, End: r.Buf.IndexToPosition(r.Cursor), Lines: splitLines(text), Origin: collab.OriginLocal})
	r.notifyCursor()
}

// deleteRange deletes [start,end) as one local edit and updates the cursor.
func (r *Runner) deleteRange(start, end int) error {
	if r.ReadOnly {
		return nil
	}
	if start < 0 {
		start = 0
	}
	if end > r.Buf.Len() {
		end = r.Buf.Len()
	}
	if start >= end {
		return nil
	}
	from, to := r.Buf.IndexToPosition(start), r.Buf.IndexToPosition(end)
	removed := string(r.Buf.Slice(start, end))
	if err := r.Buf.Delete(start, end); err != nil {
		return err
	}
	// adjust cursor
	if r.Cursor > end {
		r.Cursor -= (end - start)
	} else if r.Cursor > start {
		r.Cursor = start
	}
	r.emit(collab.EditEvent{Action: collab.ActionRemove, Start: from, End: to, Lines: splitLines(removed), Origin: collab.OriginLocal})
	r.notifyCursor()
	return nil
}

// moveCursor sets the cursor to i, clamped to the document.
func (r *Runner) moveCursor(i int) {
	r.Cursor = collab.NewMapper(r).Clamp(i)
	r.requestDraw()
	r.notifyCursor()
}

// moveCursorVertical moves the cursor up or down by delta lines, preserving the column when possible.
func (r *Runner) moveCursorVertical(delta int) {
	p := r.Buf.IndexToPosition(r.Cursor)
	row := max(p.Row+delta, 0)
	if row >= r.Buf.LineCount() {
		row = r.Buf.LineCount() - 1
	}
	p.Row = row
	r.moveCursor(r.Buf.PositionToIndex(p))
}

// currentLineBounds returns the rune start and end indices for the current
// cursor's line, excluding the trailing newline.
func (r *Runner) currentLineBounds() (start, end int) {
	row := r.Buf.IndexToPosition(r.Cursor).Row
	start, end = r.Buf.LineAt(row)
	if end > start && r.Buf.RuneAt(end-1) == '\n' {
		end--
	}
	return start, end
}

// killLine cuts from the cursor to the end of the line, or joins the next
// line when the cursor already sits at the end.
func (r *Runner) killLine() {
	_, end := r.currentLineBounds()
	if r.Cursor == end {
		end = r.Cursor + 1
	}
	_ = r.deleteRange(r.Cursor, end)
}

// ensureCursorVisible scrolls so the cursor row lies inside the text area.
func (r *Runner) ensureCursorVisible() {
	if r.Screen == nil {
		return
	}
	rows := r.textRows()
	if rows <= 0 {
		return
	}
	row := r.Buf.IndexToPosition(r.Cursor).Row
	if row < r.TopLine {
		r.TopLine = row
	}
	if row >= r.TopLine+rows {
		r.TopLine = row - rows + 1
	}
}

// textRows is the number of screen rows available for document text.
func (r *Runner) textRows() int {
	if r.Screen == nil {
		return 0
	}
	_, h := r.Screen.Size()
	return max(h-1-len(r.MiniBuf), 0)
}
