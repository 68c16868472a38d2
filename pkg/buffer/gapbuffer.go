package buffer

import (
	"errors"
	"strings"
)

var (
	ErrOutOfRange   = errors.New("position out of range")
	ErrInvalidRange = errors.New("invalid range")
)

// GapBuffer is a rune gap buffer holding one document.
// The underlying slice stores runes with a gap between gapStart and gapEnd.
type GapBuffer struct {
	buf      []rune
	gapStart int
	gapEnd   int

	cacheString string
	cacheLines  []string
	cacheValid  bool
}

// NewGapBuffer creates an empty GapBuffer with an initial capacity.
func NewGapBuffer(cap int) *GapBuffer {
	if cap < 1 {
		cap = 128
	}
	return &GapBuffer{buf: make([]rune, cap), gapStart: 0, gapEnd: cap}
}

// NewGapBufferFromString initializes a GapBuffer with the provided text.
func NewGapBufferFromString(s string) *GapBuffer {
	g := NewGapBuffer(0)
	g.Reset(s)
	return g
}

// Reset replaces the whole content with s.
func (g *GapBuffer) Reset(s string) {
	runes := []rune(s)
	cap := len(runes) + 128
	g.buf = make([]rune, cap)
	copy(g.buf, runes)
	g.gapStart = len(runes)
	g.gapEnd = cap
	g.cacheValid = false
}

func (g *GapBuffer) ensureGap(n int) {
	gap := g.gapEnd - g.gapStart
	if gap >= n {
		return
	}
	newCap := len(g.buf)*2 + (n - gap)
	newBuf := make([]rune, newCap)
	copy(newBuf, g.buf[:g.gapStart])
	suffixLen := len(g.buf) - g.gapEnd
	copy(newBuf[newCap-suffixLen:], g.buf[g.gapEnd:])
	g.gapEnd = newCap - suffixLen
	g.buf = newBuf
}

// moveGap moves the gap so that gapStart == pos.
func (g *GapBuffer) moveGap(pos int) {
	switch {
	case pos < g.gapStart:
		d := g.gapStart - pos
		copy(g.buf[g.gapEnd-d:g.gapEnd], g.buf[pos:g.gapStart])
		g.gapStart -= d
		g.gapEnd -= d
	case pos > g.gapStart:
		d := pos - g.gapStart
		copy(g.buf[g.gapStart:g.gapStart+d], g.buf[g.gapEnd:g.gapEnd+d])
		g.gapStart += d
		g.gapEnd += d
	}
}

// Insert inserts runes at position pos (0..Len()).
func (g *GapBuffer) Insert(pos int, s []rune) error {
	if pos < 0 || pos > g.Len() {
		return ErrOutOfRange
	}
	g.moveGap(pos)
	g.ensureGap(len(s))
	copy(g.buf[g.gapStart:], s)
	g.gapStart += len(s)
	g.cacheValid = false
	return nil
}

// Delete removes runes in [start,end).
func (g *GapBuffer) Delete(start, end int) error {
	if start < 0 || end < start || end > g.Len() {
		return ErrInvalidRange
	}
	g.moveGap(start)
	g.gapEnd += end - start
	g.cacheValid = false
	return nil
}

// Slice returns a copy of the runes in [start,end). Bounds are clamped.
func (g *GapBuffer) Slice(start, end int) []rune {
	if start < 0 {
		start = 0
	}
	if end > g.Len() {
		end = g.Len()
	}
	if start >= end {
		return []rune{}
	}
	out := make([]rune, 0, end-start)
	if start < g.gapStart {
		out = append(out, g.buf[start:min(end, g.gapStart)]...)
	}
	if end > g.gapStart {
		gap := g.gapEnd - g.gapStart
		out = append(out, g.buf[max(start, g.gapStart)+gap:end+gap]...)
	}
	return out
}

// Len returns the logical length (excluding gap).
func (g *GapBuffer) Len() int {
	return len(g.buf) - (g.gapEnd - g.gapStart)
}

// RuneAt returns the rune at index i. If i is out of bounds, it returns 0.
func (g *GapBuffer) RuneAt(i int) rune {
	if i < 0 || i >= g.Len() {
		return 0
	}
	return g.runeAt(i)
}

func (g *GapBuffer) runeAt(i int) rune {
	if i < g.gapStart {
		return g.buf[i]
	}
	return g.buf[g.gapEnd+(i-g.gapStart)]
}

// LineAt returns the rune start and end indices for the given 0-based row.
// Rows past the end resolve to the last row. The end index is one past the
// last rune of the row and includes the terminating '\n' when present.
func (g *GapBuffer) LineAt(idx int) (start, end int) {
	if idx < 0 {
		idx = 0
	}
	n := g.Len()
	row := 0
	for i := 0; i < n; i++ {
		if g.runeAt(i) != '\n' {
			continue
		}
		if row == idx {
			return start, i + 1
		}
		row++
		start = i + 1
	}
	return start, n
}

// LineCount returns the number of rows. An empty buffer has one row and a
// trailing newline opens a new, empty row.
func (g *GapBuffer) LineCount() int {
	rows := 1
	for i := 0; i < g.Len(); i++ {
		if g.runeAt(i) == '\n' {
			rows++
		}
	}
	return rows
}

// PositionToIndex converts a display position to a linear rune index against
// the current content. Rows are clamped to the document and columns to the
// row length, so the result always lies in [0, Len()].
func (g *GapBuffer) PositionToIndex(p Position) int {
	if p.Row < 0 {
		return 0
	}
	n := g.Len()
	row, lineStart := 0, 0
	for i := 0; i < n && row < p.Row; i++ {
		if g.runeAt(i) == '\n' {
			row++
			lineStart = i + 1
		}
	}
	if row < p.Row {
		return n
	}
	col := 0
	for i := lineStart; i < n && col < p.Column && g.runeAt(i) != '\n'; i++ {
		col++
	}
	return lineStart + col
}

// IndexToPosition converts a linear rune index to a display position against
// the current content. Indices outside [0, Len()] are clamped.
func (g *GapBuffer) IndexToPosition(i int) Position {
	if i < 0 {
		i = 0
	}
	if n := g.Len(); i > n {
		i = n
	}
	var p Position
	for j := 0; j < i; j++ {
		if g.runeAt(j) == '\n' {
			p.Row++
			p.Column = 0
			continue
		}
		p.Column++
	}
	return p
}

// String returns the buffer as a string.
func (g *GapBuffer) String() string {
	if g.cacheValid {
		return g.cacheString
	}
	g.cacheString = string(g.buf[:g.gapStart]) + string(g.buf[g.gapEnd:])
	g.cacheLines = strings.Split(g.cacheString, "\n")
	g.cacheValid = true
	return g.cacheString
}

// Lines returns the buffer split into rows. The result is cached until the
// buffer is modified.
func (g *GapBuffer) Lines() []string {
	if !g.cacheValid {
		_ = g.String()
	}
	return g.cacheLines
}
