package buffer

import "testing"

func TestGapBuffer_InsertDelete(t *testing.T) {
	g := NewGapBufferFromString("Hello World")
	if g.String() != "Hello World" {
		t.Fatalf("expected initial content 'Hello World', got %q", g.String())
	}
	if err := g.Insert(5, []rune{','}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if g.String() != "Hello, World" {
		t.Fatalf("expected 'Hello, World', got %q", g.String())
	}
	if err := g.Delete(5, 6); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if g.String() != "Hello World" {
		t.Fatalf("expected 'Hello World' after delete, got %q", g.String())
	}
}

func TestGapBuffer_InsertOutOfRange(t *testing.T) {
	g := NewGapBufferFromString("ab")
	if err := g.Insert(3, []rune{'x'}); err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if err := g.Delete(1, 3); err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestGapBuffer_GrowAndMoveGap(t *testing.T) {
	g := NewGapBuffer(1)
	for i, r := range "abcdefghij" {
		if err := g.Insert(i, []rune{r}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	// bounce the gap around
	_ = g.Insert(0, []rune("<"))
	_ = g.Insert(g.Len(), []rune(">"))
	_ = g.Insert(6, []rune("|"))
	if got := g.String(); got != "<abcde|fghij>" {
		t.Fatalf("unexpected content %q", got)
	}
	if got := string(g.Slice(4, 9)); got != "de|fg" {
		t.Fatalf("slice across gap: got %q", got)
	}
}

func TestGapBuffer_LineAt(t *testing.T) {
	g := NewGapBufferFromString("one\ntwo\nthree")
	start, end := g.LineAt(1)
	if line := string(g.Slice(start, end)); line != "two\n" {
		t.Fatalf("expected line 'two\\n', got %q", line)
	}
	start, end = g.LineAt(9)
	if line := string(g.Slice(start, end)); line != "three" {
		t.Fatalf("expected last line for out-of-range row, got %q", line)
	}
}

func TestGapBuffer_LineCount(t *testing.T) {
	cases := map[string]int{"": 1, "a": 1, "a\n": 2, "a\nb\nc": 3}
	for text, want := range cases {
		if got := NewGapBufferFromString(text).LineCount(); got != want {
			t.Fatalf("LineCount(%q) = %d, want %d", text, got, want)
		}
	}
}

func TestGapBuffer_PositionIndexRoundTrip(t *testing.T) {
	for _, text := range []string{"", "ab", "ab\ncd", "\n\n", "héllo\nwörld\n", "x\n\ny"} {
		g := NewGapBufferFromString(text)
		for i := 0; i <= g.Len(); i++ {
			p := g.IndexToPosition(i)
			if got := g.PositionToIndex(p); got != i {
				t.Fatalf("%q: PositionToIndex(IndexToPosition(%d)=%v) = %d", text, i, p, got)
			}
		}
		lines := g.Lines()
		for row, line := range lines {
			for col := 0; col <= len([]rune(line)); col++ {
				p := Position{Row: row, Column: col}
				if got := g.IndexToPosition(g.PositionToIndex(p)); got != p {
					t.Fatalf("%q: round trip of %v gave %v", text, p, got)
				}
			}
		}
	}
}

func TestGapBuffer_PositionClamping(t *testing.T) {
	g := NewGapBufferFromString("ab\ncd")
	if got := g.PositionToIndex(Position{Row: 0, Column: 10}); got != 2 {
		t.Fatalf("column past row end should clamp to 2, got %d", got)
	}
	if got := g.PositionToIndex(Position{Row: 7, Column: 0}); got != g.Len() {
		t.Fatalf("row past end should clamp to Len, got %d", got)
	}
	if got := g.IndexToPosition(99); got != (Position{Row: 1, Column: 2}) {
		t.Fatalf("index past end should clamp to end position, got %v", got)
	}
	if got := g.IndexToPosition(-3); got != (Position{}) {
		t.Fatalf("negative index should clamp to origin, got %v", got)
	}
}

func TestPosition_Less(t *testing.T) {
	a, b, c := Position{Row: 0, Column: 5}, Position{Row: 1, Column: 0}, Position{Row: 1, Column: 2}
	if !a.Less(b) || !b.Less(c) || !a.Less(c) {
		t.Fatalf("expected %v < %v < %v", a, b, c)
	}
	if c.Less(b) || b.Less(b) {
		t.Fatalf("Less must be a strict order")
	}
}

func TestGapBuffer_Reset(t *testing.T) {
	g := NewGapBufferFromString("old text")
	g.Reset("new\ntext")
	if g.String() != "new\ntext" || g.Len() != 8 {
		t.Fatalf("unexpected reset content %q (len %d)", g.String(), g.Len())
	}
	if len(g.Lines()) != 2 {
		t.Fatalf("expected 2 lines after reset, got %d", len(g.Lines()))
	}
}
