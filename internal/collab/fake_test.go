package collab

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"example.com/syncedit/pkg/buffer"
	"example.com/syncedit/pkg/transport"
)

// fakeSurface is a gap buffer that reports changes the way an editor widget
// does: after the fact, with lines split on '\n'.
type fakeSurface struct {
	buf      *buffer.GapBuffer
	readOnly bool
	edits    []func(EditEvent)
	cursors  []func(buffer.Position)
	seen     []EditEvent
}

func newFakeSurface(text string) *fakeSurface {
	return &fakeSurface{buf: buffer.NewGapBufferFromString(text)}
}

func (f *fakeSurface) PositionToIndex(p buffer.Position) int { return f.buf.PositionToIndex(p) }
func (f *fakeSurface) IndexToPosition(i int) buffer.Position { return f.buf.IndexToPosition(i) }
func (f *fakeSurface) Len() int                              { return f.buf.Len() }
func (f *fakeSurface) SetReadOnly(ro bool)                   { f.readOnly = ro }
func (f *fakeSurface) ObserveEdits(fn func(EditEvent))       { f.edits = append(f.edits, fn) }
func (f *fakeSurface) ObserveCursor(fn func(buffer.Position)) {
	f.cursors = append(f.cursors, fn)
}

func (f *fakeSurface) emit(ev EditEvent) {
	f.seen = append(f.seen, ev)
	for _, fn := range f.edits {
		fn(ev)
	}
}

func (f *fakeSurface) ApplyCharacterEdit(r Range, text string) error {
	start, end := f.buf.PositionToIndex(r.Start), f.buf.PositionToIndex(r.End)
	if end > start {
		removed := string(f.buf.Slice(start, end))
		if err := f.buf.Delete(start, end); err != nil {
			return err
		}
		f.emit(EditEvent{Action: ActionRemove, Start: r.Start, End: r.End, Lines: strings.Split(removed, "\n"), Origin: OriginRemote})
	}
	if text != "" {
		if err := f.buf.Insert(start, []rune(text)); err != nil {
			return err
		}
		f.emit(EditEvent{Action: ActionInsert, Start: r.Start, End: f.buf.IndexToPosition(start + len([]rune(text))), Lines: strings.Split(text, "\n"), Origin: OriginRemote})
	}
	return nil
}

func (f *fakeSurface) ReplaceAll(text string) {
	old := f.buf.String()
	end := f.buf.IndexToPosition(f.buf.Len())
	f.buf.Reset("")
	f.emit(EditEvent{Action: ActionRemove, End: end, Lines: strings.Split(old, "\n"), Origin: OriginLocal})
	f.buf.Reset(text)
	f.emit(EditEvent{Action: ActionInsert, End: f.buf.IndexToPosition(f.buf.Len()), Lines: strings.Split(text, "\n"), Origin: OriginRemote})
}

// typeText inserts text at i as one local edit.
func (f *fakeSurface) typeText(i int, text string) {
	start := f.buf.IndexToPosition(i)
	_ = f.buf.Insert(i, []rune(text))
	end := f.buf.IndexToPosition(i + len([]rune(text)))
	f.emit(EditEvent{Action: ActionInsert, Start: start, End: end, Lines: strings.Split(text, "\n"), Origin: OriginLocal})
}

// erase removes [i, j) as one local edit.
func (f *fakeSurface) erase(i, j int) {
	start, end := f.buf.IndexToPosition(i), f.buf.IndexToPosition(j)
	removed := string(f.buf.Slice(i, j))
	_ = f.buf.Delete(i, j)
	f.emit(EditEvent{Action: ActionRemove, Start: start, End: end, Lines: strings.Split(removed, "\n"), Origin: OriginLocal})
}

func (f *fakeSurface) moveCursor(p buffer.Position) {
	for _, fn := range f.cursors {
		fn(p)
	}
}

type fakeConsole struct {
	output   []string
	warnings []string
}

func (c *fakeConsole) ShowOutput(text string)  { c.output = append(c.output, text) }
func (c *fakeConsole) ShowWarning(text string) { c.warnings = append(c.warnings, text) }

// fakeConn is the client end of an in-memory connection. The test plays the
// peer through toClient and fromClient.
type fakeConn struct {
	toClient   chan []byte
	fromClient chan []byte
	closed     chan struct{}
	once       sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{toClient: make(chan []byte, 16), fromClient: make(chan []byte, 64), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data, ok := <-c.toClient:
		if !ok {
			return nil, io.EOF
		}
		return data, nil
	case <-c.closed:
		return nil, errors.New("use of closed connection")
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	select {
	case c.fromClient <- data:
		return nil
	case <-c.closed:
		return errors.New("use of closed connection")
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// newStalledConn returns a conn whose peer never reads, so writes block
// until Close.
func newStalledConn() *fakeConn {
	c := newFakeConn()
	c.fromClient = make(chan []byte)
	return c
}

// dialSequence hands out conns in order and fails once they run out.
func dialSequence(conns ...*fakeConn) transport.DialFunc {
	var mu sync.Mutex
	return func(ctx context.Context) (transport.Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(conns) == 0 {
			return nil, errors.New("connection refused")
		}
		c := conns[0]
		conns = conns[1:]
		return c, nil
	}
}

// pump handles the next inbound event, failing the test on timeout.
func pump(t *testing.T, s *Session) {
	t.Helper()
	select {
	case ev := <-s.Inbound():
		s.Handle(ev)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a session event")
	}
}

// sent returns the next frame the client wrote.
func sent(t *testing.T, c *fakeConn) string {
	t.Helper()
	select {
	case data := <-c.fromClient:
		return string(data)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for an outbound frame")
	}
	return ""
}

// noneSent fails if the client wrote anything within a short window.
func noneSent(t *testing.T, c *fakeConn) {
	t.Helper()
	select {
	case data := <-c.fromClient:
		t.Fatalf("unexpected outbound frame %s", data)
	case <-time.After(30 * time.Millisecond):
	}
}
