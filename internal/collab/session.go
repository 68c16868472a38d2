package collab

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"example.com/syncedit/pkg/buffer"
	"example.com/syncedit/pkg/logs"
	"example.com/syncedit/pkg/transport"
	"example.com/syncedit/pkg/wire"
)

// ErrDisconnected is returned by Send while no connection is up.
var ErrDisconnected = errors.New("not connected")

// ErrQueueFull is the reason logged when the outbound queue overflows and
// the link is dropped.
var ErrQueueFull = errors.New("outbound queue full")

// State is the connection state of a session.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	}
	return "disconnected"
}

type eventKind int

const (
	eventFrame eventKind = iota
	eventLinkDown
	eventDialed
)

// Event is something a pump goroutine observed. Pass it to Session.Handle on
// the goroutine that owns the surface.
type Event struct {
	kind eventKind
	link *link
	data []byte
	conn transport.Conn
	err  error
}

// Options configures a Session.
type Options struct {
	Dial      transport.DialFunc
	Reconnect bool
	Policy    transport.Policy
	MultiChar MultiCharPolicy
	// Mode is announced to the peer on every new connection.
	Mode   string
	Logger *logs.Logger
	// QueueSize bounds outbound frames waiting for the writer.
	QueueSize int
}

// Session connects one surface to one remote editing session.
type Session struct {
	surface Surface
	console Console
	opts    Options
	log     *logs.Logger

	peers      *PeerRegistry
	suppress   *LoopbackSuppressor
	classifier *Classifier
	applier    *Applier

	state    State
	readOnly bool
	mode     string
	link     *link

	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession wires surface and console to a session. Nothing is dialed until
// Open.
func NewSession(surface Surface, console Console, opts Options) *Session {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		surface:  surface,
		console:  console,
		opts:     opts,
		log:      opts.Logger,
		peers:    NewPeerRegistry(),
		suppress: &LoopbackSuppressor{},
		mode:     opts.Mode,
		events:   make(chan Event, 64),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.classifier = NewClassifier(NewMapper(surface), s.suppress, opts.MultiChar)
	s.applier = NewApplier(surface, s.suppress)
	surface.ObserveEdits(s.onEdit)
	surface.ObserveCursor(s.onCursor)
	return s
}

// Peers returns the registry of other participants' cursors.
func (s *Session) Peers() *PeerRegistry { return s.peers }

// State returns the connection state.
func (s *Session) State() State { return s.state }

// ReadOnly reports whether the peer has disabled editing.
func (s *Session) ReadOnly() bool { return s.readOnly }

// Mode returns the mode last announced.
func (s *Session) Mode() string { return s.mode }

// Inbound delivers pump events. It is never closed.
func (s *Session) Inbound() <-chan Event { return s.events }

// Open dials the peer once and starts the pumps.
func (s *Session) Open(ctx context.Context) error {
	if s.state == StateClosed {
		return errors.New("session closed")
	}
	conn, err := s.opts.Dial(ctx)
	if err != nil {
		s.log.Event("session.open_failed", map[string]any{"error": err.Error()})
		return fmt.Errorf("open session: %w", err)
	}
	s.attach(conn)
	s.log.Event("session.open", nil)
	return nil
}

// Close stops the pumps and forgets all peers.
func (s *Session) Close() {
	if s.state == StateClosed {
		return
	}
	s.cancel()
	if s.link != nil {
		s.link.close()
		s.link = nil
	}
	s.wg.Wait()
	s.peers.Clear()
	s.setState(StateClosed)
	s.log.Event("session.close", nil)
}

// Handle processes one pump event. Errors are logged and reported on the
// console, never returned.
func (s *Session) Handle(ev Event) {
	if s.state == StateClosed {
		if ev.conn != nil {
			ev.conn.Close()
		}
		return
	}
	switch ev.kind {
	case eventFrame:
		if ev.link != s.link {
			return
		}
		s.handleFrame(ev.data)
	case eventLinkDown:
		if ev.link != s.link {
			return
		}
		s.linkDown(ev.err)
	case eventDialed:
		if ev.err != nil {
			s.setState(StateDisconnected)
			s.log.Event("transport.reconnect_failed", map[string]any{"error": ev.err.Error()})
			s.console.ShowWarning("connection lost: " + ev.err.Error())
			return
		}
		s.attach(ev.conn)
		s.log.Event("transport.reconnected", nil)
		s.console.ShowOutput("reconnected")
	}
}

func (s *Session) handleFrame(data []byte) {
	msg, err := wire.Decode(data)
	if err != nil {
		s.log.Event("wire.decode_error", map[string]any{"error": err.Error(), "frame": string(data)})
		return
	}
	switch m := msg.(type) {
	case wire.InsertString, wire.InsertChar, wire.DeleteChar:
		if err := s.applier.Apply(m.(wire.Operation)); err != nil {
			s.log.Event("apply.range_error", map[string]any{"variant": string(m.Variant()), "error": err.Error()})
			s.console.ShowWarning("out of sync: " + err.Error())
		}
	case wire.Output:
		s.console.ShowOutput(m.Text)
	case wire.DisableEditing:
		if s.readOnly {
			return
		}
		s.readOnly = true
		s.surface.SetReadOnly(true)
		s.log.Event("session.read_only", nil)
	case wire.UpdatePeerCursor:
		s.peers.Update(m.Peer.ID, buffer.Position{Row: m.Row, Column: m.Column})
	case wire.RemovePeerCursor:
		s.peers.Remove(m.Peer.ID)
	default:
		s.log.Event("wire.unexpected", map[string]any{"variant": string(msg.Variant())})
	}
}

func (s *Session) onEdit(ev EditEvent) {
	ops, err := s.classifier.Classify(ev)
	if errors.Is(err, ErrUnsupportedEdit) {
		s.log.Event("classify.unsupported", map[string]any{"error": err.Error()})
		return
	}
	if s.readOnly {
		return
	}
	for _, op := range ops {
		if err := s.Send(op); err != nil {
			s.log.Event("send.dropped", map[string]any{"variant": string(op.Variant()), "error": err.Error()})
		}
	}
}

func (s *Session) onCursor(p buffer.Position) {
	if s.state != StateConnected {
		return
	}
	if err := s.Send(wire.UpdateCursor{Row: p.Row, Column: p.Column}); err != nil {
		s.log.Event("send.dropped", map[string]any{"variant": string(wire.VariantUpdateCursor), "error": err.Error()})
	}
}

// Send queues m for the peer. It never blocks: a full queue means the writer
// is stuck, so the link is treated as lost.
func (s *Session) Send(m wire.Message) error {
	if s.state != StateConnected || s.link == nil {
		return ErrDisconnected
	}
	data, err := wire.Encode(m)
	if err != nil {
		return err
	}
	select {
	case s.link.out <- data:
		return nil
	case <-s.link.done:
		return ErrDisconnected
	default:
		s.linkDown(ErrQueueFull)
		return ErrDisconnected
	}
}

// Compile asks the peer to build and run the document.
func (s *Session) Compile() error { return s.Send(wire.Compile{}) }

// Commit asks the peer to commit the document.
func (s *Session) Commit() error { return s.Send(wire.Commit{}) }

// SetMode records name and announces it when connected.
func (s *Session) SetMode(name string) error {
	s.mode = name
	if s.state != StateConnected {
		return nil
	}
	return s.Send(wire.Mode{Name: name})
}

func (s *Session) setState(st State) {
	if s.state == st {
		return
	}
	s.log.Event("session.state", map[string]any{"from": s.state.String(), "to": st.String()})
	s.state = st
}

func (s *Session) attach(conn transport.Conn) {
	l := &link{conn: conn, out: make(chan []byte, s.opts.QueueSize), done: make(chan struct{})}
	s.link = l
	s.setState(StateConnected)
	s.wg.Add(2)
	go s.readPump(l)
	go s.writePump(l)
	if s.mode != "" {
		_ = s.Send(wire.Mode{Name: s.mode})
	}
}

func (s *Session) linkDown(err error) {
	s.link.close()
	s.link = nil
	s.peers.Clear()
	s.setState(StateDisconnected)
	fields := map[string]any{}
	if err != nil {
		fields["error"] = err.Error()
	}
	s.log.Event("transport.closed", fields)
	if !s.opts.Reconnect {
		s.console.ShowWarning("disconnected from session")
		return
	}
	s.setState(StateReconnecting)
	s.console.ShowWarning("connection lost, reconnecting")
	s.wg.Add(1)
	go s.redial()
}

func (s *Session) redial() {
	defer s.wg.Done()
	conn, err := transport.Redial(s.ctx, s.opts.Dial, s.opts.Policy, func(attempt int, err error, wait time.Duration) {
		s.log.Event("transport.reconnect", map[string]any{"attempt": attempt, "error": err.Error(), "wait": wait.String()})
	})
	if err != nil && s.ctx.Err() != nil {
		return
	}
	s.emit(Event{kind: eventDialed, conn: conn, err: err})
}

func (s *Session) emit(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.ctx.Done():
		if ev.conn != nil {
			ev.conn.Close()
		}
		return false
	}
}

func (s *Session) readPump(l *link) {
	defer s.wg.Done()
	for {
		data, err := l.conn.ReadMessage()
		if err != nil {
			select {
			case <-l.done:
			default:
				s.emit(Event{kind: eventLinkDown, link: l, err: err})
			}
			return
		}
		if !s.emit(Event{kind: eventFrame, link: l, data: data}) {
			return
		}
	}
}

func (s *Session) writePump(l *link) {
	defer s.wg.Done()
	for {
		select {
		case data := <-l.out:
			if err := l.conn.WriteMessage(data); err != nil {
				s.emit(Event{kind: eventLinkDown, link: l, err: err})
				return
			}
		case <-l.done:
			return
		}
	}
}

// link is one live connection and its outbound queue.
type link struct {
	conn transport.Conn
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func (l *link) close() {
	l.once.Do(func() {
		close(l.done)
		l.conn.Close()
	})
}
