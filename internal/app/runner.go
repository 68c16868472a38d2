package app

import (
	"context"

	"example.com/syncedit/internal/collab"
	"example.com/syncedit/pkg/buffer"
	"example.com/syncedit/pkg/config"
	"example.com/syncedit/pkg/logs"
	"example.com/syncedit/pkg/modes"
	"github.com/gdamore/tcell/v2"
)

// Session is the part of a collaboration session the runner drives.
type Session interface {
	Inbound() <-chan collab.Event
	Handle(ev collab.Event)
	State() collab.State
	Mode() string
	SetMode(name string) error
	Compile() error
	Commit() error
}

// Runner owns the terminal lifecycle and the event loop. It is also the
// editing surface the session reads from and writes to.
type Runner struct {
	Screen   tcell.Screen
	Buf      *buffer.GapBuffer
	Cursor   int // cursor position in runes
	TopLine  int
	ReadOnly bool
	ShowHelp bool
	Logger   *logs.Logger
	MiniBuf  []string
	Keymap   map[string]config.Keybinding
	Theme    config.Theme
	Modes    *modes.Catalog
	Session  Session
	Peers    *collab.PeerRegistry

	themeName       string
	miniWarn        bool
	editObservers   []func(collab.EditEvent)
	cursorObservers []func(buffer.Position)
	lastCursor      buffer.Position
	pasting         bool
	pasted          []rune
	needsDraw       bool
}

func (r *Runner) setMiniBuffer(lines []string) {
	r.MiniBuf = lines
	r.miniWarn = false
}

func (r *Runner) clearMiniBuffer() {
	r.MiniBuf = nil
	r.miniWarn = false
}

// New creates an empty Runner.
func New() *Runner {
	return &Runner{
		Buf:    buffer.NewGapBuffer(0),
		Keymap: config.DefaultKeymap(),
		Theme:  config.DefaultTheme(),
		Modes:  modes.Default(),

		themeName: "default",
	}
}

// Attach connects the runner to a session that was built on top of it.
func (r *Runner) Attach(s *collab.Session) {
	r.Session = s
	r.Peers = s.Peers()
	r.Peers.OnChange(r.requestDraw)
}

func (r *Runner) requestDraw() {
	r.needsDraw = true
}

// InitScreen initializes a tcell screen if one is not already set.
func (r *Runner) InitScreen() error {
	if r.Screen != nil {
		return nil
	}
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.SetStyle(tcell.StyleDefault)
	s.EnablePaste()
	s.Clear()
	r.Screen = s
	return nil
}

// Fini finalizes the screen if initialized.
func (r *Runner) Fini() {
	if r.Screen != nil {
		r.Screen.Fini()
		r.Screen = nil
	}
}

// Run starts the event loop. Terminal events and session events are handled
// here, one at a time. It returns when the user requests quit or ctx ends.
func (r *Runner) Run(ctx context.Context) error {
	if r.Screen == nil {
		if err := r.InitScreen(); err != nil {
			return err
		}
		defer r.Fini()
	}
	r.Logger.Event("run.start", nil)
	defer r.Logger.Event("run.end", nil)

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go func(s tcell.Screen) {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}(r.Screen)

	var inbound <-chan collab.Event
	if r.Session != nil {
		inbound = r.Session.Inbound()
	}

	r.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if r.handleEvent(ev) {
				r.Logger.Event("action", map[string]any{"name": "quit"})
				return nil
			}
		case ev := <-inbound:
			r.Session.Handle(ev)
		}
		if r.needsDraw {
			r.draw()
		}
	}
}

// handleEvent dispatches one terminal event. It returns true on quit.
func (r *Runner) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		r.Logger.Event("key", map[string]any{
			"key":       int(ev.Key()),
			"rune":      string(ev.Rune()),
			"modifiers": int(ev.Modifiers()),
		})
		// If help is currently shown, consume this key to dismiss it
		if r.ShowHelp {
			r.ShowHelp = false
			r.requestDraw()
			return false
		}
		return r.handleKeyEvent(ev)
	case *tcell.EventPaste:
		r.handlePaste(ev)
	case *tcell.EventResize:
		r.Screen.Sync()
		r.requestDraw()
	}
	return false
}
