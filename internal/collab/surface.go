// Package collab keeps a local editing surface in step with a remote
// editing session. Local edits become character operations for the peer and
// the peer's operations are replayed onto the surface.
//
// Everything in this package expects to be driven from a single goroutine,
// the owner of the surface. Network I/O happens on pump goroutines that only
// hand frames over through Session.Inbound.
package collab

import "example.com/syncedit/pkg/buffer"

// Action is the kind of a surface change.
type Action int

const (
	ActionInsert Action = iota
	ActionRemove
)

func (a Action) String() string {
	if a == ActionRemove {
		return "remove"
	}
	return "insert"
}

// Origin tells who caused a change.
type Origin int

const (
	// OriginLocal marks changes made by the user or the surface itself.
	OriginLocal Origin = iota
	// OriginRemote marks changes replayed from the peer.
	OriginRemote
)

// Range spans two positions. For insertions Start == End.
type Range struct {
	Start buffer.Position
	End   buffer.Position
}

// EditEvent describes one change the surface has already applied. Start and
// End bound the affected text and Lines holds it split on '\n', so a single
// newline is reported as two empty lines.
type EditEvent struct {
	Action Action
	Start  buffer.Position
	End    buffer.Position
	Lines  []string
	Origin Origin
}

// Positions converts between display positions and linear indices against
// the current document.
type Positions interface {
	PositionToIndex(p buffer.Position) int
	IndexToPosition(i int) buffer.Position
	Len() int
}

// Surface is what the session needs from an editing widget.
type Surface interface {
	Positions
	// ApplyCharacterEdit replaces the text in r with text and reports the
	// change to edit observers with OriginRemote.
	ApplyCharacterEdit(r Range, text string) error
	// ReplaceAll swaps the whole document. The surface reports the removal
	// of the old content as a local change, then the insertion as remote.
	ReplaceAll(text string)
	SetReadOnly(readOnly bool)
	ObserveEdits(fn func(EditEvent))
	ObserveCursor(fn func(buffer.Position))
}

// Console shows session messages to the user.
type Console interface {
	ShowOutput(text string)
	ShowWarning(text string)
}
