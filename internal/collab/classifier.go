package collab

import (
	"errors"
	"fmt"
	"strings"

	"example.com/syncedit/pkg/wire"
)

// ErrUnsupportedEdit marks a local edit that is neither a single character
// nor a single newline.
var ErrUnsupportedEdit = errors.New("unsupported edit")

// MultiCharPolicy decides what happens to edits spanning several characters.
type MultiCharPolicy int

const (
	// DropMultiChar skips them. The peer never hears about the edit.
	DropMultiChar MultiCharPolicy = iota
	// DecomposeMultiChar sends one operation per character.
	DecomposeMultiChar
)

// ParseMultiCharPolicy accepts "drop" and "decompose".
func ParseMultiCharPolicy(s string) (MultiCharPolicy, error) {
	switch s {
	case "", "drop":
		return DropMultiChar, nil
	case "decompose":
		return DecomposeMultiChar, nil
	}
	return DropMultiChar, fmt.Errorf("unknown multi-character policy %q", s)
}

func (p MultiCharPolicy) String() string {
	if p == DecomposeMultiChar {
		return "decompose"
	}
	return "drop"
}

// Classifier turns surface edit events into wire operations.
type Classifier struct {
	mapper   Mapper
	suppress *LoopbackSuppressor
	policy   MultiCharPolicy
}

// NewClassifier resolves indices through mapper and consults suppress for
// echo removals.
func NewClassifier(mapper Mapper, suppress *LoopbackSuppressor, policy MultiCharPolicy) *Classifier {
	return &Classifier{mapper: mapper, suppress: suppress, policy: policy}
}

// Classify returns the operations for ev, in the order they must be sent.
// Remote and suppressed events yield nothing. An unsupported edit under the
// drop policy yields an error wrapping ErrUnsupportedEdit.
func (c *Classifier) Classify(ev EditEvent) ([]wire.Operation, error) {
	if ev.Origin == OriginRemote {
		return nil, nil
	}
	if c.suppress != nil && c.suppress.Consume(ev) {
		return nil, nil
	}
	i := c.mapper.Index(ev.Start)
	switch {
	case isNewline(ev):
		return []wire.Operation{single(ev.Action, i, '\n')}, nil
	case len(ev.Lines) == 1 && runeCount(ev.Lines[0]) == 1:
		return []wire.Operation{single(ev.Action, i, []rune(ev.Lines[0])[0])}, nil
	}
	if c.policy == DecomposeMultiChar {
		return decompose(ev, i), nil
	}
	return nil, fmt.Errorf("%w: %s of %d lines at %d", ErrUnsupportedEdit, ev.Action, len(ev.Lines), i)
}

// isNewline matches the shape a surface reports for one line break.
func isNewline(ev EditEvent) bool {
	return ev.End.Row == ev.Start.Row+1 && len(ev.Lines) == 2 && ev.Lines[0] == "" && ev.Lines[1] == ""
}

func single(a Action, i int, ch rune) wire.Operation {
	if a == ActionRemove {
		return wire.DeleteChar{Index: i}
	}
	return wire.InsertChar{Index: i, Char: ch}
}

func decompose(ev EditEvent, i int) []wire.Operation {
	text := []rune(strings.Join(ev.Lines, "\n"))
	ops := make([]wire.Operation, 0, len(text))
	for k, ch := range text {
		if ev.Action == ActionRemove {
			// each removal shifts the rest of the span down onto i
			ops = append(ops, wire.DeleteChar{Index: i})
			continue
		}
		ops = append(ops, wire.InsertChar{Index: i + k, Char: ch})
	}
	return ops
}

func runeCount(s string) int {
	return len([]rune(s))
}
