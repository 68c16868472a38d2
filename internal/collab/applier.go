package collab

import (
	"fmt"

	"example.com/syncedit/pkg/wire"
)

// RangeError reports a remote operation addressing a position the local
// document does not have.
type RangeError struct {
	Op    wire.Operation
	Index int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s at %d outside document of length %d", e.Op.Variant(), e.Index, e.Len)
}

// Applier replays remote operations onto the surface.
type Applier struct {
	surface  Surface
	mapper   Mapper
	suppress *LoopbackSuppressor
}

// NewApplier applies to surface and arms suppress on full replacements.
func NewApplier(surface Surface, suppress *LoopbackSuppressor) *Applier {
	return &Applier{surface: surface, mapper: NewMapper(surface), suppress: suppress}
}

// Apply performs op. Out of range indices are rejected with *RangeError and
// leave the document untouched.
func (a *Applier) Apply(op wire.Operation) error {
	switch op := op.(type) {
	case wire.InsertChar:
		if !a.mapper.CanInsertAt(op.Index) {
			return &RangeError{Op: op, Index: op.Index, Len: a.surface.Len()}
		}
		at := a.mapper.Position(op.Index)
		return a.surface.ApplyCharacterEdit(Range{Start: at, End: at}, string(op.Char))
	case wire.DeleteChar:
		if !a.mapper.CanDeleteAt(op.Index) {
			return &RangeError{Op: op, Index: op.Index, Len: a.surface.Len()}
		}
		r := Range{Start: a.mapper.Position(op.Index), End: a.mapper.Position(op.Index + 1)}
		return a.surface.ApplyCharacterEdit(r, "")
	case wire.InsertString:
		// armed first: the surface reports the echo removal synchronously
		if a.suppress != nil {
			a.suppress.Arm()
		}
		a.surface.ReplaceAll(op.Text)
		return nil
	}
	return fmt.Errorf("apply: unexpected operation %s", op.Variant())
}
