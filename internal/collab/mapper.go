package collab

import "example.com/syncedit/pkg/buffer"

// Mapper resolves positions against the live document. It never caches:
// every call sees the document as it is now.
type Mapper struct {
	doc Positions
}

// NewMapper wraps doc.
func NewMapper(doc Positions) Mapper {
	return Mapper{doc: doc}
}

// Index converts p to a linear index.
func (m Mapper) Index(p buffer.Position) int {
	return m.doc.PositionToIndex(p)
}

// Position converts a linear index to a display position.
func (m Mapper) Position(i int) buffer.Position {
	return m.doc.IndexToPosition(i)
}

// Clamp limits i to [0, Len()].
func (m Mapper) Clamp(i int) int {
	return min(max(i, 0), m.doc.Len())
}

// CanInsertAt reports whether an insertion at i is inside the document.
func (m Mapper) CanInsertAt(i int) bool {
	return i >= 0 && i <= m.doc.Len()
}

// CanDeleteAt reports whether a character exists at i.
func (m Mapper) CanDeleteAt(i int) bool {
	return i >= 0 && i < m.doc.Len()
}
