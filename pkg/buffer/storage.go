package buffer

// Position is a zero-based (row, column) display coordinate. Column counts
// runes from the start of the row.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Less reports whether p sorts before q in document order.
func (p Position) Less(q Position) bool {
	if p.Row != q.Row {
		return p.Row < q.Row
	}
	return p.Column < q.Column
}

// TextStorage defines the document operations used by the editing surface.
// Positions and lengths are expressed in runes (not bytes).
type TextStorage interface {
	Insert(pos int, s []rune) error
	Delete(start, end int) error
	Slice(start, end int) []rune
	Len() int
	LineAt(idx int) (start, end int)
	PositionToIndex(p Position) int
	IndexToPosition(i int) Position
}

var _ TextStorage = (*GapBuffer)(nil)
