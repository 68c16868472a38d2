// Package wire defines the tagged messages exchanged with the session peer and
// their JSON encoding.
//
// Every frame is an object of the form
//
//	{"variant": "InsertChar", "fields": [3, "x"]}
//
// The variant name and the number and order of fields are fixed per variant.
package wire

// Variant names a message kind on the wire.
type Variant string

const (
	VariantInsertString     Variant = "InsertString"
	VariantInsertChar       Variant = "InsertChar"
	VariantDeleteChar       Variant = "DeleteChar"
	VariantOutput           Variant = "Output"
	VariantDisableEditing   Variant = "DisableEditing"
	VariantUpdatePeerCursor Variant = "UpdatePeerCursor"
	VariantRemovePeerCursor Variant = "RemovePeerCursor"
	VariantUpdateCursor     Variant = "UpdateCursor"
	VariantCompile          Variant = "Compile"
	VariantCommit           Variant = "Commit"
	VariantMode             Variant = "Mode"
)

// Message is one of the variants declared in this package.
type Message interface {
	Variant() Variant
	fields() []any
}

// Operation is a Message that edits the document.
type Operation interface {
	Message
	isOperation()
}

// InsertString replaces the whole document. Reserved is carried for wire
// compatibility and is always 0 on the peers seen so far.
type InsertString struct {
	Reserved int
	Text     string
}

// InsertChar inserts Char so that it ends up at Index.
type InsertChar struct {
	Index int
	Char  rune
}

// DeleteChar removes the character at Index.
type DeleteChar struct {
	Index int
}

// Output carries a rendered result (compile output, log line) for display.
type Output struct {
	Text string
}

// DisableEditing switches the session to read-only.
type DisableEditing struct{}

// UpdatePeerCursor moves the cursor marker of another participant.
type UpdatePeerCursor struct {
	Peer   PeerEnvelope
	Row    int
	Column int
}

// RemovePeerCursor drops the cursor marker of a participant that left.
type RemovePeerCursor struct {
	Peer PeerEnvelope
}

// UpdateCursor reports the local cursor position.
type UpdateCursor struct {
	Row    int
	Column int
}

// Compile asks the peer to compile and run the document.
type Compile struct{}

// Commit asks the peer to commit the document.
type Commit struct{}

// Mode announces the active editing mode.
type Mode struct {
	Name string
}

func (InsertString) Variant() Variant     { return VariantInsertString }
func (InsertChar) Variant() Variant       { return VariantInsertChar }
func (DeleteChar) Variant() Variant       { return VariantDeleteChar }
func (Output) Variant() Variant           { return VariantOutput }
func (DisableEditing) Variant() Variant   { return VariantDisableEditing }
func (UpdatePeerCursor) Variant() Variant { return VariantUpdatePeerCursor }
func (RemovePeerCursor) Variant() Variant { return VariantRemovePeerCursor }
func (UpdateCursor) Variant() Variant     { return VariantUpdateCursor }
func (Compile) Variant() Variant          { return VariantCompile }
func (Commit) Variant() Variant           { return VariantCommit }
func (Mode) Variant() Variant             { return VariantMode }

func (m InsertString) fields() []any     { return []any{m.Reserved, m.Text} }
func (m InsertChar) fields() []any       { return []any{m.Index, string(m.Char)} }
func (m DeleteChar) fields() []any       { return []any{m.Index} }
func (m Output) fields() []any           { return []any{m.Text} }
func (DisableEditing) fields() []any     { return []any{} }
func (m UpdatePeerCursor) fields() []any { return []any{m.Peer.wire(), m.Row, m.Column} }
func (m RemovePeerCursor) fields() []any { return []any{m.Peer.wire()} }
func (m UpdateCursor) fields() []any     { return []any{m.Row, m.Column} }
func (Compile) fields() []any            { return []any{} }
func (Commit) fields() []any             { return []any{} }
func (m Mode) fields() []any             { return []any{m.Name} }

func (InsertString) isOperation() {}
func (InsertChar) isOperation()   {}
func (DeleteChar) isOperation()   {}

// arity is the exact field count of every known variant.
var arity = map[Variant]int{
	VariantInsertString:     2,
	VariantInsertChar:       2,
	VariantDeleteChar:       1,
	VariantOutput:           1,
	VariantDisableEditing:   0,
	VariantUpdatePeerCursor: 3,
	VariantRemovePeerCursor: 1,
	VariantUpdateCursor:     2,
	VariantCompile:          0,
	VariantCommit:           0,
	VariantMode:             1,
}

// Known reports whether v is part of the protocol.
func Known(v Variant) bool {
	_, ok := arity[v]
	return ok
}
