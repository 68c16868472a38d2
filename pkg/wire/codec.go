package wire

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	// ErrUnknownVariant marks a well-formed frame naming a variant outside the
	// protocol.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrMalformed marks a frame that is not a tagged variant or whose fields
	// do not match the variant's schema.
	ErrMalformed = errors.New("malformed message")
)

// DecodeError describes a rejected inbound frame.
type DecodeError struct {
	Variant Variant
	Reason  string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Variant == "" {
		return fmt.Sprintf("decode: %v: %s", e.Err, e.Reason)
	}
	return fmt.Sprintf("decode %s: %v: %s", e.Variant, e.Err, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func malformed(v Variant, reason string) *DecodeError {
	return &DecodeError{Variant: v, Reason: reason, Err: ErrMalformed}
}

// Encode renders m as a single JSON frame.
func Encode(m Message) ([]byte, error) {
	out, err := sjson.SetBytes([]byte(`{}`), "variant", string(m.Variant()))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Variant(), err)
	}
	out, err = sjson.SetBytes(out, "fields", m.fields())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Variant(), err)
	}
	return out, nil
}

// Decode parses one inbound frame. Anything that is not an object with a
// string "variant" and an array "fields" of the right shape is rejected with
// a *DecodeError.
func Decode(data []byte) (Message, error) {
	if !gjson.ValidBytes(data) {
		return nil, malformed("", "payload is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, malformed("", "payload is not an object")
	}
	name := root.Get("variant")
	if name.Type != gjson.String {
		return nil, malformed("", "variant name missing")
	}
	v := Variant(name.Str)
	want, ok := arity[v]
	if !ok {
		return nil, &DecodeError{Variant: v, Reason: "not part of the protocol", Err: ErrUnknownVariant}
	}
	list := root.Get("fields")
	if !list.IsArray() {
		return nil, malformed(v, "fields is not an array")
	}
	f := fields{variant: v, items: list.Array()}
	if len(f.items) != want {
		return nil, malformed(v, fmt.Sprintf("expected %d fields, got %d", want, len(f.items)))
	}

	var m Message
	switch v {
	case VariantInsertString:
		m = InsertString{Reserved: f.num(0), Text: f.text(1)}
	case VariantInsertChar:
		m = InsertChar{Index: f.index(0), Char: f.char(1)}
	case VariantDeleteChar:
		m = DeleteChar{Index: f.index(0)}
	case VariantOutput:
		m = Output{Text: f.text(0)}
	case VariantDisableEditing:
		m = DisableEditing{}
	case VariantUpdatePeerCursor:
		m = UpdatePeerCursor{Peer: f.peer(0), Row: f.num(1), Column: f.num(2)}
	case VariantRemovePeerCursor:
		m = RemovePeerCursor{Peer: f.peer(0)}
	case VariantUpdateCursor:
		m = UpdateCursor{Row: f.num(0), Column: f.num(1)}
	case VariantCompile:
		m = Compile{}
	case VariantCommit:
		m = Commit{}
	case VariantMode:
		m = Mode{Name: f.text(0)}
	}
	if f.err != nil {
		return nil, f.err
	}
	return m, nil
}

// fields reads typed values out of a fields array, keeping the first error.
type fields struct {
	variant Variant
	items   []gjson.Result
	err     *DecodeError
}

func (f *fields) fail(i int, reason string) {
	if f.err == nil {
		f.err = malformed(f.variant, fmt.Sprintf("field %d: %s", i, reason))
	}
}

func (f *fields) num(i int) int {
	r := f.items[i]
	if r.Type != gjson.Number {
		f.fail(i, "expected a number")
		return 0
	}
	n, ok := wholeNumber(r)
	if !ok || n < 0 || n > math.MaxInt32 {
		f.fail(i, "expected a non-negative integer")
		return 0
	}
	return int(n)
}

// maxExactIndex is the largest magnitude a JSON number carries without
// losing integer precision.
const maxExactIndex = 1 << 53

// index reads a document index. Any whole number is accepted, negative or
// past the end, so the bounds check happens against the live document.
func (f *fields) index(i int) int {
	r := f.items[i]
	if r.Type != gjson.Number {
		f.fail(i, "expected a number")
		return 0
	}
	if math.Abs(r.Num) > maxExactIndex {
		f.fail(i, "index out of integer range")
		return 0
	}
	n, ok := wholeNumber(r)
	if !ok {
		f.fail(i, "expected an integer")
		return 0
	}
	return int(n)
}

func (f *fields) text(i int) string {
	r := f.items[i]
	if r.Type != gjson.String {
		f.fail(i, "expected a string")
		return ""
	}
	return r.Str
}

func (f *fields) char(i int) rune {
	s := f.text(i)
	if f.err != nil {
		return 0
	}
	if utf8.RuneCountInString(s) != 1 {
		f.fail(i, "expected exactly one character")
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func (f *fields) peer(i int) PeerEnvelope {
	p, reason := decodePeer(f.items[i])
	if reason != "" {
		f.fail(i, reason)
	}
	return p
}

func wholeNumber(r gjson.Result) (int64, bool) {
	if r.Num != math.Trunc(r.Num) || math.IsInf(r.Num, 0) {
		return 0, false
	}
	return int64(r.Num), true
}
