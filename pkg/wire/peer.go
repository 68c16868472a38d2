package wire

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// envelopeKey is the field name the peer's serializer gives the single
// member of a newtype struct.
const envelopeKey = "_field0"

// PeerEnvelope identifies a participant. On the wire it is the peer's newtype
// encoding, {"_field0": [id, ...]}; ID holds the unwrapped first element so it
// can be used directly as a map key.
type PeerEnvelope struct {
	ID string
}

// Peer wraps id in an envelope.
func Peer(id string) PeerEnvelope {
	return PeerEnvelope{ID: id}
}

func (p PeerEnvelope) wire() any {
	return map[string]any{envelopeKey: []any{p.ID}}
}

func decodePeer(r gjson.Result) (PeerEnvelope, string) {
	if !r.IsObject() {
		return PeerEnvelope{}, "peer id is not an envelope object"
	}
	inner := r.Get(envelopeKey)
	if !inner.IsArray() {
		return PeerEnvelope{}, "peer envelope has no " + envelopeKey + " array"
	}
	items := inner.Array()
	if len(items) == 0 {
		return PeerEnvelope{}, "peer envelope is empty"
	}
	first := items[0]
	switch first.Type {
	case gjson.String:
		if first.Str == "" {
			return PeerEnvelope{}, "peer id is empty"
		}
		return PeerEnvelope{ID: first.Str}, ""
	case gjson.Number:
		n, ok := wholeNumber(first)
		if !ok {
			return PeerEnvelope{}, "peer id is not a whole number"
		}
		return PeerEnvelope{ID: strconv.FormatInt(n, 10)}, ""
	default:
		return PeerEnvelope{}, "peer id must be a string or number"
	}
}
