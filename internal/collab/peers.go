package collab

import "example.com/syncedit/pkg/buffer"

// Marker is a peer cursor to draw. Slot is a stable per-peer ordinal usable
// to pick a color.
type Marker struct {
	Peer     string
	Position buffer.Position
	Slot     int
}

// PeerRegistry tracks the last reported cursor of every other participant.
// Iteration follows the order in which peers were first seen.
type PeerRegistry struct {
	order    []string
	entries  map[string]*Marker
	nextSlot int
	onChange func()
}

// NewPeerRegistry returns an empty registry.
func NewPeerRegistry() *PeerRegistry {
	return &PeerRegistry{entries: make(map[string]*Marker)}
}

// OnChange registers fn to run after every modification.
func (p *PeerRegistry) OnChange(fn func()) {
	p.onChange = fn
}

func (p *PeerRegistry) changed() {
	if p.onChange != nil {
		p.onChange()
	}
}

// Update records pos as peer's cursor.
func (p *PeerRegistry) Update(peer string, pos buffer.Position) {
	if m, ok := p.entries[peer]; ok {
		m.Position = pos
	} else {
		p.entries[peer] = &Marker{Peer: peer, Position: pos, Slot: p.nextSlot}
		p.nextSlot++
		p.order = append(p.order, peer)
	}
	p.changed()
}

// Remove forgets peer. Unknown peers are ignored.
func (p *PeerRegistry) Remove(peer string) {
	if _, ok := p.entries[peer]; !ok {
		return
	}
	delete(p.entries, peer)
	for i, id := range p.order {
		if id == peer {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	p.changed()
}

// Clear forgets every peer.
func (p *PeerRegistry) Clear() {
	if len(p.order) == 0 {
		return
	}
	p.order = nil
	p.entries = make(map[string]*Marker)
	p.changed()
}

// Get returns the cursor of peer.
func (p *PeerRegistry) Get(peer string) (buffer.Position, bool) {
	m, ok := p.entries[peer]
	if !ok {
		return buffer.Position{}, false
	}
	return m.Position, true
}

// Len returns the number of known peers.
func (p *PeerRegistry) Len() int {
	return len(p.order)
}

// Visible returns the markers whose row lies in [firstRow, lastRow].
func (p *PeerRegistry) Visible(firstRow, lastRow int) []Marker {
	var out []Marker
	for _, id := range p.order {
		m := p.entries[id]
		if m.Position.Row < firstRow || m.Position.Row > lastRow {
			continue
		}
		out = append(out, *m)
	}
	return out
}
