package collab

// LoopbackSuppressor swallows the removal event a surface emits for its own
// old content when the document is replaced wholesale.
type LoopbackSuppressor struct {
	armed bool
}

// Arm expects one echo removal. Arming twice still expects one.
func (l *LoopbackSuppressor) Arm() {
	l.armed = true
}

// Armed reports whether a removal is still expected.
func (l *LoopbackSuppressor) Armed() bool {
	return l.armed
}

// Consume reports whether ev is the expected echo and disarms if so. Only
// local removals are consumed.
func (l *LoopbackSuppressor) Consume(ev EditEvent) bool {
	if !l.armed || ev.Action != ActionRemove || ev.Origin != OriginLocal {
		return false
	}
	l.armed = false
	return true
}
