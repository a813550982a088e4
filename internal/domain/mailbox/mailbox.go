package mailbox

import "time"

// Frame is an opaque message exchanged between two paired peers. The table
// never inspects Payload; FrameKind only distinguishes WebSocket text from
// binary framing so a relayed message reaches the partner with the same
// framing it arrived with.
type Frame struct {
	Kind    FrameKind
	Payload []byte
}

// FrameKind mirrors the two WebSocket data frame types the protocol relays
// unchanged (see spec.md section 6, "Data protocol").
type FrameKind uint8

const (
	FrameText FrameKind = iota
	FrameBinary
)

// ClientID identifies the connection occupying a slot. Defined here (rather
// than imported from the client package) to keep mailbox free of a
// dependency on client bookkeeping — see DESIGN.md "Core domain".
type ClientID uint64

// slot is one of the two fixed positions inside a mailbox. A free slot may
// hold frames buffered for whichever client attaches to it next (invariant
// P1). Attaching does not flush that buffer: it stays until the new occupant
// drains it with TakePending, and an occupied slot never gains new buffered
// frames (invariant P2).
type slot struct {
	occupant *ClientID
	pending  []Frame
}

func (s *slot) free() bool {
	return s.occupant == nil
}

func (s *slot) attach(id ClientID) {
	s.occupant = &id
}

func (s *slot) detach() {
	s.occupant = nil
}

// enqueueOrDeliver implements the Peer::enqueue_or_send_message logic: if the
// slot is occupied, the frame is handed back for immediate delivery; if it is
// free, the frame joins the slot's pending buffer.
func (s *slot) enqueueOrDeliver(f Frame) (ClientID, bool) {
	if s.occupant != nil {
		return *s.occupant, true
	}
	s.pending = append(s.pending, f)
	return 0, false
}

func (s *slot) takePending() []Frame {
	pending := s.pending
	s.pending = nil
	return pending
}

// mailbox holds the pair of peer slots for one rendezvous. It is mutated
// exclusively through [Table] operations, each holding the table's guard.
type mailbox struct {
	slots        [2]slot
	closing      bool
	lastActivity time.Time
}

func newMailbox(now time.Time) *mailbox {
	return &mailbox{lastActivity: now}
}

// canAccept reports whether a new peer may attach: not closing, and at
// least one free slot (invariant M1, M2).
func (m *mailbox) canAccept() bool {
	if m.closing {
		return false
	}
	return m.slots[0].free() || m.slots[1].free()
}

func (m *mailbox) occupiedCount() int {
	n := 0
	for i := range m.slots {
		if !m.slots[i].free() {
			n++
		}
	}
	return n
}

func (m *mailbox) attach(id ClientID) {
	switch {
	case m.slots[0].free():
		m.slots[0].attach(id)
	case m.slots[1].free():
		m.slots[1].attach(id)
	default:
		panic("mailbox: attach called with no free slot")
	}
}

// slotOf returns the slot occupied by id, or nil if id is not attached here.
func (m *mailbox) slotOf(id ClientID) *slot {
	for i := range m.slots {
		if m.slots[i].occupant != nil && *m.slots[i].occupant == id {
			return &m.slots[i]
		}
	}
	return nil
}

// otherSlotOf returns the slot NOT occupied by id — the partner's slot,
// whether or not it is currently occupied.
func (m *mailbox) otherSlotOf(id ClientID) *slot {
	for i := range m.slots {
		if m.slots[i].occupant == nil || *m.slots[i].occupant != id {
			return &m.slots[i]
		}
	}
	return nil
}

// occupants lists the ClientIDs currently attached, in slot order.
func (m *mailbox) occupants() []ClientID {
	var out []ClientID
	for i := range m.slots {
		if m.slots[i].occupant != nil {
			out = append(out, *m.slots[i].occupant)
		}
	}
	return out
}
