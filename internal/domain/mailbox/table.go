package mailbox

import (
	"sync"
	"sync/atomic"
	"time"
)

// Events receives lifecycle notifications from a [Table]. Implementations
// must not block and must not call back into the table — see
// DESIGN.md for why this is a thin, fire-and-forget seam rather than a
// direct dependency on the metrics/eventbus packages.
type Events interface {
	MailboxCreated(id ID)
	MailboxDestroyed(id ID)
}

type noopEvents struct{}

func (noopEvents) MailboxCreated(ID)   {}
func (noopEvents) MailboxDestroyed(ID) {}

// Option configures a [Table] at construction time.
type Option func(*Table)

// WithMaxOpenMailboxes caps the number of simultaneously live mailboxes.
// Create fails with [ErrCapacityExceeded] once the cap is reached. The
// reference default is 100,000,000.
func WithMaxOpenMailboxes(max int) Option {
	return func(t *Table) { t.maxOpen = max }
}

// WithEvents wires a lifecycle observer (see [Events]); the default is a
// no-op.
func WithEvents(ev Events) Option {
	return func(t *Table) { t.events = ev }
}

// WithIdleTimeout sets the inactivity threshold after which Sweep destroys a
// mailbox (the spec.md section 9 open question this implementation resolves
// by implementing the timeout). Zero disables sweeping.
func WithIdleTimeout(d time.Duration) Option {
	return func(t *Table) { t.idleTimeout.Store(int64(d)) }
}

// Table is the process-wide registry of live mailboxes. All operations are
// serialized through mu; ID bookkeeping uses its own RWMutex (see
// [idAllocator]) so Find/Attach existence checks don't contend with
// unrelated Create calls (spec.md section 4.1.3).
type Table struct {
	ids *idAllocator

	mu        sync.Mutex
	mailboxes map[ID]*mailbox

	maxOpen     int
	idleTimeout atomic.Int64 // nanoseconds; see SetIdleTimeout
	events      Events

	now     func() time.Time
	onSweep func(id ID, survivors []ClientID)
}

// NewTable constructs an empty mailbox table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		ids:       newIDAllocator(),
		mailboxes: make(map[ID]*mailbox),
		maxOpen:   100_000_000,
		events:    noopEvents{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Create allocates a fresh mailbox and returns its ID. It fails with
// [ErrCapacityExceeded] once the configured cap is reached.
func (t *Table) Create() (ID, error) {
	if t.ids.count() >= t.maxOpen {
		return 0, ErrCapacityExceeded
	}

	id := t.ids.allocate()

	t.mu.Lock()
	t.mailboxes[id] = newMailbox(t.now())
	t.mu.Unlock()

	t.events.MailboxCreated(id)
	return id, nil
}

// Find treats idRaw as a candidate mailbox ID. It returns [ErrNotFound] if
// no such mailbox exists, [ErrBusy] if it exists but has no free slot (or is
// already closing), otherwise the typed ID.
func (t *Table) Find(idRaw uint32) (ID, error) {
	id := ID(idRaw & idMask)
	if !t.ids.exists(id) {
		return 0, ErrNotFound
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	box, ok := t.mailboxes[id]
	if !ok {
		return 0, ErrNotFound
	}
	if !box.canAccept() {
		return 0, ErrBusy
	}
	return id, nil
}

// Attach places clientID into the first free slot of id. It fails with
// [ErrNotFound] if the mailbox vanished since Find, or [ErrBusy] if no free
// slot remains.
func (t *Table) Attach(id ID, clientID ClientID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	box, ok := t.mailboxes[id]
	if !ok {
		return ErrNotFound
	}
	if !box.canAccept() {
		return ErrBusy
	}

	box.attach(clientID)
	box.lastActivity = t.now()
	return nil
}

// Send locates the partner slot of fromClientID in mailbox id. If occupied,
// it returns the occupant and the frame for immediate delivery by the
// caller. If free, the frame is buffered for whoever attaches next and the
// second return is false — the caller MUST treat this as must-use (spec.md
// section 4.1, Send).
func (t *Table) Send(id ID, fromClientID ClientID, frame Frame) (ClientID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	box, ok := t.mailboxes[id]
	if !ok {
		return 0, false
	}
	box.lastActivity = t.now()

	target := box.otherSlotOf(fromClientID)
	return target.enqueueOrDeliver(frame)
}

// TakePending drains and returns the frames buffered for forClientID —
// i.e. those enqueued in the slot forClientID now occupies, sent by its
// partner before forClientID attached.
func (t *Table) TakePending(id ID, forClientID ClientID) []Frame {
	t.mu.Lock()
	defer t.mu.Unlock()

	box, ok := t.mailboxes[id]
	if !ok {
		return nil
	}

	s := box.slotOf(forClientID)
	if s == nil {
		return nil
	}
	return s.takePending()
}

// Detach clears clientID's slot in mailbox id and marks the mailbox
// closing. If any slot remains occupied, their ClientIDs are returned so the
// caller can force-close them. If no slot remains occupied, the mailbox
// record is destroyed and its ID released for reuse.
func (t *Table) Detach(id ID, clientID ClientID) []ClientID {
	survivors, destroyed := t.detachAndCheck(id, clientID)
	// Events fire after the guard is released (see [Events]): a slow
	// downstream subscriber must never hold up mailbox bookkeeping.
	if destroyed {
		t.events.MailboxDestroyed(id)
	}
	return survivors
}

func (t *Table) detachAndCheck(id ID, clientID ClientID) (survivors []ClientID, destroyed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	box, ok := t.mailboxes[id]
	if !ok {
		return nil, false
	}

	if s := box.slotOf(clientID); s != nil {
		s.detach()
	}
	box.closing = true
	box.lastActivity = t.now()

	if box.occupiedCount() > 0 {
		return box.occupants(), false
	}

	delete(t.mailboxes, id)
	t.ids.release(id)
	return nil, true
}

// IdleTimeout returns the inactivity threshold Sweep currently enforces;
// zero or less disables sweeping.
func (t *Table) IdleTimeout() time.Duration {
	return time.Duration(t.idleTimeout.Load())
}

// SetIdleTimeout updates the inactivity threshold Sweep enforces, taking
// effect on the sweeper's next tick. Safe for concurrent use; this is what
// config.WatchMailboxTimeout calls on a live-reloaded MAILBOX_TIMEOUT_SEC.
func (t *Table) SetIdleTimeout(d time.Duration) {
	t.idleTimeout.Store(int64(d))
}

// Sweep destroys every mailbox whose lastActivity predates now-idleTimeout,
// returning, for each one destroyed, any occupants that must be force-closed
// by the caller (a mailbox swept while still occupied — nobody ever
// detached it, it simply never saw enough activity). Sweep is a no-op when
// idleTimeout is zero.
func (t *Table) Sweep() map[ID][]ClientID {
	idleTimeout := t.IdleTimeout()
	if idleTimeout <= 0 {
		return nil
	}

	deadline := t.now().Add(-idleTimeout)

	t.mu.Lock()
	var expired []ID
	for id, box := range t.mailboxes {
		if box.lastActivity.Before(deadline) {
			expired = append(expired, id)
		}
	}

	killed := make(map[ID][]ClientID, len(expired))
	for _, id := range expired {
		box := t.mailboxes[id]
		survivors := box.occupants()
		delete(t.mailboxes, id)
		t.ids.release(id)
		if len(survivors) > 0 {
			killed[id] = survivors
		}
	}
	t.mu.Unlock()

	for _, id := range expired {
		t.events.MailboxDestroyed(id)
	}
	return killed
}

// Len reports the number of currently live mailboxes (used for the
// active_mailboxes gauge at startup/inspection time; the gauge itself is
// driven by the Events callbacks, not by polling this method).
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.mailboxes)
}
