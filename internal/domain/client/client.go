package client

import (
	"sync"
	"sync/atomic"

	"github.com/nplate/relay/internal/domain/mailbox"
)

// ID is a process-local, monotonically increasing client identifier,
// starting at 1. It is never reused within a process lifetime.
type ID = mailbox.ClientID

// Client is one peer connection's bookkeeping: its ID, an outbound queue
// drained by its own ConnectionHandler, a one-shot kill signal, and the
// MailboxID it eventually attaches to. It is cheap to copy (a thin pointer
// handle) — holding one does not keep the connection alive, it only permits
// enqueuing a frame and requesting termination (spec.md section 4.2).
type Client struct {
	id ID

	outbound *outboundQueue

	killOnce sync.Once
	killed   chan struct{}

	mailboxOnce sync.Once
	mailboxID   mailbox.ID
	mailboxSet  atomic.Bool
}

func newClient(id ID) *Client {
	return &Client{
		id:       id,
		outbound: newOutboundQueue(),
		killed:   make(chan struct{}),
	}
}

// ID returns the client's identifier.
func (c *Client) ID() ID { return c.id }

// Send enqueues a frame for delivery on this client's socket. It never
// blocks and never fails — delivery to an already-exited handler is simply
// dropped once that handler closes the queue.
func (c *Client) Send(f mailbox.Frame) {
	c.outbound.push(f)
}

// Recv blocks until a frame is available to write to the socket, the queue
// closes, or done fires (typically the handler's own exit signal).
func (c *Client) Recv(done <-chan struct{}) (mailbox.Frame, bool) {
	return c.outbound.pop(done)
}

// CloseOutbound closes the outbound queue; subsequent Recv calls return
// ok=false once drained. Called once, during cleanup.
func (c *Client) CloseOutbound() {
	c.outbound.close()
}

// Kill requests that this client's ConnectionHandler exit its I/O loop and
// run cleanup. Idempotent: calling it any number of times after the first
// has the same effect as calling it once (spec.md section 8).
func (c *Client) Kill() {
	c.killOnce.Do(func() { close(c.killed) })
}

// Killed returns the channel that closes once Kill has been called.
func (c *Client) Killed() <-chan struct{} {
	return c.killed
}

// MailboxID returns the mailbox this client has attached to, if any.
func (c *Client) MailboxID() (mailbox.ID, bool) {
	if !c.mailboxSet.Load() {
		return 0, false
	}
	return c.mailboxID, true
}

// SetMailboxID records the mailbox this client attached to. It may only be
// called once per connection (invariant C2); subsequent calls are no-ops,
// so a programming error that tries to re-attach a connection never
// silently corrupts the recorded mailbox.
func (c *Client) SetMailboxID(id mailbox.ID) {
	c.mailboxOnce.Do(func() {
		c.mailboxID = id
		c.mailboxSet.Store(true)
	})
}
