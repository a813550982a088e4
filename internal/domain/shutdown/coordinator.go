// Package shutdown implements the cross-cutting signals every
// ConnectionHandler selects on to know the server is going away
// (spec.md section 4.4). It owns none of the mailbox/client state; it only
// broadcasts "stop" and, for the graceful path, walks a list of clients
// asking each one to stop on its own.
package shutdown

import (
	"sync"
	"time"
)

// Killable is anything the walker can ask to stop. *client.Client satisfies
// this without shutdown needing to import the client package.
type Killable interface {
	Kill()
}

// Coordinator exposes the broadcast-drop signal and the graceful kill-all
// walk described in spec.md section 4.4. It is safe for concurrent use.
type Coordinator struct {
	once      sync.Once
	broadcast chan struct{}

	walkInterval time.Duration
}

// New constructs a Coordinator. walkInterval is the inter-kill yield used by
// KillAll to avoid starving other goroutines while walking a large
// registry; the reference implementation uses 1ms.
func New(walkInterval time.Duration) *Coordinator {
	if walkInterval <= 0 {
		walkInterval = time.Millisecond
	}
	return &Coordinator{
		broadcast:    make(chan struct{}),
		walkInterval: walkInterval,
	}
}

// Done returns the channel every ConnectionHandler selects on; it closes
// exactly once, when shutdown begins.
func (c *Coordinator) Done() <-chan struct{} {
	return c.broadcast
}

// StartShutdown signals every handler that the server is going away. Safe
// to call more than once; only the first call has any effect.
func (c *Coordinator) StartShutdown() {
	c.once.Do(func() { close(c.broadcast) })
}

// KillAll requests termination of every client in the snapshot, yielding
// briefly between calls so a large registry doesn't starve other
// goroutines mid-walk. Kill is idempotent, so this is safe to race with
// handlers that are already exiting on their own. The caller takes the
// registry snapshot itself (see awaitShutdown in cmd/cmd.go) so this package
// need not depend on the client registry's concrete type.
func (c *Coordinator) KillAll(clients []Killable) {
	for _, k := range clients {
		k.Kill()
		time.Sleep(c.walkInterval)
	}
}
