package client

import (
	"sync"
	"sync/atomic"
)

// Events receives lifecycle notifications from a [Registry]. Implementations
// must not block and must not call back into the registry.
type Events interface {
	ClientConnected(id ID)
	ClientDisconnected(id ID)
}

type noopEvents struct{}

func (noopEvents) ClientConnected(ID)    {}
func (noopEvents) ClientDisconnected(ID) {}

// Registry is the process-wide, concurrent mapping from [ID] to [Client].
// Reads (Find, All) vastly outnumber writes (Add, Remove) once a connection
// is established, so it is backed by sync.Map rather than a mutex-guarded
// map — the same choice the teacher's Hub makes for its per-user cells.
type Registry struct {
	clients sync.Map // ID -> *Client
	counter atomic.Uint64
	events  Events
}

// NewRegistry constructs an empty client registry.
func NewRegistry(events Events) *Registry {
	if events == nil {
		events = noopEvents{}
	}
	return &Registry{events: events}
}

// NewClient allocates a fresh [ID] and registers a new [Client] under it.
// A duplicate ID here would be a programming error — the counter is the
// registry's own monotonic source, so it cannot happen.
func (r *Registry) NewClient() *Client {
	id := ID(r.counter.Add(1))
	c := newClient(id)
	r.clients.Store(id, c)
	r.events.ClientConnected(id)
	return c
}

// Remove deregisters id. Removing an ID that was never added, or was
// already removed, is a no-op rather than a panic (spec.md section 9:
// convert "impossible state" assertions into explicit, non-fatal handling).
func (r *Registry) Remove(id ID) {
	if _, ok := r.clients.LoadAndDelete(id); ok {
		r.events.ClientDisconnected(id)
	}
}

// Find returns the client registered under id, if any.
func (r *Registry) Find(id ID) (*Client, bool) {
	v, ok := r.clients.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Client), true
}

// All returns a snapshot of every currently registered client. Used only
// during graceful shutdown's kill-all walk (spec.md section 4.4).
func (r *Registry) All() []*Client {
	var out []*Client
	r.clients.Range(func(_, v any) bool {
		out = append(out, v.(*Client))
		return true
	})
	return out
}

// Len reports the number of currently registered clients.
func (r *Registry) Len() int {
	n := 0
	r.clients.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Kill looks up id and requests termination, ignoring an absent client —
// it may already have disconnected on its own, which is not an error.
func (r *Registry) Kill(id ID) {
	if c, ok := r.Find(id); ok {
		c.Kill()
	}
}
