package admin

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nplate/relay/internal/eventbus"
)

// Activity is one entry in the recent-activity ring: a denormalized,
// read-only view of a lifecycle event for operators. It never refers back
// to a live Mailbox or Client — holding one past its natural lifetime must
// not keep anything alive (spec.md section 4.8).
type Activity struct {
	Kind       string    `json:"kind"`
	Subject    uint64    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DefaultCapacity is the default size of the [Recent] ring.
const DefaultCapacity = 256

// Recent is a bounded view of the most recent lifecycle activity, fed
// by the eventbus. Reads take a snapshot copy; nothing here mutates core
// state.
type Recent struct {
	mu    sync.Mutex
	cache *lru.Cache[uint64, Activity]
	seq   uint64
}

// NewRecent constructs an empty ring of the given capacity (DefaultCapacity
// if capacity <= 0).
func NewRecent(capacity int) *Recent {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[uint64, Activity](capacity)
	if err != nil {
		// Only returns an error for a non-positive size, already guarded above.
		panic(err)
	}
	return &Recent{cache: cache}
}

func (r *Recent) record(a Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.cache.Add(r.seq, a)
}

// Snapshot returns every currently retained activity, oldest first.
func (r *Recent) Snapshot() []Activity {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := r.cache.Keys()
	out := make([]Activity, 0, len(keys))
	for _, k := range keys {
		if a, ok := r.cache.Peek(k); ok {
			out = append(out, a)
		}
	}
	return out
}

// Follow subscribes to bus and records every event into r until ctx is
// done.
func Follow(ctx context.Context, bus *eventbus.Bus, r *Recent) error {
	events, err := bus.Subscribe(ctx, "admin-recent")
	if err != nil {
		return err
	}
	go func() {
		for ev := range events {
			r.record(Activity{
				Kind:       string(ev.Kind),
				Subject:    ev.Subject,
				OccurredAt: time.Unix(0, ev.OccurredAtUnixNano),
			})
		}
	}()
	return nil
}
