package mailbox

import "sync"

// ID is an opaque 30-bit mailbox identifier. It is never reused while the
// mailbox it names is live, and MAY be reused once that mailbox is destroyed.
type ID uint32

// idMask keeps allocated values inside the 30-bit range (0 ... 2^30-1).
const idMask = 0x3FFFFFFF

// firstID matches the reference allocator: near-sequential IDs early on,
// well clear of small values a client might guess.
const firstID = 1_000_001

// idAllocator hands out unique [ID]s from a monotonic counter, masked to 30
// bits, retrying on collision with a still-live ID. It is guarded by its own
// RWMutex so that existence checks ([idAllocator.exists]) don't contend with
// unrelated mailbox creation.
type idAllocator struct {
	mu      sync.RWMutex
	counter uint32
	used    map[ID]struct{}
}

func newIDAllocator() *idAllocator {
	return &idAllocator{
		counter: firstID,
		used:    make(map[ID]struct{}),
	}
}

// allocate reserves and returns a fresh, unique ID.
func (a *idAllocator) allocate() ID {
	a.mu.Lock()
	defer a.mu.Unlock()

	for {
		id := ID(a.counter & idMask)
		a.counter++
		if _, taken := a.used[id]; !taken {
			a.used[id] = struct{}{}
			return id
		}
	}
}

// exists reports whether id currently names a live mailbox.
func (a *idAllocator) exists(id ID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.used[id]
	return ok
}

// release frees id for potential reuse by a later allocate call.
func (a *idAllocator) release(id ID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.used, id)
}

// count reports the number of currently live IDs, used to enforce the
// configured maximum-open-mailboxes cap.
func (a *idAllocator) count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.used)
}
