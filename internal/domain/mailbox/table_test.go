package mailbox

import (
	"sync"
	"testing"
)

func textFrame(s string) Frame {
	return Frame{Kind: FrameText, Payload: []byte(s)}
}

func TestCreateFindAttachRoundTrip(t *testing.T) {
	tbl := NewTable()

	id, err := tbl.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := tbl.Attach(id, 1); err != nil {
		t.Fatalf("Attach peer A: %v", err)
	}

	found, err := tbl.Find(uint32(id))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if err := tbl.Attach(found, 2); err != nil {
		t.Fatalf("Attach peer B: %v", err)
	}

	if tbl.Len() != 1 {
		t.Fatalf("expected 1 live mailbox, got %d", tbl.Len())
	}
}

func TestThirdConnectIsBusy(t *testing.T) {
	tbl := NewTable()
	id, _ := tbl.Create()
	_ = tbl.Attach(id, 1)
	_ = tbl.Attach(id, 2)

	if _, err := tbl.Find(uint32(id)); err != ErrBusy {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestConnectToUnknownIsNotFound(t *testing.T) {
	tbl := NewTable()
	if _, err := tbl.Find(999999999); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBufferedPreludeOrdering(t *testing.T) {
	tbl := NewTable()
	id, _ := tbl.Create()
	_ = tbl.Attach(id, 1)

	for _, m := range []string{"m1", "m2", "m3"} {
		if _, delivered := tbl.Send(id, 1, textFrame(m)); delivered {
			t.Fatalf("expected message to be buffered, not delivered")
		}
	}

	_ = tbl.Attach(id, 2)
	pending := tbl.TakePending(id, 2)
	if len(pending) != 3 {
		t.Fatalf("expected 3 buffered frames, got %d", len(pending))
	}
	for i, want := range []string{"m1", "m2", "m3"} {
		if string(pending[i].Payload) != want {
			t.Fatalf("frame %d: want %q got %q", i, want, pending[i].Payload)
		}
	}
}

func TestSendToOccupiedSlotDeliversImmediately(t *testing.T) {
	tbl := NewTable()
	id, _ := tbl.Create()
	_ = tbl.Attach(id, 1)
	_ = tbl.Attach(id, 2)

	to, delivered := tbl.Send(id, 1, textFrame("hi"))
	if !delivered || to != 2 {
		t.Fatalf("expected immediate delivery to client 2, got (%v, %v)", to, delivered)
	}

	// No residual buffering: attaching never auto-flushed, and TakePending
	// for the already-attached partner must now be empty (P1/P2).
	if pending := tbl.TakePending(id, 2); len(pending) != 0 {
		t.Fatalf("expected no buffered frames after direct delivery, got %d", len(pending))
	}
}

func TestDetachLastPeerDestroysMailbox(t *testing.T) {
	tbl := NewTable()
	id, _ := tbl.Create()
	_ = tbl.Attach(id, 1)

	survivors := tbl.Detach(id, 1)
	if len(survivors) != 0 {
		t.Fatalf("expected no survivors, got %v", survivors)
	}

	if _, err := tbl.Find(uint32(id)); err != ErrNotFound {
		t.Fatalf("expected destroyed mailbox to be NotFound, got %v", err)
	}
}

func TestDetachWithSurvivorReturnsPartner(t *testing.T) {
	tbl := NewTable()
	id, _ := tbl.Create()
	_ = tbl.Attach(id, 1)
	_ = tbl.Attach(id, 2)

	survivors := tbl.Detach(id, 1)
	if len(survivors) != 1 || survivors[0] != 2 {
		t.Fatalf("expected survivor [2], got %v", survivors)
	}

	// Mailbox is now closing: a subsequent attach attempt (e.g. a late
	// connect racing the detach) must fail even though a slot is free.
	if err := tbl.Attach(id, 3); err != ErrBusy {
		t.Fatalf("expected ErrBusy on closing mailbox, got %v", err)
	}
}

func TestCapacityExceeded(t *testing.T) {
	tbl := NewTable(WithMaxOpenMailboxes(1))
	if _, err := tbl.Create(); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := tbl.Create(); err != ErrCapacityExceeded {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestIDsNeverDuplicateUnderConcurrency(t *testing.T) {
	tbl := NewTable()
	const n = 500

	ids := make(chan ID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := tbl.Create()
			if err != nil {
				t.Error(err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[ID]struct{}, n)
	for id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate mailbox ID allocated: %d", id)
		}
		seen[id] = struct{}{}
	}
}

func TestEventsFireOnCreateAndDestroy(t *testing.T) {
	rec := &recordingEvents{}
	tbl := NewTable(WithEvents(rec))

	id, _ := tbl.Create()
	_ = tbl.Attach(id, 1)
	tbl.Detach(id, 1)

	if rec.created != 1 || rec.destroyed != 1 {
		t.Fatalf("expected 1 created and 1 destroyed event, got created=%d destroyed=%d", rec.created, rec.destroyed)
	}
}

type recordingEvents struct {
	mu        sync.Mutex
	created   int
	destroyed int
}

func (r *recordingEvents) MailboxCreated(ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *recordingEvents) MailboxDestroyed(ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyed++
}
