package client

import (
	"testing"

	"github.com/nplate/relay/internal/domain/mailbox"
)

func TestRegistryAddFindRemove(t *testing.T) {
	r := NewRegistry(nil)

	c := r.NewClient()
	if _, ok := r.Find(c.ID()); !ok {
		t.Fatalf("expected to find registered client")
	}

	r.Remove(c.ID())
	if _, ok := r.Find(c.ID()); ok {
		t.Fatalf("expected client to be gone after Remove")
	}
}

func TestClientIDsAreMonotonicAndUnique(t *testing.T) {
	r := NewRegistry(nil)
	seen := make(map[ID]struct{})
	for i := 0; i < 1000; i++ {
		c := r.NewClient()
		if _, dup := seen[c.ID()]; dup {
			t.Fatalf("duplicate client ID: %d", c.ID())
		}
		seen[c.ID()] = struct{}{}
	}
}

func TestKillIsIdempotent(t *testing.T) {
	r := NewRegistry(nil)
	c := r.NewClient()

	c.Kill()
	c.Kill()
	c.Kill()

	select {
	case <-c.Killed():
	default:
		t.Fatalf("expected killed channel to be closed")
	}
}

func TestSendAfterCloseIsHarmless(t *testing.T) {
	c := newClient(1)
	c.CloseOutbound()

	// Must not panic or block.
	c.Send(mailbox.Frame{Kind: mailbox.FrameText, Payload: []byte("x")})

	if _, ok := c.Recv(make(chan struct{})); ok {
		t.Fatalf("expected no frames from a closed queue")
	}
}

func TestMailboxIDSetOnce(t *testing.T) {
	c := newClient(1)
	c.SetMailboxID(42)
	c.SetMailboxID(99)

	id, ok := c.MailboxID()
	if !ok || id != 42 {
		t.Fatalf("expected mailbox ID to stick at first value 42, got %v (ok=%v)", id, ok)
	}
}

func TestRegistryAllSnapshotsCurrentClients(t *testing.T) {
	r := NewRegistry(nil)
	a := r.NewClient()
	b := r.NewClient()

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(all))
	}

	r.Remove(a.ID())
	if len(r.All()) != 1 {
		t.Fatalf("expected 1 client after removal")
	}
	_ = b
}
