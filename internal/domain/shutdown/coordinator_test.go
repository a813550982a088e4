package shutdown

import (
	"testing"
	"time"
)

type fakeKillable struct{ killed bool }

func (f *fakeKillable) Kill() { f.killed = true }

func TestStartShutdownClosesDoneOnce(t *testing.T) {
	c := New(time.Millisecond)

	select {
	case <-c.Done():
		t.Fatalf("Done should not be closed before StartShutdown")
	default:
	}

	c.StartShutdown()
	c.StartShutdown() // must not panic on double-close

	select {
	case <-c.Done():
	default:
		t.Fatalf("expected Done to be closed after StartShutdown")
	}
}

func TestKillAllKillsEveryClient(t *testing.T) {
	c := New(time.Microsecond)
	a, b := &fakeKillable{}, &fakeKillable{}

	c.KillAll([]Killable{a, b})

	if !a.killed || !b.killed {
		t.Fatalf("expected both clients killed, got a=%v b=%v", a.killed, b.killed)
	}
}
