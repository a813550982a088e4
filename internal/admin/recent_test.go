package admin

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nplate/relay/internal/eventbus"
)

func TestRecentCapsAtConfiguredSize(t *testing.T) {
	r := NewRecent(2)
	r.record(Activity{Kind: "a", Subject: 1})
	r.record(Activity{Kind: "b", Subject: 2})
	r.record(Activity{Kind: "c", Subject: 3})

	got := r.Snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(got), got)
	}
	if got[0].Subject != 2 || got[1].Subject != 3 {
		t.Fatalf("expected oldest entry evicted, got %+v", got)
	}
}

func TestFollowRecordsPublishedEvents(t *testing.T) {
	bus := eventbus.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer bus.Close()

	r := NewRecent(DefaultCapacity)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := Follow(ctx, bus, r); err != nil {
		t.Fatalf("Follow: %v", err)
	}

	bus.Publish(eventbus.Event{Kind: eventbus.MailboxCreated, Subject: 99})

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := r.Snapshot()
		if len(snap) == 1 && snap[0].Kind == string(eventbus.MailboxCreated) && snap[0].Subject == 99 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for recorded activity, got %+v", snap)
		}
		time.Sleep(time.Millisecond)
	}
}
