package eventbus

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestBus() *Bus {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := b.Subscribe(ctx, "test")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	b.Publish(Event{Kind: MailboxCreated, Subject: 42})

	select {
	case ev := <-events:
		if ev.Kind != MailboxCreated || ev.Subject != 42 {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestMultipleSubscribersEachReceiveEvent(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := b.Subscribe(ctx, "a")
	if err != nil {
		t.Fatalf("Subscribe a: %v", err)
	}
	c, err := b.Subscribe(ctx, "c")
	if err != nil {
		t.Fatalf("Subscribe c: %v", err)
	}

	b.Publish(Event{Kind: ClientConnected, Subject: 7})

	for _, ch := range []<-chan Event{a, c} {
		select {
		case ev := <-ch:
			if ev.Kind != ClientConnected || ev.Subject != 7 {
				t.Fatalf("unexpected event: %+v", ev)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestPublishNeverBlocksWhenNoSubscribers(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2000; i++ {
			b.Publish(Event{Kind: MailboxDestroyed, Subject: uint64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with no subscribers attached")
	}
}
