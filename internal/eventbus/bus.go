package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// topic is the single in-process topic lifecycle events travel on. There is
// exactly one producer (the core, via [Bus.Publish]) and any number of
// subscribers; this is deliberately not wired to any network transport —
// cross-process mailbox sharing is out of scope (spec.md section 1).
const topic = "mailbox.lifecycle"

// Bus fans out lifecycle events to in-process subscribers using Watermill's
// in-memory gochannel pub/sub. Publishing never blocks the caller: events
// are handed to a background goroutine over a bounded channel, and that
// goroutine — not the publishing core operation — absorbs any backpressure
// from a slow Watermill subscriber.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
	ingest chan Event

	// closeMu guards closed/ingest against the publish-after-close race: a
	// handler's cleanup path can still be calling Publish (e.g. a hijacked
	// /ws connection draining its own shutdown, untracked by
	// http.Server.Shutdown) after the fx graph starts tearing the bus down.
	closeMu sync.RWMutex
	closed  bool
}

// New constructs a Bus. The gochannel pub/sub is configured with a modest
// per-subscriber output buffer and does not wait for subscriber acks, so a
// slow subscriber never blocks the publisher; the only drop point is
// Publish, which discards the new event when the ingest buffer is full.
func New(logger *slog.Logger) *Bus {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            256,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewSlogLogger(logger),
	)

	b := &Bus{
		pubsub: pubsub,
		logger: logger,
		ingest: make(chan Event, 1024),
	}
	go b.run()
	return b
}

// Publish enqueues ev for delivery. It never blocks: a full ingest buffer
// means the event is dropped and logged at debug level, matching the
// "fire-and-forget" contract lifecycle events have with the core. A Publish
// arriving after Close is a silent no-op rather than a send on a closed
// channel — callers (e.g. ConnectionHandler cleanup) are not sequenced
// against bus shutdown.
func (b *Bus) Publish(ev Event) {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	if b.closed {
		return
	}
	select {
	case b.ingest <- ev:
	default:
		b.logger.Debug("eventbus: ingest buffer full, dropping event", "kind", ev.Kind)
	}
}

func (b *Bus) run() {
	for ev := range b.ingest {
		payload, err := json.Marshal(ev)
		if err != nil {
			b.logger.Error("eventbus: marshal failed", "err", err)
			continue
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := b.pubsub.Publish(topic, msg); err != nil {
			b.logger.Debug("eventbus: publish failed", "err", err)
		}
	}
}

// Subscribe returns a channel of decoded events for the given subscriber
// name. Each call creates an independent subscription — every subscriber
// sees every event, matching the fan-out the metrics sink and the admin
// recent-activity ring both need.
func (b *Bus) Subscribe(ctx context.Context, name string) (<-chan Event, error) {
	msgs, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 256)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				b.logger.Error("eventbus: decode failed", "subscriber", name, "err", err)
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close releases the underlying pub/sub. Safe to call more than once; only
// the first call closes ingest, so a Publish racing Close either lands
// before this lock or observes closed and returns without touching the
// channel.
func (b *Bus) Close() error {
	b.closeMu.Lock()
	already := b.closed
	b.closed = true
	b.closeMu.Unlock()
	if already {
		return nil
	}

	close(b.ingest)
	return b.pubsub.Close()
}
