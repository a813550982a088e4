package metrics

import (
	"context"

	"github.com/nplate/relay/internal/eventbus"
)

// Bridge drives a [Sink] from the lifecycle event stream, decoupling the
// metrics instruments from the core packages entirely (spec.md section
// 4.5's counters are "updated in MailboxTable"/registry conceptually, but
// mechanically they are updated here, downstream of the bus).
func Bridge(ctx context.Context, bus *eventbus.Bus, sink Sink) error {
	events, err := bus.Subscribe(ctx, "metrics")
	if err != nil {
		return err
	}

	go func() {
		for ev := range events {
			switch ev.Kind {
			case eventbus.MailboxCreated:
				sink.MailboxCreated()
			case eventbus.MailboxDestroyed:
				sink.MailboxDestroyed()
			case eventbus.ClientConnected:
				sink.ClientConnected()
			case eventbus.ClientDisconnected:
				sink.ClientDisconnected()
			}
		}
	}()
	return nil
}
