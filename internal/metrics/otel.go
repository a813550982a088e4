package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// otelSink realizes [Sink] on top of an OTel Meter: an Int64UpDownCounter
// per gauge (active_mailboxes, active_clients) and an Int64Counter per
// monotone counter (mailbox_created, mailbox_destroyed, client_connect,
// client_disconnect) — the names spec.md section 4.5 assigns them.
type otelSink struct {
	ctx context.Context

	activeMailboxes metric.Int64UpDownCounter
	activeClients   metric.Int64UpDownCounter

	mailboxCreated     metric.Int64Counter
	mailboxDestroyed   metric.Int64Counter
	clientConnected    metric.Int64Counter
	clientDisconnected metric.Int64Counter
}

// NewOTel builds a [Sink] backed by the instruments of meter. The caller
// owns the MeterProvider's lifecycle (construction and shutdown happen in
// Module, see module.go).
func NewOTel(meter metric.Meter) (Sink, error) {
	activeMailboxes, err := meter.Int64UpDownCounter("active_mailboxes",
		metric.WithDescription("number of currently open mailboxes"))
	if err != nil {
		return nil, fmt.Errorf("metrics: active_mailboxes: %w", err)
	}

	activeClients, err := meter.Int64UpDownCounter("active_clients",
		metric.WithDescription("number of currently connected clients"))
	if err != nil {
		return nil, fmt.Errorf("metrics: active_clients: %w", err)
	}

	mailboxCreated, err := meter.Int64Counter("mailbox_created",
		metric.WithDescription("total mailboxes created"))
	if err != nil {
		return nil, fmt.Errorf("metrics: mailbox_created: %w", err)
	}

	mailboxDestroyed, err := meter.Int64Counter("mailbox_destroyed",
		metric.WithDescription("total mailboxes destroyed"))
	if err != nil {
		return nil, fmt.Errorf("metrics: mailbox_destroyed: %w", err)
	}

	clientConnected, err := meter.Int64Counter("client_connect",
		metric.WithDescription("total client connections"))
	if err != nil {
		return nil, fmt.Errorf("metrics: client_connect: %w", err)
	}

	clientDisconnected, err := meter.Int64Counter("client_disconnect",
		metric.WithDescription("total client disconnections"))
	if err != nil {
		return nil, fmt.Errorf("metrics: client_disconnect: %w", err)
	}

	return &otelSink{
		ctx:                context.Background(),
		activeMailboxes:    activeMailboxes,
		activeClients:      activeClients,
		mailboxCreated:     mailboxCreated,
		mailboxDestroyed:   mailboxDestroyed,
		clientConnected:    clientConnected,
		clientDisconnected: clientDisconnected,
	}, nil
}

func (s *otelSink) MailboxCreated() {
	s.activeMailboxes.Add(s.ctx, 1)
	s.mailboxCreated.Add(s.ctx, 1)
}

func (s *otelSink) MailboxDestroyed() {
	s.activeMailboxes.Add(s.ctx, -1)
	s.mailboxDestroyed.Add(s.ctx, 1)
}

func (s *otelSink) ClientConnected() {
	s.activeClients.Add(s.ctx, 1)
	s.clientConnected.Add(s.ctx, 1)
}

func (s *otelSink) ClientDisconnected() {
	s.activeClients.Add(s.ctx, -1)
	s.clientDisconnected.Add(s.ctx, 1)
}
