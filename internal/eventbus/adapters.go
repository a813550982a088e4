package eventbus

import (
	"time"

	"github.com/nplate/relay/internal/domain/client"
	"github.com/nplate/relay/internal/domain/mailbox"
)

// MailboxAdapter satisfies mailbox.Events by publishing onto a [Bus]. It is
// defined here, not in the mailbox package, so that package never needs to
// import eventbus — it only needs to know about the small Events interface
// it declares itself (spec.md section 9's cyclic-reference resolution
// applies equally to this observability seam).
type MailboxAdapter struct {
	Bus *Bus
}

func (a MailboxAdapter) MailboxCreated(id mailbox.ID) {
	a.Bus.Publish(Event{Kind: MailboxCreated, Subject: uint64(id), OccurredAtUnixNano: time.Now().UnixNano()})
}

func (a MailboxAdapter) MailboxDestroyed(id mailbox.ID) {
	a.Bus.Publish(Event{Kind: MailboxDestroyed, Subject: uint64(id), OccurredAtUnixNano: time.Now().UnixNano()})
}

// ClientAdapter satisfies client.Events the same way.
type ClientAdapter struct {
	Bus *Bus
}

func (a ClientAdapter) ClientConnected(id client.ID) {
	a.Bus.Publish(Event{Kind: ClientConnected, Subject: uint64(id), OccurredAtUnixNano: time.Now().UnixNano()})
}

func (a ClientAdapter) ClientDisconnected(id client.ID) {
	a.Bus.Publish(Event{Kind: ClientDisconnected, Subject: uint64(id), OccurredAtUnixNano: time.Now().UnixNano()})
}
