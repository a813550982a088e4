package eventbus

// Kind identifies which core lifecycle transition an [Event] reports.
type Kind string

const (
	MailboxCreated     Kind = "mailbox_created"
	MailboxDestroyed   Kind = "mailbox_destroyed"
	ClientConnected    Kind = "client_connect"
	ClientDisconnected Kind = "client_disconnect"
)

// Event is a small, immutable lifecycle notification. It carries no
// payload data — only enough to identify what happened and when — so
// losing one is an observability gap, never a correctness issue (spec.md
// section 4.5's counters/gauges are the only consumers that must not
// drift, and the metrics bridge derives them from the stream of Kind
// values alone, not from anything in Subject).
type Event struct {
	Kind               Kind
	Subject            uint64 // mailbox ID or client ID, depending on Kind
	OccurredAtUnixNano int64
}
