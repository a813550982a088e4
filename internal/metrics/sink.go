package metrics

// Sink is the counter/gauge surface spec.md section 4.5 requires: two
// monotone counters and one up/down gauge per lifecycle pair (mailbox,
// client). Both the core packages (via the eventbus) and tests depend on
// this interface rather than the concrete OTel types in otel.go.
type Sink interface {
	MailboxCreated()
	MailboxDestroyed()
	ClientConnected()
	ClientDisconnected()
}

// noop discards every observation.
type noop struct{}

func (noop) MailboxCreated()     {}
func (noop) MailboxDestroyed()   {}
func (noop) ClientConnected()    {}
func (noop) ClientDisconnected() {}

// Noop returns a [Sink] that discards everything.
func Noop() Sink { return noop{} }
