package mailbox

import (
	"context"
	"time"

	"go.uber.org/fx"
)

// Module provides a [Table] wired from configuration and starts its idle
// sweeper for the lifetime of the application.
var Module = fx.Module("mailbox",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, t *Table) {
		stop := make(chan struct{})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go t.runSweeper(stop)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				close(stop)
				return nil
			},
		})
	}),
)

// Config carries the subset of application configuration the mailbox table
// needs; constructed by the config package and provided into the fx graph.
type Config struct {
	MaxOpenMailboxes int
	MailboxTimeout   time.Duration
}

// New constructs a [Table] from Config and an [Events] sink.
func New(cfg Config, events Events) *Table {
	return NewTable(
		WithMaxOpenMailboxes(cfg.MaxOpenMailboxes),
		WithIdleTimeout(cfg.MailboxTimeout),
		WithEvents(events),
	)
}

// pollInterval is how often runSweeper checks IdleTimeout and, if it is
// positive, runs Sweep. It is fixed rather than derived from IdleTimeout
// because the timeout can change at runtime (config.WatchMailboxTimeout),
// unlike the one-time construction-time value this replaced.
const pollInterval = time.Second

// runSweeper periodically destroys idle mailboxes until stop is closed.
// Force-closing any survivors Sweep reports is left to the OnSweep callback
// (wired in cmd/fx.go to kill them through the client registry) —
// runSweeper itself only has access to the table, not the client registry,
// so it hands results to onSweep if one is registered.
func (t *Table) runSweeper(stop <-chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if t.IdleTimeout() <= 0 {
				continue
			}
			expired := t.Sweep()
			if t.onSweep != nil {
				for id, survivors := range expired {
					t.onSweep(id, survivors)
				}
			}
		}
	}
}

// OnSweep registers the callback invoked for every mailbox Sweep destroys
// while occupants remained attached — normally wired to kill those clients
// the same way Detach-triggered survivors are killed (spec.md section 4.3,
// cleanup step 1).
func (t *Table) OnSweep(fn func(id ID, survivors []ClientID)) {
	t.onSweep = fn
}
