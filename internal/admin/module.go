package admin

import (
	"context"

	"github.com/nplate/relay/internal/eventbus"
	"go.uber.org/fx"
)

// Config controls the size of the recent-activity ring.
type Config struct {
	Capacity int
}

// Module provides a process-wide [Recent] ring wired to the eventbus.
var Module = fx.Module("admin",
	fx.Provide(func(cfg Config) *Recent { return NewRecent(cfg.Capacity) }),
	fx.Invoke(func(lc fx.Lifecycle, bus *eventbus.Bus, r *Recent) error {
		ctx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				cancel()
				return nil
			},
		})
		return Follow(ctx, bus, r)
	}),
)
