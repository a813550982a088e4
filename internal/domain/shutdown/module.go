package shutdown

import (
	"context"
	"time"

	"go.uber.org/fx"
)

// Module provides a process-wide [Coordinator] and calls StartShutdown
// automatically when the fx app stops, so graceful shutdown also covers
// `go.uber.org/fx`'s own OnStop ordering.
var Module = fx.Module("shutdown",
	fx.Provide(func() *Coordinator { return New(time.Millisecond) }),
	fx.Invoke(func(lc fx.Lifecycle, c *Coordinator) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				c.StartShutdown()
				return nil
			},
		})
	}),
)
