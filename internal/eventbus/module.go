package eventbus

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
)

// Module provides the process-wide [Bus] and closes it on shutdown.
var Module = fx.Module("eventbus",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, b *Bus, logger *slog.Logger) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return b.Close()
			},
		})
	}),
)
