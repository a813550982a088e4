package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/fx"
)

// Module provides the HTTP transport and starts/stops it with the fx app.
var Module = fx.Module("transport-http",
	fx.Provide(NewServers),
	fx.Invoke(func(lc fx.Lifecycle, servers *Servers, logger *slog.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				errCh := make(chan error, len(servers.servers))
				servers.Start(errCh)
				select {
				case err := <-errCh:
					return fmt.Errorf("transport-http: %w", err)
				case <-time.After(200 * time.Millisecond):
					logger.Info("http transport listening")
					return nil
				}
			},
			OnStop: func(ctx context.Context) error {
				return servers.Shutdown(ctx)
			},
		})
	}),
)
