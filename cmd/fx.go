package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/nplate/relay/config"
	"github.com/nplate/relay/internal/admin"
	"github.com/nplate/relay/internal/domain/client"
	"github.com/nplate/relay/internal/domain/mailbox"
	"github.com/nplate/relay/internal/domain/shutdown"
	"github.com/nplate/relay/internal/eventbus"
	wshandler "github.com/nplate/relay/internal/handler/ws"
	"github.com/nplate/relay/internal/metrics"
	transporthttp "github.com/nplate/relay/internal/transport/http"
	"github.com/nplate/relay/infra/logging"
	"go.uber.org/fx"
)

// shutdownHandles is what Run needs after app.Start to drive the
// double-SIGTERM graceful shutdown (spec.md section 4.4): the coordinator
// to signal, and a live registry snapshot to walk.
type shutdownHandles struct {
	Coordinator *shutdown.Coordinator
	Registry    *client.Registry
}

// NewApp assembles the relay's fx graph: every module from
// infra/logging down through internal/transport/http, wired from the one
// resolved *config.Config. It also returns the handles Run needs to drive
// the graceful kill-all walk on the first termination signal.
func NewApp(cfg *config.Config) (*fx.App, *shutdownHandles) {
	handles := &shutdownHandles{}
	app := fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			provideLoggingConfig,
			provideMailboxConfig,
			provideAdminConfig,
			provideTransportConfig,
			provideMailboxEvents,
			provideClientEvents,
		),
		logging.Module,
		eventbus.Module,
		mailbox.Module,
		client.Module,
		shutdown.Module,
		metrics.Module,
		admin.Module,
		wshandler.Module,
		transporthttp.Module,
		fx.Invoke(wireIdleSweepToKill),
		fx.Invoke(wireMailboxTimeoutHotReload),
		fx.Populate(&handles.Coordinator, &handles.Registry),
	)
	return app, handles
}

func provideLoggingConfig(cfg *config.Config) logging.Config {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	return logging.Config{
		FilePath:       os.Getenv("LOG_FILE"),
		Level:          level,
		OTLPBridgeName: "relay",
	}
}

func provideMailboxConfig(cfg *config.Config) mailbox.Config {
	return mailbox.Config{
		MaxOpenMailboxes: cfg.MaxOpenMailboxes,
		MailboxTimeout:   cfg.MailboxTimeout(),
	}
}

func provideAdminConfig(cfg *config.Config) admin.Config {
	return admin.Config{Capacity: admin.DefaultCapacity}
}

func provideTransportConfig(cfg *config.Config) transporthttp.Config {
	return transporthttp.Config{Port: cfg.Port, MetricsPort: cfg.MetricsPort}
}

func provideMailboxEvents(bus *eventbus.Bus) mailbox.Events {
	return eventbus.MailboxAdapter{Bus: bus}
}

func provideClientEvents(bus *eventbus.Bus) client.Events {
	return eventbus.ClientAdapter{Bus: bus}
}

// wireIdleSweepToKill closes the idle-mailbox-sweep loop: survivors of a
// timed-out mailbox are killed the same way Detach-triggered survivors are
// (spec.md section 4.3, cleanup step 1), without the mailbox package
// importing the client package.
func wireIdleSweepToKill(table *mailbox.Table, registry *client.Registry, logger *slog.Logger) {
	table.OnSweep(func(id mailbox.ID, survivors []mailbox.ClientID) {
		for _, survivor := range survivors {
			logger.Info("idle mailbox swept, killing survivor", "mailbox_id", id, "client_id", survivor)
			registry.Kill(client.ID(survivor))
		}
	})
}

// wireMailboxTimeoutHotReload starts the CONFIG_FILE watcher (a no-op if
// CONFIG_FILE is unset) that lets MAILBOX_TIMEOUT_SEC be live-reloaded
// without a restart, per SPEC_FULL.md section 6.
func wireMailboxTimeoutHotReload(table *mailbox.Table, logger *slog.Logger) error {
	return config.WatchMailboxTimeout(logger, func(d time.Duration) {
		logger.Info("mailbox idle timeout reloaded", "timeout", d)
		table.SetIdleTimeout(d)
	})
}
