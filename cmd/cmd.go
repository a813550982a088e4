package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nplate/relay/config"
	"github.com/nplate/relay/internal/domain/client"
	"github.com/nplate/relay/internal/domain/shutdown"
	"github.com/urfave/cli/v2"
)

const (
	ServiceName      = "relay"
	ServiceNamespace = "nplate"
)

var (
	version        = "0.0.0"
	commit         = "hash"
	commitDate     = time.Now().String()
	branch         = "branch"
	buildTimestamp = ""
)

func Run() error {
	app := &cli.App{
		Name:    ServiceName,
		Usage:   "lightweight WebSocket rendezvous relay",
		Version: fmt.Sprintf("%s (commit %s, branch %s, built %s, commit date %s)", version, commit, branch, buildTimestamp, commitDate),
		Commands: []*cli.Command{
			serverCmd(),
		},
	}

	return app.Run(os.Args)
}

func serverCmd() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "run the relay",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			app, handles := NewApp(cfg)
			if err := app.Start(c.Context); err != nil {
				return err
			}

			awaitShutdown(handles)

			slog.Info("shutting down")
			stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return app.Stop(stopCtx)
		},
	}
}

// awaitShutdown implements the two-stage termination signal handling of
// the reference implementation (original_source/src/main.rs,
// src/server/mod.rs): the first SIGTERM starts a graceful walk that kills
// every connected client with a short yield between each, giving its
// partner a chance to observe Detach and drop cleanly. SIGINT, or a second
// SIGTERM received before the walk finishes, means terminate immediately —
// these exit the process directly rather than returning, so the caller's
// graceful app.Stop (with its own timeout) never runs for those paths.
// Returning normally is only the graceful-walk-completed case.
func awaitShutdown(handles *shutdownHandles) {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	first := <-sigs
	if first == os.Interrupt {
		slog.Warn("SIGINT received, terminating immediately")
		os.Exit(128 + int(syscall.SIGINT))
	}

	handles.Coordinator.StartShutdown()

	walkDone := make(chan struct{})
	go func() {
		handles.Coordinator.KillAll(killables(handles.Registry.All()))
		close(walkDone)
	}()

	select {
	case <-walkDone:
	case <-sigs:
		slog.Warn("second termination signal received, exiting without waiting for kill-all walk")
		os.Exit(128 + int(syscall.SIGTERM))
	}
}

func killables(clients []*client.Client) []shutdown.Killable {
	out := make([]shutdown.Killable, len(clients))
	for i, c := range clients {
		out[i] = c
	}
	return out
}
