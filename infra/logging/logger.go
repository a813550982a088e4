// Package logging builds the process-wide structured logger: a slog.Logger
// writing JSON lines to a lumberjack-rotated file (and, when configured, an
// OTLP log endpoint via the otelslog bridge).
package logging

import (
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where log output goes and how it rotates.
type Config struct {
	// FilePath, if set, routes logs to a rotated file instead of stdout.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Level is the minimum slog level emitted ("debug", "info", "warn", "error").
	Level string

	// OTLPBridgeName, if set, fans every log record out to the global OTel
	// LoggerProvider in addition to the local sink (used when the
	// deployment has an OTLP collector configured).
	OTLPBridgeName string
}

func (c Config) level() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the process logger per cfg.
func New(cfg Config) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.FilePath != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		}
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.level()})

	if cfg.OTLPBridgeName == "" {
		return slog.New(handler)
	}

	bridge := otelslog.NewHandler(cfg.OTLPBridgeName, otelslog.WithLoggerProvider(global.GetLoggerProvider()))
	return slog.New(fanoutHandler{local: handler, bridge: bridge})
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
