// Package config loads the relay's runtime tunables from the environment,
// matching the names and defaults of the original Rust service (PORT,
// METRICS_PORT, MAX_OPEN_MAILBOXES, MAILBOX_TIMEOUT_SEC).
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the resolved, validated set of runtime tunables.
type Config struct {
	Port              int
	MetricsPort       int
	MaxOpenMailboxes  int
	MailboxTimeoutSec int
}

// MailboxTimeout returns MailboxTimeoutSec as a time.Duration.
func (c Config) MailboxTimeout() time.Duration {
	return time.Duration(c.MailboxTimeoutSec) * time.Second
}

// CoServeMetrics reports whether PORT and METRICS_PORT are equal, meaning
// /ws and /metrics are served from the same listener (SPEC_FULL.md section
// 6's resolved Open Question).
func (c Config) CoServeMetrics() bool {
	return c.Port == c.MetricsPort
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("metrics_port", 8080)
	v.SetDefault("max_open_mailboxes", 100_000_000)
	v.SetDefault("mailbox_timeout_sec", 60)
	v.AutomaticEnv()
	return v
}

// Load resolves configuration from the environment, and, if CONFIG_FILE is
// set, also reads that YAML file. A value set in the environment takes
// precedence over the file; the file takes precedence over the defaults.
func Load() (*Config, error) {
	v := newViper()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:              v.GetInt("port"),
		MetricsPort:       v.GetInt("metrics_port"),
		MaxOpenMailboxes:  v.GetInt("max_open_mailboxes"),
		MailboxTimeoutSec: v.GetInt("mailbox_timeout_sec"),
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid PORT %d", cfg.Port)
	}
	if cfg.MetricsPort <= 0 || cfg.MetricsPort > 65535 {
		return nil, fmt.Errorf("config: invalid METRICS_PORT %d", cfg.MetricsPort)
	}
	if cfg.MaxOpenMailboxes <= 0 {
		return nil, fmt.Errorf("config: invalid MAX_OPEN_MAILBOXES %d", cfg.MaxOpenMailboxes)
	}
	if cfg.MailboxTimeoutSec < 0 {
		return nil, fmt.Errorf("config: invalid MAILBOX_TIMEOUT_SEC %d", cfg.MailboxTimeoutSec)
	}
	return cfg, nil
}

// WatchMailboxTimeout calls onChange with the current mailbox_timeout_sec
// value every time CONFIG_FILE changes on disk. Port changes in the watched
// file are logged and otherwise ignored — they require a process restart
// (SPEC_FULL.md section 6). No-op if CONFIG_FILE is unset.
func WatchMailboxTimeout(logger *slog.Logger, onChange func(time.Duration)) error {
	v := newViper()
	path := v.GetString("config_file")
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	previousPort := v.GetInt("port")
	previousMetricsPort := v.GetInt("metrics_port")

	v.OnConfigChange(func(e fsnotify.Event) {
		if v.GetInt("port") != previousPort || v.GetInt("metrics_port") != previousMetricsPort {
			logger.Warn("config: port change in config file requires a process restart to take effect",
				"file", e.Name)
		}
		onChange(time.Duration(v.GetInt("mailbox_timeout_sec")) * time.Second)
	})
	v.WatchConfig()
	return nil
}
