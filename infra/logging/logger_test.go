package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestLevelDefaultsToInfo(t *testing.T) {
	cfg := Config{}
	if cfg.level() != slog.LevelInfo {
		t.Fatalf("expected default level Info, got %v", cfg.level())
	}
}

func TestLevelParsesDebug(t *testing.T) {
	cfg := Config{Level: "debug"}
	if cfg.level() != slog.LevelDebug {
		t.Fatalf("expected Debug level, got %v", cfg.level())
	}
}

func TestNewHonorsConfiguredLevel(t *testing.T) {
	logger := New(Config{Level: "warn"})
	if logger.Handler().Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected Info to be disabled when Level is warn")
	}
	if !logger.Handler().Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("expected Warn to be enabled when Level is warn")
	}
}
