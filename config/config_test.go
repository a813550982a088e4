package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("METRICS_PORT", "")
	t.Setenv("MAX_OPEN_MAILBOXES", "")
	t.Setenv("MAILBOX_TIMEOUT_SEC", "")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default Port 8080, got %d", cfg.Port)
	}
	if cfg.MetricsPort != 8080 {
		t.Errorf("expected default MetricsPort 8080, got %d", cfg.MetricsPort)
	}
	if cfg.MaxOpenMailboxes != 100_000_000 {
		t.Errorf("expected default MaxOpenMailboxes 100000000, got %d", cfg.MaxOpenMailboxes)
	}
	if cfg.MailboxTimeoutSec != 60 {
		t.Errorf("expected default MailboxTimeoutSec 60, got %d", cfg.MailboxTimeoutSec)
	}
	if !cfg.CoServeMetrics() {
		t.Errorf("expected CoServeMetrics true when PORT == METRICS_PORT")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("METRICS_PORT", "9100")
	t.Setenv("MAX_OPEN_MAILBOXES", "10")
	t.Setenv("MAILBOX_TIMEOUT_SEC", "5")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9000 || cfg.MetricsPort != 9100 {
		t.Fatalf("unexpected ports: %+v", cfg)
	}
	if cfg.CoServeMetrics() {
		t.Errorf("expected CoServeMetrics false for distinct ports")
	}
	if cfg.MailboxTimeout().Seconds() != 5 {
		t.Errorf("expected MailboxTimeout 5s, got %v", cfg.MailboxTimeout())
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("PORT", "0")
	t.Setenv("METRICS_PORT", "8080")
	t.Setenv("MAX_OPEN_MAILBOXES", "100")
	t.Setenv("MAILBOX_TIMEOUT_SEC", "60")
	t.Setenv("CONFIG_FILE", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for PORT=0")
	}
}
