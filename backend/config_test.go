package main

import (
	"testing"

	"gameportal/engine"
)

func TestConfigFromEnvOverlaysDefaults(t *testing.T) {
	t.Setenv("PORTAL_ADDR", ":9090")
	t.Setenv("PORTAL_STORE", "SQLite")
	t.Setenv("PORTAL_BOT_DELAY_MS", "0")
	t.Setenv("PORTAL_SEED", "12345")
	t.Setenv("PORTAL_DEFAULT_DIFFICULTY", "hard")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.Store != StoreSQLite {
		t.Fatalf("unexpected addr/store %q/%q", cfg.ListenAddr, cfg.Store)
	}
	if cfg.BotDelayMs != 0 || cfg.Seed != 12345 || cfg.DefaultDifficulty != engine.Hard {
		t.Fatalf("unexpected overlay %+v", cfg)
	}
}

func TestConfigFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("PORTAL_DEFAULT_DIFFICULTY", "impossible")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatalf("expected unknown difficulty to fail")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate: %v", err)
	}
	cfg.Store = StorePostgres
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected postgres without DATABASE_URL to fail")
	}
	cfg = DefaultConfig()
	cfg.CaroWinLength = cfg.CaroBoardSize + 1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected win length above board size to fail")
	}
}
