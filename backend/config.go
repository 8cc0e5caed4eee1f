package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gameportal/engine"
)

const (
	MinCaroBoardSize = 5
	MaxCaroBoardSize = 30
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	ListenAddr        string            `json:"listen_addr"`
	LogLevel          string            `json:"log_level"`
	Store             string            `json:"store"`
	SQLitePath        string            `json:"sqlite_path"`
	DatabaseURL       string            `json:"-"`
	SnapshotPath      string            `json:"snapshot_path"`
	BotDelayMs        int               `json:"bot_delay_ms"`
	Seed              uint64            `json:"seed"`
	DefaultDifficulty engine.Difficulty `json:"default_difficulty"`
	CaroBoardSize     int               `json:"caro_board_size"`
	CaroWinLength     int               `json:"caro_win_length"`
	MaxSessions       int               `json:"max_sessions"`
	TickIntervalMs    int               `json:"tick_interval_ms"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:        ":8080",
		LogLevel:          "info",
		Store:             StoreMemory,
		SQLitePath:        "data/portal.db",
		SnapshotPath:      "/cache_logs/sessions.gob",
		BotDelayMs:        300,
		DefaultDifficulty: engine.Medium,
		CaroBoardSize:     15,
		CaroWinLength:     5,
		MaxSessions:       512,
		TickIntervalMs:    50,
	}
}

// ConfigFromEnv overlays PORTAL_* variables (and DATABASE_URL) on the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.ListenAddr = getenv("PORTAL_ADDR", cfg.ListenAddr)
	cfg.LogLevel = getenv("PORTAL_LOG_LEVEL", cfg.LogLevel)
	cfg.Store = strings.ToLower(getenv("PORTAL_STORE", cfg.Store))
	cfg.SQLitePath = getenv("PORTAL_SQLITE_PATH", cfg.SQLitePath)
	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SnapshotPath = getenv("PORTAL_SNAPSHOT_PATH", cfg.SnapshotPath)
	cfg.BotDelayMs = getenvInt("PORTAL_BOT_DELAY_MS", cfg.BotDelayMs)
	cfg.CaroBoardSize = getenvInt("PORTAL_CARO_SIZE", cfg.CaroBoardSize)
	cfg.CaroWinLength = getenvInt("PORTAL_CARO_WIN", cfg.CaroWinLength)
	cfg.MaxSessions = getenvInt("PORTAL_MAX_SESSIONS", cfg.MaxSessions)
	if raw := strings.TrimSpace(os.Getenv("PORTAL_SEED")); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("PORTAL_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	if raw := strings.TrimSpace(os.Getenv("PORTAL_DEFAULT_DIFFICULTY")); raw != "" {
		difficulty, err := engine.ParseDifficulty(raw)
		if err != nil {
			return cfg, fmt.Errorf("PORTAL_DEFAULT_DIFFICULTY: %w", err)
		}
		cfg.DefaultDifficulty = difficulty
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("store %q needs DATABASE_URL", c.Store)
		}
	default:
		return fmt.Errorf("invalid store %q (supported: %s, %s, %s)", c.Store, StoreMemory, StoreSQLite, StorePostgres)
	}
	if c.BotDelayMs < 0 {
		return fmt.Errorf("bot_delay_ms must be >= 0")
	}
	if c.CaroBoardSize < MinCaroBoardSize || c.CaroBoardSize > MaxCaroBoardSize {
		return fmt.Errorf("caro_board_size must be within %d..%d, got %d", MinCaroBoardSize, MaxCaroBoardSize, c.CaroBoardSize)
	}
	if c.CaroWinLength < 3 || c.CaroWinLength > c.CaroBoardSize {
		return fmt.Errorf("caro_win_length must be within 3..%d, got %d", c.CaroBoardSize, c.CaroWinLength)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions must be > 0")
	}
	if !c.DefaultDifficulty.Valid() {
		return fmt.Errorf("invalid default difficulty %d", c.DefaultDifficulty)
	}
	return nil
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
