package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gameportal/engine"
)

func main() {
	logger, err := buildLogger(getenv("ARENA_LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := configFromEnv()
	if err != nil {
		logger.Fatal("invalid arena config", zap.Error(err))
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	started := time.Now()
	logger.Info("arena starting",
		zap.String("kind", cfg.Kind.String()),
		zap.Int("board_size", cfg.BoardSize),
		zap.Int("win_length", cfg.WinLength),
		zap.Int("games_per_pair", cfg.Games),
		zap.Uint64("seed", cfg.Seed),
	)
	report, err := runArena(sigCtx, cfg, logger)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("arena interrupted", zap.Int("pairs_finished", len(report.Pairs)))
			return
		}
		logger.Fatal("arena failed", zap.Error(err))
	}
	for rank, standing := range report.Standings {
		logger.Info("standing",
			zap.Int("rank", rank+1),
			zap.String("difficulty", standing.Difficulty.String()),
			zap.Float64("elo", standing.Elo),
		)
	}
	if out := getenv("ARENA_OUT", ""); out != "" {
		if err := writeReport(out, report); err != nil {
			logger.Fatal("write report failed", zap.Error(err), zap.String("path", out))
		}
		logger.Info("report written", zap.String("path", out))
	}
	logger.Info("arena finished", zap.Duration("elapsed", time.Since(started)))
}

func configFromEnv() (arenaConfig, error) {
	kind, err := engine.ParseGameKind(getenv("ARENA_KIND", "caro"))
	if err != nil {
		return arenaConfig{}, err
	}
	cfg := arenaConfig{
		Games: getenvInt("ARENA_GAMES", 20),
		Kind:  kind,
		EloK:  getenvFloat("ARENA_ELO_K", 20),
		Seed:  uint64(time.Now().UnixNano()),
	}
	if kind == engine.TicTacToe {
		cfg.BoardSize = engine.TicTacToeSize
		cfg.WinLength = engine.TicTacToeWinCondition
	} else {
		cfg.BoardSize = getenvInt("ARENA_BOARD_SIZE", 15)
		cfg.WinLength = getenvInt("ARENA_WIN_LENGTH", 5)
	}
	if raw := getenv("ARENA_SEED", ""); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return arenaConfig{}, fmt.Errorf("ARENA_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	if cfg.EloK <= 0 {
		cfg.EloK = 20
	}
	return cfg, cfg.validate()
}

func writeReport(path string, report arenaReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := getenv(key, "")
	if value == "" {
		return fallback
	}
	var parsed int
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	value := getenv(key, "")
	if value == "" {
		return fallback
	}
	var parsed float64
	if _, err := fmt.Sscanf(value, "%f", &parsed); err != nil {
		return fallback
	}
	return parsed
}
