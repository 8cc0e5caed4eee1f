package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gameportal/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// Snapshot is the persisted form of a session. Stores keep it as a JSON blob.
type Snapshot struct {
	ID          string         `json:"id"`
	Settings    GameSettings   `json:"settings"`
	Board       engine.Board   `json:"board"`
	ToMove      engine.Cell    `json:"to_move"`
	Status      GameStatus     `json:"status"`
	WinningLine []int          `json:"winning_line"`
	History     []HistoryEntry `json:"history"`
	Closed      bool           `json:"closed"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Result struct {
	SessionID  string            `json:"session_id"`
	Kind       engine.GameKind   `json:"kind"`
	Difficulty engine.Difficulty `json:"difficulty"`
	Outcome    GameStatus        `json:"outcome"`
	Moves      int               `json:"moves"`
	FinishedAt time.Time         `json:"finished_at"`
}

type StatsRow struct {
	Kind       engine.GameKind   `json:"kind"`
	Difficulty engine.Difficulty `json:"difficulty"`
	BotWins    int               `json:"bot_wins"`
	HumanWins  int               `json:"human_wins"`
	Draws      int               `json:"draws"`
}

// ListSnapshots implementations return every decodable snapshot; rows that
// fail to decode are reported as a joined error wrapping ErrCorruptSnapshot.
type Store interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	LoadSnapshot(ctx context.Context, id string) (Snapshot, error)
	ListSnapshots(ctx context.Context) ([]Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error
	RecordResult(ctx context.Context, result Result) error
	Stats(ctx context.Context) ([]StatsRow, error)
	Close() error
}

// NewStoreFromConfig opens the store selected by cfg.Store and returns its name.
func NewStoreFromConfig(cfg Config) (Store, string, error) {
	switch cfg.Store {
	case StoreMemory:
		store, err := NewMemoryStore(cfg.SnapshotPath)
		if err != nil {
			return nil, "", err
		}
		return store, StoreMemory, nil
	case StoreSQLite:
		store, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, "", err
		}
		return store, StoreSQLite, nil
	case StorePostgres:
		store, err := NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, "", err
		}
		return store, StorePostgres, nil
	default:
		return nil, "", fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func encodeSnapshot(snapshot Snapshot) ([]byte, error) {
	return json.Marshal(snapshot)
}

func decodeSnapshot(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	return snapshot, nil
}

// tallyResult folds one outcome into the matching stats row.
func tallyResult(rows map[[2]uint8]*StatsRow, kind engine.GameKind, difficulty engine.Difficulty, outcome GameStatus, count int) {
	key := [2]uint8{uint8(kind), uint8(difficulty)}
	row, ok := rows[key]
	if !ok {
		row = &StatsRow{Kind: kind, Difficulty: difficulty}
		rows[key] = row
	}
	switch outcome {
	case StatusBotWon:
		row.BotWins += count
	case StatusHumanWon:
		row.HumanWins += count
	case StatusDraw:
		row.Draws += count
	}
}

func sortedStats(rows map[[2]uint8]*StatsRow) []StatsRow {
	out := make([]StatsRow, 0, len(rows))
	for kind := engine.Caro; kind <= engine.TicTacToe; kind++ {
		for difficulty := engine.Easy; difficulty <= engine.Hard; difficulty++ {
			if row, ok := rows[[2]uint8{uint8(kind), uint8(difficulty)}]; ok {
				out = append(out, *row)
			}
		}
	}
	return out
}
