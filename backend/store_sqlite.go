package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gameportal/engine"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS game_sessions (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    status TEXT NOT NULL,
    snapshot TEXT NOT NULL,
    updated_at_ms INTEGER NOT NULL
)`); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS game_results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    difficulty TEXT NOT NULL,
    outcome TEXT NOT NULL,
    moves INTEGER NOT NULL,
    finished_at_ms INTEGER NOT NULL
)`)
	return err
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snapshot Snapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO game_sessions (id, kind, status, snapshot, updated_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    status = excluded.status,
    snapshot = excluded.snapshot,
    updated_at_ms = excluded.updated_at_ms
`, snapshot.ID, snapshot.Settings.Kind.String(), snapshot.Status.String(), string(data), snapshot.UpdatedAt.UnixMilli())
	return err
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context, id string) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM game_sessions WHERE id = ?`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrSessionNotFound
		}
		return Snapshot{}, err
	}
	return decodeSnapshot([]byte(raw))
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT snapshot FROM game_sessions ORDER BY updated_at_ms ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Snapshot
	var decodeErrs []error
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		snapshot, err := decodeSnapshot([]byte(raw))
		if err != nil {
			decodeErrs = append(decodeErrs, err)
			continue
		}
		out = append(out, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, errors.Join(decodeErrs...)
}

func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `DELETE FROM game_sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLiteStore) RecordResult(ctx context.Context, result Result) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO game_results (session_id, kind, difficulty, outcome, moves, finished_at_ms)
VALUES (?, ?, ?, ?, ?, ?)
`, result.SessionID, result.Kind.String(), result.Difficulty.String(), result.Outcome.String(), result.Moves, result.FinishedAt.UnixMilli())
	return err
}

func (s *SQLiteStore) Stats(ctx context.Context) ([]StatsRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
SELECT kind, difficulty, outcome, COUNT(*)
FROM game_results
GROUP BY kind, difficulty, outcome
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStats(rows)
}

// scanStats reads (kind, difficulty, outcome, count) rows into a tally.
func scanStats(rows *sql.Rows) ([]StatsRow, error) {
	tally := make(map[[2]uint8]*StatsRow)
	for rows.Next() {
		var kindRaw, difficultyRaw, outcomeRaw string
		var count int
		if err := rows.Scan(&kindRaw, &difficultyRaw, &outcomeRaw, &count); err != nil {
			return nil, err
		}
		kind, err := engine.ParseGameKind(kindRaw)
		if err != nil {
			return nil, err
		}
		difficulty, err := engine.ParseDifficulty(difficultyRaw)
		if err != nil {
			return nil, err
		}
		outcome, err := ParseGameStatus(outcomeRaw)
		if err != nil {
			return nil, err
		}
		tallyResult(tally, kind, difficulty, outcome, count)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sortedStats(tally), nil
}
