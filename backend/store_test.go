package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gameportal/engine"
)

func sampleSnapshot(t *testing.T, id string) Snapshot {
	t.Helper()
	controller := NewGameController(id, ticTacToeSettings(engine.Medium), engine.NewSeededSelector(11), 0)
	controller.StartGame(ticTacToeSettings(engine.Medium))
	if applied, reason := controller.ApplyHumanMove(Move{Index: 4}); !applied {
		t.Fatalf("move rejected: %s", reason)
	}
	return controller.Snapshot()
}

func sampleResults() []Result {
	now := time.Now().UTC()
	return []Result{
		{SessionID: "a", Kind: engine.Caro, Difficulty: engine.Hard, Outcome: StatusBotWon, Moves: 17, FinishedAt: now},
		{SessionID: "b", Kind: engine.Caro, Difficulty: engine.Hard, Outcome: StatusHumanWon, Moves: 23, FinishedAt: now.Add(time.Second)},
		{SessionID: "c", Kind: engine.Caro, Difficulty: engine.Hard, Outcome: StatusBotWon, Moves: 11, FinishedAt: now.Add(2 * time.Second)},
		{SessionID: "d", Kind: engine.TicTacToe, Difficulty: engine.Easy, Outcome: StatusDraw, Moves: 9, FinishedAt: now.Add(3 * time.Second)},
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.LoadSnapshot(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	first := sampleSnapshot(t, "first")
	second := sampleSnapshot(t, "second")
	second.UpdatedAt = first.UpdatedAt.Add(time.Second)
	if err := store.SaveSnapshot(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.SaveSnapshot(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	loaded, err := store.LoadSnapshot(ctx, "first")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Board.Equal(first.Board) || loaded.Board.At(4) != engine.X {
		t.Fatalf("expected board round trip, got\n%s", loaded.Board)
	}
	if loaded.Settings != first.Settings {
		t.Fatalf("expected settings %+v, got %+v", first.Settings, loaded.Settings)
	}
	if loaded.Status != StatusRunning || loaded.ToMove != engine.O || len(loaded.History) != 1 {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}

	first.Closed = true
	if err := store.SaveSnapshot(ctx, first); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	list, err := store.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(list))
	}
	if list[0].ID != "first" || !list[0].Closed {
		t.Fatalf("expected first snapshot updated in place, got %+v", list[0])
	}

	if err := store.DeleteSnapshot(ctx, "second"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteSnapshot(ctx, "second"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second delete, got %v", err)
	}

	for _, result := range sampleResults() {
		if err := store.RecordResult(ctx, result); err != nil {
			t.Fatalf("record result: %v", err)
		}
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := []StatsRow{
		{Kind: engine.Caro, Difficulty: engine.Hard, BotWins: 2, HumanWins: 1},
		{Kind: engine.TicTacToe, Difficulty: engine.Easy, Draws: 1},
	}
	if len(stats) != len(want) {
		t.Fatalf("expected %d stats rows, got %+v", len(want), stats)
	}
	for i := range want {
		if stats[i] != want[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, want[i], stats[i])
		}
	}
}

func TestMemoryStore(t *testing.T) {
	store, err := NewMemoryStore("")
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	exerciseStore(t, store)
}

func TestMemoryStoreReloadsGobDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "sessions.gob")
	store, err := NewMemoryStore(path)
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	ctx := context.Background()
	snapshot := sampleSnapshot(t, "persisted")
	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.RecordResult(ctx, sampleResults()[0]); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewMemoryStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	loaded, err := reloaded.LoadSnapshot(ctx, "persisted")
	if err != nil {
		t.Fatalf("load after reload: %v", err)
	}
	if !loaded.Board.Equal(snapshot.Board) {
		t.Fatalf("expected board to survive reload")
	}
	stats, err := reloaded.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 1 || stats[0].BotWins != 1 {
		t.Fatalf("expected one bot win after reload, got %+v", stats)
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer store.Close()
	exerciseStore(t, store)
}

func TestSessionManagerRestoresOpenSessions(t *testing.T) {
	store, err := NewMemoryStore("")
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	cfg := DefaultConfig()
	cfg.BotDelayMs = 0
	cfg.Seed = 5
	ctx := context.Background()

	manager := NewSessionManager(store, nil, cfg)
	open, err := manager.Create(ctx, ticTacToeSettings(engine.Hard))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	closed, err := manager.Create(ctx, ticTacToeSettings(engine.Hard))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if applied, reason := open.ApplyHumanMove(Move{Index: 0}); !applied {
		t.Fatalf("move rejected: %s", reason)
	}
	manager.Persist(ctx, open)
	if err := manager.Close(ctx, closed.ID()); err != nil {
		t.Fatalf("close: %v", err)
	}
	manager.Shutdown(ctx)

	restoredManager := NewSessionManager(store, nil, cfg)
	restored, err := restoredManager.Restore(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored != 1 {
		t.Fatalf("expected 1 open session restored, got %d", restored)
	}
	controller, err := restoredManager.Get(open.ID())
	if err != nil {
		t.Fatalf("get restored: %v", err)
	}
	if controller.State().Board.At(0) != engine.X {
		t.Fatalf("expected restored board to keep the human move")
	}
	if _, err := restoredManager.Get(closed.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected closed session to stay closed, got %v", err)
	}
}

func TestSessionManagerRestoreSkipsCorruptSnapshots(t *testing.T) {
	store, err := NewMemoryStore("")
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	ctx := context.Background()
	good := sampleSnapshot(t, "good")
	if err := store.SaveSnapshot(ctx, good); err != nil {
		t.Fatalf("save: %v", err)
	}
	store.snapshots["bad"] = []byte(`{"id":"bad","board":[]}`)

	list, err := store.ListSnapshots(ctx)
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
	}
	if len(list) != 1 || list[0].ID != "good" {
		t.Fatalf("expected the good snapshot to be listed, got %+v", list)
	}

	cfg := DefaultConfig()
	cfg.BotDelayMs = 0
	manager := NewSessionManager(store, nil, cfg)
	restored, err := manager.Restore(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored != 1 {
		t.Fatalf("expected 1 session restored, got %d", restored)
	}
	if _, err := manager.Get("good"); err != nil {
		t.Fatalf("expected good session to be live: %v", err)
	}
}

func TestSQLiteListSkipsCorruptRows(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()
	if err := store.SaveSnapshot(ctx, sampleSnapshot(t, "good")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.db.ExecContext(ctx, `
INSERT INTO game_sessions (id, kind, status, snapshot, updated_at_ms)
VALUES ('bad', 'caro', 'running', '{"id":"bad","board":[]}', 0)`); err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}
	list, err := store.ListSnapshots(ctx)
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
	}
	if len(list) != 1 || list[0].ID != "good" {
		t.Fatalf("expected only the good snapshot, got %+v", list)
	}
}

func TestSessionManagerLimit(t *testing.T) {
	store, _ := NewMemoryStore("")
	cfg := DefaultConfig()
	cfg.MaxSessions = 1
	manager := NewSessionManager(store, nil, cfg)
	if _, err := manager.Create(context.Background(), ticTacToeSettings(engine.Easy)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := manager.Create(context.Background(), ticTacToeSettings(engine.Easy)); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("expected ErrTooManySessions, got %v", err)
	}
}
