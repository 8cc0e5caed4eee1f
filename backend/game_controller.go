package main

import (
	"fmt"
	"sync"
	"time"

	"gameportal/engine"
)

type GameController struct {
	mu        sync.Mutex
	id        string
	game      Game
	createdAt time.Time
	updatedAt time.Time
}

func NewGameController(id string, settings GameSettings, selector *engine.Selector, botDelay time.Duration) *GameController {
	now := time.Now()
	return &GameController{
		id:        id,
		game:      NewGame(settings, selector, botDelay),
		createdAt: now,
		updatedAt: now,
	}
}

func (gc *GameController) ID() string {
	return gc.id
}

func (gc *GameController) ApplyHumanMove(move Move) (bool, string) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if gc.game.State().Status == StatusRunning && !gc.game.CurrentPlayerIsHuman() {
		return false, "not human turn"
	}
	applied, reason := gc.game.TryApplyMove(move)
	if applied {
		gc.updatedAt = time.Now()
	}
	return applied, reason
}

func (gc *GameController) Tick() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	applied := gc.game.Tick()
	if applied {
		gc.updatedAt = time.Now()
	}
	return applied
}

func (gc *GameController) State() GameState {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.State()
}

func (gc *GameController) Settings() GameSettings {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Settings()
}

func (gc *GameController) History() MoveHistory {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History()
}

func (gc *GameController) CurrentTurnStartedAtMs() int64 {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.TurnStartedAtMs()
}

func (gc *GameController) LatestHistoryEntry() (HistoryEntry, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History().Last()
}

func (gc *GameController) BotThinking() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.BotThinking()
}

func (gc *GameController) Hint() (Move, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Hint()
}

func (gc *GameController) StartGame(settings GameSettings) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Reset(settings)
	gc.game.Start()
	gc.updatedAt = time.Now()
}

// Restart begins a new game with the current settings.
func (gc *GameController) Restart() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Reset(gc.game.Settings())
	gc.game.Start()
	gc.updatedAt = time.Now()
}

func (gc *GameController) Stop() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Stop()
}

// TakeFinishedResult returns the outcome of a finished game exactly once.
func (gc *GameController) TakeFinishedResult() (Result, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	status, ok := gc.game.TakeOutcome()
	if !ok {
		return Result{}, false
	}
	settings := gc.game.Settings()
	return Result{
		SessionID:  gc.id,
		Kind:       settings.Kind,
		Difficulty: settings.Difficulty,
		Outcome:    status,
		Moves:      gc.game.History().Size(),
		FinishedAt: time.Now().UTC(),
	}, true
}

func (gc *GameController) Snapshot() Snapshot {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	state := gc.game.State()
	return Snapshot{
		ID:          gc.id,
		Settings:    gc.game.Settings(),
		Board:       state.Board,
		ToMove:      state.ToMove,
		Status:      state.Status,
		WinningLine: state.WinningLine,
		History:     gc.game.History().All(),
		CreatedAt:   gc.createdAt,
		UpdatedAt:   gc.updatedAt,
	}
}

// RestoreGameController replays a stored snapshot into a live session.
func RestoreGameController(snapshot Snapshot, selector *engine.Selector, botDelay time.Duration) (*GameController, error) {
	if err := snapshot.Settings.Validate(); err != nil {
		return nil, err
	}
	gc := NewGameController(snapshot.ID, snapshot.Settings, selector, botDelay)
	if ok, reason := gc.game.Replay(snapshot.Settings, snapshot.History); !ok {
		return nil, fmt.Errorf("replay session %s: %s", snapshot.ID, reason)
	}
	if !gc.game.State().Board.Equal(snapshot.Board) {
		return nil, fmt.Errorf("replay session %s: board mismatch", snapshot.ID)
	}
	if gc.game.State().Status.Finished() {
		gc.game.reported = true
	}
	if !snapshot.CreatedAt.IsZero() {
		gc.createdAt = snapshot.CreatedAt
	}
	if !snapshot.UpdatedAt.IsZero() {
		gc.updatedAt = snapshot.UpdatedAt
	}
	return gc, nil
}
