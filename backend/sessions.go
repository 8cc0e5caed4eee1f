package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gameportal/engine"
)

var ErrTooManySessions = errors.New("too many sessions")

// SessionManager owns the live sessions and writes every change through to the store.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*GameController

	store    Store
	logger   *zap.Logger
	seed     uint64
	seeded   uint64
	botDelay time.Duration
	max      int
}

func NewSessionManager(store Store, logger *zap.Logger, cfg Config) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		sessions: make(map[string]*GameController),
		store:    store,
		logger:   logger,
		seed:     cfg.Seed,
		botDelay: time.Duration(cfg.BotDelayMs) * time.Millisecond,
		max:      cfg.MaxSessions,
	}
}

// newSelector gives every session its own source so seeded runs stay reproducible.
func (m *SessionManager) newSelector() *engine.Selector {
	if m.seed == 0 {
		return engine.NewSelector(nil)
	}
	m.seeded++
	return engine.NewSeededSelector(m.seed + m.seeded)
}

func (m *SessionManager) Create(ctx context.Context, settings GameSettings) (*GameController, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	if len(m.sessions) >= m.max {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: limit %d", ErrTooManySessions, m.max)
	}
	id := uuid.NewString()
	controller := NewGameController(id, settings, m.newSelector(), m.botDelay)
	controller.StartGame(settings)
	m.sessions[id] = controller
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", id),
		zap.String("kind", settings.Kind.String()),
		zap.String("difficulty", settings.Difficulty.String()),
		zap.Int("board_size", settings.BoardSize),
	)
	m.Persist(ctx, controller)
	return controller, nil
}

func (m *SessionManager) Get(id string) (*GameController, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	controller, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return controller, nil
}

func (m *SessionManager) IDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close removes a session and persists its final snapshot marked closed.
func (m *SessionManager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	controller, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	controller.Stop()
	m.recordResult(ctx, controller)
	snapshot := controller.Snapshot()
	snapshot.Closed = true
	if err := m.store.SaveSnapshot(ctx, snapshot); err != nil {
		return err
	}
	m.logger.Info("session closed", zap.String("session_id", id), zap.String("status", snapshot.Status.String()))
	return nil
}

// Persist saves the session snapshot and records a finished game once.
func (m *SessionManager) Persist(ctx context.Context, controller *GameController) {
	if err := m.store.SaveSnapshot(ctx, controller.Snapshot()); err != nil {
		m.logger.Warn("failed to save session snapshot", zap.Error(err), zap.String("session_id", controller.ID()))
	}
	m.recordResult(ctx, controller)
}

func (m *SessionManager) recordResult(ctx context.Context, controller *GameController) {
	result, ok := controller.TakeFinishedResult()
	if !ok {
		return
	}
	if err := m.store.RecordResult(ctx, result); err != nil {
		m.logger.Warn("failed to record result", zap.Error(err), zap.String("session_id", controller.ID()))
		return
	}
	m.logger.Info("game finished",
		zap.String("session_id", result.SessionID),
		zap.String("outcome", result.Outcome.String()),
		zap.Int("moves", result.Moves),
	)
}

// TickAll advances every session and returns the ones where a bot moved.
func (m *SessionManager) TickAll(ctx context.Context) []*GameController {
	m.mu.RLock()
	controllers := make([]*GameController, 0, len(m.sessions))
	for _, controller := range m.sessions {
		controllers = append(controllers, controller)
	}
	m.mu.RUnlock()

	var moved []*GameController
	for _, controller := range controllers {
		if controller.Tick() {
			m.Persist(ctx, controller)
			moved = append(moved, controller)
		}
	}
	return moved
}

// Restore reloads open sessions from the store. Broken snapshots are skipped.
func (m *SessionManager) Restore(ctx context.Context) (int, error) {
	snapshots, err := m.store.ListSnapshots(ctx)
	if err != nil {
		if !errors.Is(err, ErrCorruptSnapshot) {
			return 0, err
		}
		m.logger.Warn("skipping undecodable session snapshots", zap.Error(err))
	}
	restored := 0
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, snapshot := range snapshots {
		if snapshot.Closed || len(m.sessions) >= m.max {
			continue
		}
		controller, err := RestoreGameController(snapshot, m.newSelector(), m.botDelay)
		if err != nil {
			m.logger.Warn("skipping session snapshot", zap.Error(err), zap.String("session_id", snapshot.ID))
			continue
		}
		m.sessions[snapshot.ID] = controller
		restored++
	}
	return restored, nil
}

// Shutdown stops every bot worker and saves the final snapshots.
func (m *SessionManager) Shutdown(ctx context.Context) {
	m.mu.RLock()
	controllers := make([]*GameController, 0, len(m.sessions))
	for _, controller := range m.sessions {
		controllers = append(controllers, controller)
	}
	m.mu.RUnlock()
	for _, controller := range controllers {
		controller.Stop()
		m.Persist(ctx, controller)
	}
}
