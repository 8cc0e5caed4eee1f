package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"gameportal/engine"
)

type StatusResponse struct {
	SessionID       string         `json:"session_id"`
	Settings        GameSettings   `json:"settings"`
	Board           engine.Board   `json:"board"`
	BoardSize       int            `json:"board_size"`
	NextPlayer      engine.Cell    `json:"next_player"`
	Winner          engine.Cell    `json:"winner"`
	Status          GameStatus     `json:"status"`
	WinningLine     []int          `json:"winning_line"`
	History         []HistoryEntry `json:"history"`
	BotThinking     bool           `json:"bot_thinking"`
	LastMessage     string         `json:"last_message,omitempty"`
	TurnStartedAtMs int64          `json:"turn_started_at_ms"`
}

type createSessionRequest struct {
	Kind        *engine.GameKind   `json:"kind"`
	BoardSize   *int               `json:"board_size"`
	WinLength   *int               `json:"win_length"`
	Difficulty  *engine.Difficulty `json:"difficulty"`
	HumanMark   *engine.Cell       `json:"human_mark"`
	HumanStarts *bool              `json:"human_starts"`
}

type engineMoveRequest struct {
	Kind       engine.GameKind   `json:"kind"`
	Board      engine.Board      `json:"board"`
	WinLength  int               `json:"win_length"`
	Bot        engine.Cell       `json:"bot"`
	Difficulty engine.Difficulty `json:"difficulty"`
}

type engineWinRequest struct {
	Board     engine.Board `json:"board"`
	Index     int          `json:"index"`
	WinLength int          `json:"win_length"`
}

type server struct {
	sessions *SessionManager
	hub      *Hub
	store    Store
	logger   *zap.Logger
}

func newRouter(s *server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/api/config", s.handleGetConfig)
	r.Post("/api/config", s.handleUpdateConfig)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSessionStatus)
			r.Delete("/", s.handleCloseSession)
			r.Post("/move", s.handleMove)
			r.Post("/reset", s.handleReset)
			r.Get("/hint", s.handleHint)
		})
	})

	r.Post("/api/engine/move", s.handleEngineMove)
	r.Post("/api/engine/win", s.handleEngineWin)
	r.Get("/api/stats", s.handleStats)

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(s.hub, s.sessions, s.logger, w, r)
	})
	return r
}

func (s *server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GetConfig())
}

// handleUpdateConfig replaces the runtime tunables. Listener and store
// settings only change on restart.
func (s *server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	current := GetConfig()
	update := current
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	update.ListenAddr = current.ListenAddr
	update.Store = current.Store
	update.SQLitePath = current.SQLitePath
	update.DatabaseURL = current.DatabaseURL
	update.SnapshotPath = current.SnapshotPath
	if err := update.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	configStore.Update(update)
	s.logger.Info("config updated", zap.String("default_difficulty", update.DefaultDifficulty.String()))
	writeJSON(w, http.StatusOK, update)
}

func (s *server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.sessions.IDs()})
}

func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload: " + err.Error()})
			return
		}
	}
	settings := payload.settings(GetConfig())
	controller, err := s.sessions.Create(r.Context(), settings)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrTooManySessions) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	status := controllerStatus(controller)
	s.hub.PublishReset(status)
	writeJSON(w, http.StatusCreated, status)
}

func (p createSessionRequest) settings(cfg Config) GameSettings {
	kind := engine.Caro
	if p.Kind != nil {
		kind = *p.Kind
	}
	settings := DefaultGameSettings(kind, cfg)
	if p.BoardSize != nil {
		settings.BoardSize = *p.BoardSize
	}
	if p.WinLength != nil {
		settings.WinLength = *p.WinLength
	}
	if p.Difficulty != nil {
		settings.Difficulty = *p.Difficulty
	}
	if p.HumanMark != nil {
		settings.HumanMark = *p.HumanMark
	}
	if p.HumanStarts != nil {
		settings.HumanStarts = *p.HumanStarts
	}
	return settings
}

func (s *server) session(w http.ResponseWriter, r *http.Request) (*GameController, bool) {
	controller, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return nil, false
	}
	return controller, true
}

func (s *server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, controllerStatus(controller))
}

func (s *server) handleMove(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.session(w, r)
	if !ok {
		return
	}
	var move Move
	if err := json.NewDecoder(r.Body).Decode(&move); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	applied, reason := controller.ApplyHumanMove(move)
	if !applied {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": reason})
		return
	}
	s.sessions.Persist(r.Context(), controller)
	s.publishMove(controller)
	writeJSON(w, http.StatusOK, controllerStatus(controller))
}

func (s *server) publishMove(controller *GameController) {
	if entry, ok := controller.LatestHistoryEntry(); ok {
		s.hub.PublishHistory(controller.ID(), entry)
	}
	s.hub.PublishStatus(controllerStatus(controller))
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.session(w, r)
	if !ok {
		return
	}
	controller.Restart()
	s.sessions.Persist(r.Context(), controller)
	status := controllerStatus(controller)
	s.hub.PublishReset(status)
	writeJSON(w, http.StatusOK, status)
}

func (s *server) handleHint(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.session(w, r)
	if !ok {
		return
	}
	move, ok := controller.Hint()
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no hint available"})
		return
	}
	s.hub.PublishHint(controller.ID(), move, controller.Settings().HumanMark)
	writeJSON(w, http.StatusOK, move)
}

func (s *server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Close(r.Context(), id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		s.logger.Error("close session failed", zap.Error(err), zap.String("session_id", id))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "close failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"closed": true, "session_id": id})
}

func (s *server) handleEngineMove(w http.ResponseWriter, r *http.Request) {
	var payload engineMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload: " + err.Error()})
		return
	}
	if payload.WinLength == 0 {
		payload.WinLength = defaultWinLength(payload.Kind, GetConfig())
	}
	req := engine.Request{
		Kind:         payload.Kind,
		Board:        payload.Board,
		WinCondition: payload.WinLength,
		Bot:          payload.Bot,
		Opponent:     payload.Bot.Opponent(),
		Difficulty:   payload.Difficulty,
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"index": engine.SelectMove(req)})
}

func (s *server) handleEngineWin(w http.ResponseWriter, r *http.Request) {
	var payload engineWinRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload: " + err.Error()})
		return
	}
	if payload.WinLength < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": engine.ErrInvalidWinCondition.Error()})
		return
	}
	line := engine.DetectWin(payload.Board, payload.Index, payload.WinLength)
	writeJSON(w, http.StatusOK, map[string][]int{"winning_line": line})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	rows, err := s.store.Stats(ctx)
	if err != nil {
		s.logger.Error("stats query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]StatsRow{"stats": rows})
}

func defaultWinLength(kind engine.GameKind, cfg Config) int {
	if kind == engine.TicTacToe {
		return engine.TicTacToeWinCondition
	}
	return cfg.CaroWinLength
}

func controllerStatus(controller *GameController) StatusResponse {
	state := controller.State()
	settings := controller.Settings()
	return StatusResponse{
		SessionID:       controller.ID(),
		Settings:        settings,
		Board:           state.Board,
		BoardSize:       state.Board.Size(),
		NextPlayer:      state.ToMove,
		Winner:          winnerFromStatus(state.Status, settings),
		Status:          state.Status,
		WinningLine:     append([]int(nil), state.WinningLine...),
		History:         controller.History().All(),
		BotThinking:     controller.BotThinking(),
		LastMessage:     state.LastMessage,
		TurnStartedAtMs: controller.CurrentTurnStartedAtMs(),
	}
}

func winnerFromStatus(status GameStatus, settings GameSettings) engine.Cell {
	switch status {
	case StatusHumanWon:
		return settings.HumanMark
	case StatusBotWon:
		return settings.BotMark()
	default:
		return engine.Empty
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
