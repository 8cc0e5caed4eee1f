package main

import (
	"errors"
	"testing"

	"gameportal/engine"
)

func TestRulesIsLegal(t *testing.T) {
	settings := DefaultGameSettings(engine.Caro, DefaultConfig())
	rules := NewRules(settings)
	state := DefaultGameState(settings)

	if ok, reason := rules.IsLegal(state, Move{Index: 0}); ok || reason != "game not running" {
		t.Fatalf("expected not running, got %v %q", ok, reason)
	}
	state.Status = StatusRunning
	if ok, reason := rules.IsLegal(state, Move{Index: -1}); ok || reason != "out of bounds" {
		t.Fatalf("expected out of bounds, got %v %q", ok, reason)
	}
	if ok, reason := rules.IsLegal(state, Move{Index: 15 * 15}); ok || reason != "out of bounds" {
		t.Fatalf("expected out of bounds, got %v %q", ok, reason)
	}
	state.Board.Set(10, engine.O)
	if ok, reason := rules.IsLegal(state, Move{Index: 10}); ok || reason != "occupied" {
		t.Fatalf("expected occupied, got %v %q", ok, reason)
	}
	if ok, _ := rules.IsLegal(state, Move{Index: 11}); !ok {
		t.Fatalf("expected empty cell to be legal")
	}
}

func TestRulesWinningLineUsesWinLength(t *testing.T) {
	settings := DefaultGameSettings(engine.Caro, DefaultConfig())
	rules := NewRules(settings)
	board := engine.NewBoard(settings.BoardSize)
	for x := 2; x < 6; x++ {
		board.Set(board.Index(x, 7), engine.X)
	}
	if line := rules.WinningLine(board, Move{Index: board.Index(5, 7)}); line != nil {
		t.Fatalf("expected four in a row not to win, got %v", line)
	}
	board.Set(board.Index(6, 7), engine.X)
	line := rules.WinningLine(board, Move{Index: board.Index(6, 7)})
	if len(line) != 5 {
		t.Fatalf("expected five-cell line, got %v", line)
	}
}

func TestRulesBotRequestTargetsSideToMove(t *testing.T) {
	settings := ticTacToeSettings(engine.Hard)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	state.ToMove = engine.O

	req := rules.BotRequest(state, engine.Medium)
	if req.Bot != engine.O || req.Opponent != engine.X {
		t.Fatalf("expected O vs X, got %s vs %s", req.Bot, req.Opponent)
	}
	if req.Kind != engine.TicTacToe || req.WinCondition != 3 || req.Difficulty != engine.Medium {
		t.Fatalf("unexpected request %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request: %v", err)
	}
}

func TestGameSettingsValidate(t *testing.T) {
	settings := ticTacToeSettings(engine.Easy)
	settings.BoardSize = 4
	if err := settings.Validate(); err == nil {
		t.Fatalf("expected tic-tac-toe on 4x4 to be rejected")
	}
	settings = DefaultGameSettings(engine.Caro, DefaultConfig())
	settings.BoardSize = 1 << 20
	if err := settings.Validate(); !errors.Is(err, engine.ErrInvalidBoard) {
		t.Fatalf("expected oversized caro board to be rejected, got %v", err)
	}
	settings = DefaultGameSettings(engine.Caro, DefaultConfig())
	settings.BoardSize = MaxCaroBoardSize
	if err := settings.Validate(); err != nil {
		t.Fatalf("expected largest caro board to be accepted: %v", err)
	}
	settings.HumanMark = engine.Empty
	if err := settings.Validate(); err == nil {
		t.Fatalf("expected empty human mark to be rejected")
	}
}
