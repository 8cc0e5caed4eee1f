package main

import (
	"fmt"

	"gameportal/engine"
)

type Rules struct {
	settings GameSettings
}

func NewRules(settings GameSettings) Rules {
	return Rules{settings: settings}
}

func (r Rules) IsLegal(state GameState, move Move) (bool, string) {
	if state.Status != StatusRunning {
		return false, "game not running"
	}
	if !move.IsValid(state.Board.Len()) {
		return false, "out of bounds"
	}
	if !state.Board.IsEmpty(move.Index) {
		return false, "occupied"
	}
	return true, ""
}

// WinningLine returns the run completed by the stone at move, or nil.
func (r Rules) WinningLine(board engine.Board, move Move) []int {
	if !move.IsValid(board.Len()) {
		return nil
	}
	return engine.DetectWin(board, move.Index, r.settings.WinLength)
}

func (r Rules) IsDraw(board engine.Board) bool {
	return board.IsFull()
}

func (r Rules) WinLength() int {
	return r.settings.WinLength
}

// BotRequest builds the engine request for the side to move.
func (r Rules) BotRequest(state GameState, difficulty engine.Difficulty) engine.Request {
	return engine.Request{
		Kind:         r.settings.Kind,
		Board:        state.Board,
		WinCondition: r.settings.WinLength,
		Bot:          state.ToMove,
		Opponent:     state.ToMove.Opponent(),
		Difficulty:   difficulty,
	}
}

func (r Rules) String() string {
	return fmt.Sprintf("Rules{kind=%s, size=%d, win=%d}", r.settings.Kind, r.settings.BoardSize, r.settings.WinLength)
}
