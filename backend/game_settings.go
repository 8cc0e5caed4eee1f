package main

import (
	"fmt"

	"gameportal/engine"
)

type GameSettings struct {
	Kind        engine.GameKind   `json:"kind"`
	BoardSize   int               `json:"board_size"`
	WinLength   int               `json:"win_length"`
	Difficulty  engine.Difficulty `json:"difficulty"`
	HumanMark   engine.Cell       `json:"human_mark"`
	HumanStarts bool              `json:"human_starts"`
}

func DefaultGameSettings(kind engine.GameKind, cfg Config) GameSettings {
	settings := GameSettings{
		Kind:        kind,
		BoardSize:   cfg.CaroBoardSize,
		WinLength:   cfg.CaroWinLength,
		Difficulty:  cfg.DefaultDifficulty,
		HumanMark:   engine.X,
		HumanStarts: true,
	}
	if kind == engine.TicTacToe {
		settings.BoardSize = engine.TicTacToeSize
		settings.WinLength = engine.TicTacToeWinCondition
	}
	return settings
}

func (s GameSettings) BotMark() engine.Cell {
	return s.HumanMark.Opponent()
}

// FirstMark is the mark that opens the game.
func (s GameSettings) FirstMark() engine.Cell {
	if s.HumanStarts {
		return s.HumanMark
	}
	return s.BotMark()
}

func (s GameSettings) Validate() error {
	if !s.HumanMark.IsMark() {
		return fmt.Errorf("%w: human mark must be X or O", engine.ErrInvalidMark)
	}
	// Checked before any board is allocated.
	switch s.Kind {
	case engine.TicTacToe:
		if s.BoardSize != engine.TicTacToeSize {
			return fmt.Errorf("%w: tic-tac-toe needs a 3x3 board, got size %d", engine.ErrInvalidBoard, s.BoardSize)
		}
	default:
		if s.BoardSize < MinCaroBoardSize || s.BoardSize > MaxCaroBoardSize {
			return fmt.Errorf("%w: board_size must be within %d..%d, got %d", engine.ErrInvalidBoard, MinCaroBoardSize, MaxCaroBoardSize, s.BoardSize)
		}
	}
	req := engine.Request{
		Kind:         s.Kind,
		Board:        engine.NewBoard(s.BoardSize),
		WinCondition: s.WinLength,
		Bot:          s.BotMark(),
		Opponent:     s.HumanMark,
		Difficulty:   s.Difficulty,
	}
	return req.Validate()
}
