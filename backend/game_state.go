package main

import (
	"fmt"

	"gameportal/engine"
)

type GameStatus int

const (
	StatusNotStarted GameStatus = iota
	StatusRunning
	StatusHumanWon
	StatusBotWon
	StatusDraw
)

func (s GameStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusHumanWon:
		return "human_won"
	case StatusBotWon:
		return "bot_won"
	case StatusDraw:
		return "draw"
	default:
		return "running"
	}
}

func ParseGameStatus(raw string) (GameStatus, error) {
	for _, status := range []GameStatus{StatusNotStarted, StatusRunning, StatusHumanWon, StatusBotWon, StatusDraw} {
		if status.String() == raw {
			return status, nil
		}
	}
	return StatusNotStarted, fmt.Errorf("unknown game status %q", raw)
}

func (s GameStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *GameStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseGameStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s GameStatus) Finished() bool {
	return s == StatusHumanWon || s == StatusBotWon || s == StatusDraw
}

type GameState struct {
	Board       engine.Board
	ToMove      engine.Cell
	Status      GameStatus
	HasLastMove bool
	LastMove    Move
	LastMessage string
	WinningLine []int
}

func DefaultGameState(settings GameSettings) GameState {
	state := GameState{}
	state.Reset(settings)
	return state
}

func (s *GameState) Reset(settings GameSettings) {
	s.Board = engine.NewBoard(settings.BoardSize)
	s.ToMove = settings.FirstMark()
	s.Status = StatusNotStarted
	s.HasLastMove = false
	s.LastMove = Move{Index: engine.NoMove}
	s.LastMessage = ""
	s.WinningLine = nil
}

func (s GameState) Clone() GameState {
	clone := s
	clone.Board = s.Board.Clone()
	clone.WinningLine = append([]int(nil), s.WinningLine...)
	return clone
}
