package main

import "gameportal/engine"

type IPlayer interface {
	IsHuman() bool
	Mark() engine.Cell
	ChooseMove(state GameState, rules Rules) Move
}

// HumanPlayer moves only through Game.TryApplyMove from the HTTP layer.
type HumanPlayer struct {
	mark engine.Cell
}

func NewHumanPlayer(mark engine.Cell) *HumanPlayer {
	return &HumanPlayer{mark: mark}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}

func (h *HumanPlayer) Mark() engine.Cell {
	return h.mark
}

func (h *HumanPlayer) ChooseMove(GameState, Rules) Move {
	return Move{Index: engine.NoMove}
}
