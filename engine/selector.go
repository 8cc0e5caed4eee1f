package engine

import (
	"fmt"
	"math/rand/v2"
)

// NoMove is returned when the board has no playable cell.
const NoMove = -1

// Request is everything a tier needs to pick the bot's next move.
type Request struct {
	Kind         GameKind
	Board        Board
	WinCondition int
	Bot          Cell
	Opponent     Cell
	Difficulty   Difficulty
}

// Validate checks the request shape at the hosting application's boundary.
// SelectMove itself trusts its input.
func (r Request) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownGameKind, uint8(r.Kind))
	}
	if !r.Difficulty.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownDifficulty, uint8(r.Difficulty))
	}
	size := r.Board.Size()
	if size <= 0 || size*size != r.Board.Len() {
		return fmt.Errorf("%w: size %d with %d cells", ErrInvalidBoard, size, r.Board.Len())
	}
	if !r.Bot.IsMark() || !r.Opponent.IsMark() || r.Bot == r.Opponent {
		return fmt.Errorf("%w: bot %q opponent %q", ErrInvalidMark, r.Bot, r.Opponent)
	}
	if r.WinCondition < 2 || r.WinCondition > size {
		return fmt.Errorf("%w: %d on a %dx%d board", ErrInvalidWinCondition, r.WinCondition, size, size)
	}
	if r.Kind == TicTacToe {
		if size != TicTacToeSize {
			return fmt.Errorf("%w: tic-tac-toe needs a 3x3 board, got %dx%d", ErrInvalidBoard, size, size)
		}
		if r.WinCondition != TicTacToeWinCondition {
			return fmt.Errorf("%w: tic-tac-toe needs 3 in a row, got %d", ErrInvalidWinCondition, r.WinCondition)
		}
	}
	return nil
}

// Selector holds the randomness source used by the tiers. A Selector built
// over an explicit source is deterministic and not safe for concurrent use;
// the zero value and NewSelector(nil) draw from the shared default source.
type Selector struct {
	rng *rand.Rand
}

func NewSelector(src rand.Source) *Selector {
	if src == nil {
		return &Selector{}
	}
	return &Selector{rng: rand.New(src)}
}

// NewSeededSelector is a deterministic selector, used for replays and tests.
func NewSeededSelector(seed uint64) *Selector {
	return NewSelector(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

var defaultSelector = &Selector{}

// SelectMove picks the bot's move with the default randomness source.
func SelectMove(req Request) int {
	return defaultSelector.SelectMove(req)
}

type strategy func(s *Selector, req Request) int

var strategies = [...][3]strategy{
	Caro:      {Easy: caroEasy, Medium: caroMedium, Hard: caroHard},
	TicTacToe: {Easy: ticTacToeEasy, Medium: ticTacToeMedium, Hard: ticTacToeHard},
}

// SelectMove returns a cell index for the bot, or NoMove when the board is full
// or the kind/difficulty pair is unknown.
func (s *Selector) SelectMove(req Request) int {
	if !req.Kind.Valid() || !req.Difficulty.Valid() {
		return NoMove
	}
	return strategies[req.Kind][req.Difficulty](s, req)
}

func (s *Selector) intN(n int) int {
	if s == nil || s.rng == nil {
		return rand.IntN(n)
	}
	return s.rng.IntN(n)
}

func (s *Selector) pick(cells []int) int {
	if len(cells) == 0 {
		return NoMove
	}
	return cells[s.intN(len(cells))]
}
