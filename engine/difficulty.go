package engine

import (
	"fmt"
	"strings"
)

type Difficulty uint8

const (
	Easy Difficulty = iota
	Medium
	Hard
)

var difficultyNames = [...]string{Easy: "easy", Medium: "medium", Hard: "hard"}

func ParseDifficulty(raw string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy":
		return Easy, nil
	case "medium", "normal":
		return Medium, nil
	case "hard":
		return Hard, nil
	default:
		return Easy, fmt.Errorf("%w: %q", ErrUnknownDifficulty, raw)
	}
}

func (d Difficulty) Valid() bool {
	return d <= Hard
}

func (d Difficulty) String() string {
	if !d.Valid() {
		return fmt.Sprintf("difficulty(%d)", uint8(d))
	}
	return difficultyNames[d]
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDifficulty, uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GameKind selects the rule family a board is played under.
type GameKind uint8

const (
	Caro GameKind = iota
	TicTacToe
)

const (
	TicTacToeSize         = 3
	TicTacToeWinCondition = 3
)

func ParseGameKind(raw string) (GameKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "caro", "gomoku":
		return Caro, nil
	case "tictactoe", "tic-tac-toe", "tic_tac_toe":
		return TicTacToe, nil
	default:
		return Caro, fmt.Errorf("%w: %q", ErrUnknownGameKind, raw)
	}
}

func (k GameKind) Valid() bool {
	return k <= TicTacToe
}

func (k GameKind) String() string {
	switch k {
	case Caro:
		return "caro"
	case TicTacToe:
		return "tictactoe"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k GameKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGameKind, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *GameKind) UnmarshalText(text []byte) error {
	parsed, err := ParseGameKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
