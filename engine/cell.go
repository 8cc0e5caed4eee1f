package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) Opponent() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (c Cell) Valid() bool {
	return c <= O
}

// IsMark reports whether c is one of the two player marks.
func (c Cell) IsMark() bool {
	return c == X || c == O
}

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

func ParseCell(raw string) (Cell, error) {
	switch raw {
	case "":
		return Empty, nil
	case "X", "x":
		return X, nil
	case "O", "o":
		return O, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrInvalidMark, raw)
	}
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts "X", "O", "" and null, the shapes stored in board snapshots.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = Empty
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMark, data)
	}
	parsed, err := ParseCell(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
