package engine

import "errors"

var (
	ErrInvalidBoard        = errors.New("invalid board")
	ErrInvalidMark         = errors.New("invalid mark")
	ErrInvalidWinCondition = errors.New("invalid win condition")
	ErrUnknownDifficulty   = errors.New("unknown difficulty")
	ErrUnknownGameKind     = errors.New("unknown game kind")
)
