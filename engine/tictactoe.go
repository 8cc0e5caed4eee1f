package engine

const (
	minimaxWin = 10
)

func ticTacToeEasy(s *Selector, req Request) int {
	return s.pick(req.Board.EmptyCells())
}

func ticTacToeMedium(s *Selector, req Request) int {
	empty := req.Board.EmptyCells()
	if len(empty) == 0 {
		return NoMove
	}
	if move := firstWinningCell(req.Board, empty, req.Bot, TicTacToeWinCondition); move != NoMove {
		return move
	}
	if move := firstWinningCell(req.Board, empty, req.Opponent, TicTacToeWinCondition); move != NoMove {
		return move
	}
	return s.pick(empty)
}

func ticTacToeHard(_ *Selector, req Request) int {
	board := req.Board
	empty := board.EmptyCells()
	if len(empty) == 0 {
		return NoMove
	}
	center := board.Center()
	filled := board.Len() - len(empty)
	if filled == 0 || (filled == 1 && board.At(center) == Empty) {
		return center
	}
	best := NoMove
	bestScore := 0
	for _, idx := range empty {
		score := minimax(board.With(idx, req.Bot), idx, 0, req.Bot, req.Bot)
		if best == NoMove || score > bestScore {
			best = idx
			bestScore = score
		}
	}
	return best
}

// minimax scores the position after mover played last at ply depth, from the
// bot's point of view. Faster wins and slower losses score higher.
func minimax(board Board, last, depth int, mover, bot Cell) int {
	if Wins(board, last, TicTacToeWinCondition) {
		if mover == bot {
			return minimaxWin - depth
		}
		return depth - minimaxWin
	}
	empty := board.EmptyCells()
	if len(empty) == 0 {
		return 0
	}
	next := mover.Opponent()
	maximizing := next == bot
	best := 0
	for i, idx := range empty {
		score := minimax(board.With(idx, next), idx, depth+1, next, bot)
		if i == 0 || (maximizing && score > best) || (!maximizing && score < best) {
			best = score
		}
	}
	return best
}
