package engine

const (
	scoreWin         = 10000
	scoreBlockWin    = 5000
	scoreThreat      = 100
	scoreBlockThreat = 80
	jitterSpan       = 6
)

// caroOpening handles the positions every Caro tier short-circuits: an empty
// board plays the center, a board with no candidates has no move.
func caroOpening(board Board) (int, []int, bool) {
	if board.CountFilled() == 0 {
		return board.Center(), nil, true
	}
	candidates := Candidates(board, CandidateRadius)
	if len(candidates) == 0 {
		return NoMove, nil, true
	}
	return NoMove, candidates, false
}

func caroEasy(s *Selector, req Request) int {
	move, candidates, done := caroOpening(req.Board)
	if done {
		return move
	}
	return s.pick(candidates)
}

func caroMedium(s *Selector, req Request) int {
	move, candidates, done := caroOpening(req.Board)
	if done {
		return move
	}
	if move := firstWinningCell(req.Board, candidates, req.Bot, req.WinCondition); move != NoMove {
		return move
	}
	if move := firstWinningCell(req.Board, candidates, req.Opponent, req.WinCondition); move != NoMove {
		return move
	}
	return s.pick(candidates)
}

func caroHard(s *Selector, req Request) int {
	move, candidates, done := caroOpening(req.Board)
	if done {
		return move
	}
	best := NoMove
	bestScore := 0
	for _, idx := range candidates {
		score := s.scoreCaroCell(req, idx)
		if best == NoMove || score > bestScore {
			best = idx
			bestScore = score
		}
	}
	return best
}

func (s *Selector) scoreCaroCell(req Request, idx int) int {
	score := 0
	mine := req.Board.With(idx, req.Bot)
	if Wins(mine, idx, req.WinCondition) {
		score += scoreWin
	}
	if Wins(mine, idx, req.WinCondition-1) {
		score += scoreThreat
	}
	theirs := req.Board.With(idx, req.Opponent)
	if Wins(theirs, idx, req.WinCondition) {
		score += scoreBlockWin
	}
	if Wins(theirs, idx, req.WinCondition-1) {
		score += scoreBlockThreat
	}
	score += s.intN(jitterSpan)
	score -= centerDistance(req.Board, idx)
	return score
}

// centerDistance is the Manhattan distance from idx to the board center.
func centerDistance(board Board, idx int) int {
	half := board.Size() / 2
	x, y := board.XY(idx)
	return abs(x-half) + abs(y-half)
}

// firstWinningCell returns the first cell in order where mark completes a run.
func firstWinningCell(board Board, cells []int, mark Cell, winCondition int) int {
	for _, idx := range cells {
		if Wins(board.With(idx, mark), idx, winCondition) {
			return idx
		}
	}
	return NoMove
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
