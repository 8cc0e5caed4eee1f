package engine

// Line orientations in probe order: horizontal, vertical, "\" diagonal, "/" diagonal.
var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// DetectWin reports whether the mark at index completes a run of at least
// winCondition identical marks. It returns the whole run in line order, which
// may be longer than winCondition, or nil when there is no such run.
func DetectWin(board Board, index, winCondition int) []int {
	if winCondition < 1 || !board.ValidIndex(index) {
		return nil
	}
	if board.At(index) == Empty {
		return nil
	}
	for i := 0; i < 4; i++ {
		dx := directions[i][0]
		dy := directions[i][1]
		count := 1
		count += countDirection(board, index, dx, dy)
		count += countDirection(board, index, -dx, -dy)
		if count >= winCondition {
			return collectLine(board, index, dx, dy)
		}
	}
	return nil
}

// Wins is DetectWin without materializing the line.
func Wins(board Board, index, winCondition int) bool {
	if winCondition < 1 || !board.ValidIndex(index) || board.At(index) == Empty {
		return false
	}
	for i := 0; i < 4; i++ {
		dx := directions[i][0]
		dy := directions[i][1]
		if 1+countDirection(board, index, dx, dy)+countDirection(board, index, -dx, -dy) >= winCondition {
			return true
		}
	}
	return false
}

// HasWinner scans every occupied cell and returns the first winning mark found
// together with its line, or Empty and nil.
func HasWinner(board Board, winCondition int) (Cell, []int) {
	for i := 0; i < board.Len(); i++ {
		if board.At(i) == Empty {
			continue
		}
		if line := DetectWin(board, i, winCondition); line != nil {
			return board.At(i), line
		}
	}
	return Empty, nil
}

func countDirection(board Board, start, dx, dy int) int {
	target := board.At(start)
	x, y := board.XY(start)
	x += dx
	y += dy
	count := 0
	for board.InBounds(x, y) && board.AtXY(x, y) == target {
		count++
		x += dx
		y += dy
	}
	return count
}

func collectLine(board Board, start, dx, dy int) []int {
	line := []int{}
	target := board.At(start)
	x, y := board.XY(start)
	for board.InBounds(x-dx, y-dy) && board.AtXY(x-dx, y-dy) == target {
		x -= dx
		y -= dy
	}
	for board.InBounds(x, y) && board.AtXY(x, y) == target {
		line = append(line, board.Index(x, y))
		x += dx
		y += dy
	}
	return line
}
