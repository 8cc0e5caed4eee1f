package engine

// CandidateRadius is the Chebyshev distance from existing stones searched for moves.
const CandidateRadius = 2

// Candidates returns the empty cells within radius of any occupied cell, in
// ascending index order. An empty board has no candidates.
func Candidates(board Board, radius int) []int {
	size := board.Size()
	marked := make([]bool, board.Len())
	count := 0
	for i := 0; i < board.Len(); i++ {
		if board.At(i) == Empty {
			continue
		}
		x, y := board.XY(i)
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				nx := x + dx
				ny := y + dy
				if !board.InBounds(nx, ny) {
					continue
				}
				idx := ny*size + nx
				if marked[idx] || board.At(idx) != Empty {
					continue
				}
				marked[idx] = true
				count++
			}
		}
	}
	out := make([]int, 0, count)
	for i, ok := range marked {
		if ok {
			out = append(out, i)
		}
	}
	return out
}
