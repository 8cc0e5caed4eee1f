package engine

import (
	"slices"
	"testing"
)

func boardWith(size int, mark Cell, coords ...[2]int) Board {
	board := NewBoard(size)
	for _, c := range coords {
		board.Set(board.Index(c[0], c[1]), mark)
	}
	return board
}

func TestDetectWinHorizontal(t *testing.T) {
	board := boardWith(15, X, [2]int{3, 5}, [2]int{4, 5}, [2]int{5, 5}, [2]int{6, 5}, [2]int{7, 5})
	probe := board.Index(5, 5)
	line := DetectWin(board, probe, 5)
	if line == nil {
		t.Fatalf("expected win through %d", probe)
	}
	want := []int{board.Index(3, 5), board.Index(4, 5), board.Index(5, 5), board.Index(6, 5), board.Index(7, 5)}
	if !slices.Equal(line, want) {
		t.Fatalf("expected line %v, got %v", want, line)
	}
}

func TestDetectWinReturnsWholeOverline(t *testing.T) {
	board := boardWith(9, O, [2]int{2, 0}, [2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3}, [2]int{2, 4}, [2]int{2, 5})
	line := DetectWin(board, board.Index(2, 0), 5)
	if len(line) != 6 {
		t.Fatalf("expected all 6 cells of the run, got %v", line)
	}
	if !slices.Contains(line, board.Index(2, 0)) {
		t.Fatalf("expected line to contain the probed cell, got %v", line)
	}
}

func TestDetectWinNoRun(t *testing.T) {
	board := boardWith(15, X, [2]int{3, 5}, [2]int{4, 5}, [2]int{5, 5}, [2]int{6, 5})
	board.Set(board.Index(7, 5), O)
	for _, idx := range []int{board.Index(3, 5), board.Index(6, 5), board.Index(7, 5)} {
		if line := DetectWin(board, idx, 5); line != nil {
			t.Fatalf("expected no win through %d, got %v", idx, line)
		}
	}
	if line := DetectWin(board, board.Index(0, 0), 5); line != nil {
		t.Fatalf("expected nil for an empty cell, got %v", line)
	}
	if line := DetectWin(board, -1, 5); line != nil {
		t.Fatalf("expected nil for an out of range index, got %v", line)
	}
	if line := DetectWin(board, board.Len(), 5); line != nil {
		t.Fatalf("expected nil for an out of range index, got %v", line)
	}
}

func TestDetectWinDoesNotWrapRows(t *testing.T) {
	// Last two cells of row 0 and first two of row 1 are adjacent in memory only.
	board := boardWith(5, X, [2]int{3, 0}, [2]int{4, 0}, [2]int{0, 1}, [2]int{1, 1})
	if line := DetectWin(board, board.Index(4, 0), 4); line != nil {
		t.Fatalf("expected no wrap-around win, got %v", line)
	}
}

func TestDetectWinThreatProbe(t *testing.T) {
	board := boardWith(15, X, [2]int{4, 4}, [2]int{5, 5}, [2]int{6, 6}, [2]int{7, 7})
	if DetectWin(board, board.Index(5, 5), 5) != nil {
		t.Fatalf("four stones must not satisfy a run of five")
	}
	if line := DetectWin(board, board.Index(5, 5), 4); len(line) != 4 {
		t.Fatalf("expected a four-cell threat line, got %v", line)
	}
}

func rotate(board Board) (Board, func(int) int) {
	size := board.Size()
	out := NewBoard(size)
	mapIndex := func(idx int) int {
		x, y := board.XY(idx)
		return out.Index(size-1-y, x)
	}
	for i := 0; i < board.Len(); i++ {
		out.Set(mapIndex(i), board.At(i))
	}
	return out, mapIndex
}

func TestDetectWinRotationSymmetry(t *testing.T) {
	patterns := map[string]Board{
		"horizontal":    boardWith(7, X, [2]int{1, 2}, [2]int{2, 2}, [2]int{3, 2}, [2]int{4, 2}),
		"diagonal":      boardWith(7, X, [2]int{1, 1}, [2]int{2, 2}, [2]int{3, 3}, [2]int{4, 4}),
		"anti-diagonal": boardWith(7, X, [2]int{5, 1}, [2]int{4, 2}, [2]int{3, 3}, [2]int{2, 4}),
	}
	for name, board := range patterns {
		var probe int
		for i := 0; i < board.Len(); i++ {
			if board.At(i) == X {
				probe = i
				break
			}
		}
		want := DetectWin(board, probe, 4)
		if want == nil {
			t.Fatalf("%s: expected base pattern to win", name)
		}
		current := board
		currentProbe := probe
		currentLine := slices.Clone(want)
		for turn := 1; turn <= 3; turn++ {
			var mapIndex func(int) int
			current, mapIndex = rotate(current)
			currentProbe = mapIndex(currentProbe)
			for i := range currentLine {
				currentLine[i] = mapIndex(currentLine[i])
			}
			got := DetectWin(current, currentProbe, 4)
			if len(got) != len(want) {
				t.Fatalf("%s rotated %d°: expected run of %d, got %v", name, turn*90, len(want), got)
			}
			expected := slices.Clone(currentLine)
			slices.Sort(expected)
			sorted := slices.Clone(got)
			slices.Sort(sorted)
			if !slices.Equal(sorted, expected) {
				t.Fatalf("%s rotated %d°: expected cells %v, got %v", name, turn*90, expected, sorted)
			}
		}
	}
}

func TestHasWinner(t *testing.T) {
	board := boardWith(3, O, [2]int{0, 2}, [2]int{1, 1}, [2]int{2, 0})
	mark, line := HasWinner(board, 3)
	if mark != O || len(line) != 3 {
		t.Fatalf("expected O to win on the anti-diagonal, got %v %v", mark, line)
	}
	if mark, line := HasWinner(NewBoard(3), 3); mark != Empty || line != nil {
		t.Fatalf("expected no winner on an empty board, got %v %v", mark, line)
	}
}
