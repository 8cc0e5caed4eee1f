package engine

import (
	"slices"
	"testing"
)

func TestCandidatesEmptyBoard(t *testing.T) {
	if got := Candidates(NewBoard(15), CandidateRadius); len(got) != 0 {
		t.Fatalf("expected no candidates on an empty board, got %v", got)
	}
}

func TestCandidatesAroundSingleStone(t *testing.T) {
	board := NewBoard(15)
	board.Set(board.Center(), X)
	got := Candidates(board, CandidateRadius)
	if len(got) != 24 {
		t.Fatalf("expected 24 candidates around a lone center stone, got %d", len(got))
	}
	if !slices.IsSorted(got) {
		t.Fatalf("expected ascending candidate order, got %v", got)
	}
	if slices.Contains(got, board.Center()) {
		t.Fatalf("occupied cell must not be a candidate")
	}
	for _, idx := range got {
		x, y := board.XY(idx)
		if abs(x-7) > 2 || abs(y-7) > 2 {
			t.Fatalf("candidate %d (%d,%d) is outside radius 2", idx, x, y)
		}
	}
}

func TestCandidatesClippedAtCornerAndDeduplicated(t *testing.T) {
	board := NewBoard(10)
	board.Set(0, O)
	board.Set(board.Index(1, 1), X)
	got := Candidates(board, CandidateRadius)
	// Union of the 3x3 corner window and the 4x4 window around (1,1), minus the two stones.
	if len(got) != 14 {
		t.Fatalf("expected 14 candidates, got %d: %v", len(got), got)
	}
	seen := map[int]bool{}
	for _, idx := range got {
		if seen[idx] {
			t.Fatalf("duplicate candidate %d", idx)
		}
		seen[idx] = true
	}
}
