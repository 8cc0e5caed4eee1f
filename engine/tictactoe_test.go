package engine

import (
	"fmt"
	"slices"
	"testing"
)

func ticTacToeBoard(t *testing.T, layout string) Board {
	t.Helper()
	if len(layout) != 9 {
		t.Fatalf("layout must have 9 cells, got %q", layout)
	}
	board := NewBoard(TicTacToeSize)
	for i, ch := range layout {
		switch ch {
		case 'X':
			board.Set(i, X)
		case 'O':
			board.Set(i, O)
		}
	}
	return board
}

func ticTacToeRequest(board Board, bot Cell, difficulty Difficulty) Request {
	return Request{
		Kind:         TicTacToe,
		Board:        board,
		WinCondition: TicTacToeWinCondition,
		Bot:          bot,
		Opponent:     bot.Opponent(),
		Difficulty:   difficulty,
	}
}

func TestTicTacToeHardEmptyBoardPlaysCenter(t *testing.T) {
	if got := SelectMove(ticTacToeRequest(NewBoard(3), O, Hard)); got != 4 {
		t.Fatalf("expected center, got %d", got)
	}
}

func TestTicTacToeHardAnswersFirstMoveWithCenter(t *testing.T) {
	board := ticTacToeBoard(t, "X........")
	if got := SelectMove(ticTacToeRequest(board, O, Hard)); got != 4 {
		t.Fatalf("expected center reply, got %d", got)
	}
}

func TestTicTacToeBlocksTwoInRow(t *testing.T) {
	board := ticTacToeBoard(t, "XX.......")
	for _, difficulty := range []Difficulty{Medium, Hard} {
		for seed := uint64(0); seed < 10; seed++ {
			if got := NewSeededSelector(seed).SelectMove(ticTacToeRequest(board, O, difficulty)); got != 2 {
				t.Fatalf("%s seed %d: expected block at 2, got %d", difficulty, seed, got)
			}
		}
	}
}

func TestTicTacToeMediumPrefersWinOverBlock(t *testing.T) {
	// X threatens 2, O completes the middle row at 5.
	board := ticTacToeBoard(t, "XX.OO...X")
	for seed := uint64(0); seed < 10; seed++ {
		if got := NewSeededSelector(seed).SelectMove(ticTacToeRequest(board, O, Medium)); got != 5 {
			t.Fatalf("seed %d: expected win at 5, got %d", seed, got)
		}
	}
}

func TestTicTacToeHardPrefersFastestWin(t *testing.T) {
	board := ticTacToeBoard(t, "XXO.O...X")
	if got := SelectMove(ticTacToeRequest(board, O, Hard)); got != 6 {
		t.Fatalf("expected immediate win at 6, got %d", got)
	}
	// Playing 3 instead forks 5 and 6, which wins two plies later.
	if score := minimax(board.With(3, O), 3, 0, O, O); score != minimaxWin-2 {
		t.Fatalf("expected delayed win to score %d, got %d", minimaxWin-2, score)
	}
	if score := minimax(board.With(6, O), 6, 0, O, O); score != minimaxWin {
		t.Fatalf("expected immediate win to score %d, got %d", minimaxWin, score)
	}
}

func TestMinimaxLossScoresByDepth(t *testing.T) {
	board := ticTacToeBoard(t, "XXXOO....")
	if score := minimax(board, 2, 3, X, O); score != 3-minimaxWin {
		t.Fatalf("expected a loss at ply 3 to score %d, got %d", 3-minimaxWin, score)
	}
	if score := minimax(board, 2, 1, X, O); score != 1-minimaxWin {
		t.Fatalf("expected a loss at ply 1 to score %d, got %d", 1-minimaxWin, score)
	}
}

func TestTicTacToeFullBoardHasNoMove(t *testing.T) {
	board := ticTacToeBoard(t, "XOXXOOOXX")
	for _, difficulty := range allDifficulties {
		if got := SelectMove(ticTacToeRequest(board, O, difficulty)); got != NoMove {
			t.Fatalf("%s: expected NoMove on a full board, got %d", difficulty, got)
		}
	}
}

func TestTicTacToeEasyPicksEmptyCell(t *testing.T) {
	board := ticTacToeBoard(t, "XO.X.O.X.")
	empty := board.EmptyCells()
	selector := NewSeededSelector(5)
	for i := 0; i < 30; i++ {
		if got := selector.SelectMove(ticTacToeRequest(board, O, Easy)); !slices.Contains(empty, got) {
			t.Fatalf("expected an empty cell, got %d", got)
		}
	}
}

type playerFunc func(board Board, mark Cell) int

func tierPlayer(selector *Selector, difficulty Difficulty) playerFunc {
	return func(board Board, mark Cell) int {
		return selector.SelectMove(ticTacToeRequest(board, mark, difficulty))
	}
}

// playTicTacToe plays one game, X first, and returns the winning mark or Empty on a draw.
func playTicTacToe(t *testing.T, x, o playerFunc) Cell {
	t.Helper()
	board := NewBoard(TicTacToeSize)
	mark := X
	for !board.IsFull() {
		player := x
		if mark == O {
			player = o
		}
		move := player(board, mark)
		if !board.IsEmpty(move) {
			t.Fatalf("%v played illegal move %d on\n%s", mark, move, board)
		}
		board.Set(move, mark)
		if Wins(board, move, TicTacToeWinCondition) {
			return mark
		}
		mark = mark.Opponent()
	}
	return Empty
}

func TestTicTacToeHardNeverLoses(t *testing.T) {
	opponents := map[string]Difficulty{"easy": Easy, "medium": Medium, "hard": Hard}
	for name, difficulty := range opponents {
		for _, hardMark := range []Cell{X, O} {
			t.Run(fmt.Sprintf("%s_as_%v", name, hardMark), func(t *testing.T) {
				hard := tierPlayer(NewSeededSelector(99), Hard)
				games := 100
				if difficulty == Hard {
					// Both sides are deterministic.
					games = 1
				}
				for game := 0; game < games; game++ {
					other := tierPlayer(NewSeededSelector(uint64(game)), difficulty)
					x, o := hard, other
					if hardMark == O {
						x, o = other, hard
					}
					winner := playTicTacToe(t, x, o)
					if winner == hardMark.Opponent() {
						t.Fatalf("game %d: hard tier lost as %v", game, hardMark)
					}
					if difficulty == Hard && winner != Empty {
						t.Fatalf("game %d: hard vs hard must draw, %v won", game, winner)
					}
				}
			})
		}
	}
}

func TestTicTacToeTiersDoNotMutateBoard(t *testing.T) {
	board := ticTacToeBoard(t, "X...O..X.")
	before := board.Clone()
	for _, difficulty := range allDifficulties {
		SelectMove(ticTacToeRequest(board, O, difficulty))
		if !board.Equal(before) {
			t.Fatalf("%s mutated the board:\n%s", difficulty, board)
		}
	}
}
