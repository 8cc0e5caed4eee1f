package engine

import (
	"encoding/json"
	"fmt"
	"math"
)

// Board is a square grid stored row-major in a flat slice.
type Board struct {
	size  int
	cells []Cell
}

func NewBoard(size int) Board {
	b := Board{}
	b.Reset(size)
	return b
}

// BoardFromCells copies cells into a new board. The length must be a perfect square.
func BoardFromCells(cells []Cell) (Board, error) {
	size := int(math.Sqrt(float64(len(cells))))
	for size*size < len(cells) {
		size++
	}
	if size == 0 || size*size != len(cells) {
		return Board{}, fmt.Errorf("%w: %d cells is not a square grid", ErrInvalidBoard, len(cells))
	}
	for i, cell := range cells {
		if !cell.Valid() {
			return Board{}, fmt.Errorf("%w: cell %d has value %d", ErrInvalidMark, i, cell)
		}
	}
	b := Board{size: size, cells: make([]Cell, len(cells))}
	copy(b.cells, cells)
	return b, nil
}

func (b *Board) Reset(size int) {
	b.size = size
	b.cells = make([]Cell, size*size)
}

func (b Board) Size() int {
	return b.size
}

func (b Board) Len() int {
	return len(b.cells)
}

func (b Board) At(index int) Cell {
	return b.cells[index]
}

func (b Board) AtXY(x, y int) Cell {
	return b.cells[b.Index(x, y)]
}

// Set writes in place. The engine itself never calls it on a caller's board.
func (b *Board) Set(index int, value Cell) {
	b.cells[index] = value
}

// With returns a copy of b with index overwritten by value.
func (b Board) With(index int, value Cell) Board {
	clone := b.Clone()
	clone.cells[index] = value
	return clone
}

func (b Board) Index(x, y int) int {
	return y*b.size + x
}

func (b Board) XY(index int) (int, int) {
	return index % b.size, index / b.size
}

func (b Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.size && y < b.size
}

func (b Board) ValidIndex(index int) bool {
	return index >= 0 && index < len(b.cells)
}

func (b Board) IsEmpty(index int) bool {
	return b.ValidIndex(index) && b.cells[index] == Empty
}

func (b Board) CountEmpty() int {
	count := 0
	for _, cell := range b.cells {
		if cell == Empty {
			count++
		}
	}
	return count
}

func (b Board) CountFilled() int {
	return len(b.cells) - b.CountEmpty()
}

func (b Board) IsFull() bool {
	return b.CountEmpty() == 0
}

func (b Board) EmptyCells() []int {
	out := make([]int, 0, len(b.cells))
	for i, cell := range b.cells {
		if cell == Empty {
			out = append(out, i)
		}
	}
	return out
}

// Center is the middle cell; on even sizes it is the lower-right of the four middle cells.
func (b Board) Center() int {
	half := b.size / 2
	return b.Index(half, half)
}

func (b Board) Cells() []Cell {
	out := make([]Cell, len(b.cells))
	copy(out, b.cells)
	return out
}

func (b Board) Clone() Board {
	clone := Board{size: b.size}
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

func (b Board) Equal(other Board) bool {
	if b.size != other.size || len(b.cells) != len(other.cells) {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

func (b Board) MarshalJSON() ([]byte, error) {
	if b.cells == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b.cells)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var cells []Cell
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	parsed, err := BoardFromCells(cells)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b Board) String() string {
	out := make([]byte, 0, len(b.cells)+b.size)
	for i, cell := range b.cells {
		switch cell {
		case X:
			out = append(out, 'X')
		case O:
			out = append(out, 'O')
		default:
			out = append(out, '.')
		}
		if (i+1)%b.size == 0 && i+1 < len(b.cells) {
			out = append(out, '\n')
		}
	}
	return string(out)
}
