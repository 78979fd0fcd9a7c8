package engine

import (
	"fmt"
	"strings"
)

// Board is a size x size grid of tiles. A zero value cell is empty.
type Board struct {
	size      int
	cells     [][]int
	moveCount int
	score     int
}

// NewBoard creates a board of the given size. tiles, when non-nil, holds the
// initial values in row-major order and must have size*size entries.
func NewBoard(size int, tiles []int) (*Board, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, fmt.Errorf("%w: board size must be between %d and %d, got %d",
			ErrInvalidConfig, MinBoardSize, MaxBoardSize, size)
	}
	if tiles != nil && len(tiles) != size*size {
		return nil, fmt.Errorf("%w: expected %d initial tiles, got %d", ErrInvalidConfig, size*size, len(tiles))
	}

	cells := make([][]int, size)
	for r := range cells {
		cells[r] = make([]int, size)
	}
	for i, v := range tiles {
		if v < 0 {
			return nil, fmt.Errorf("%w: initial tile %d is negative (%d)", ErrInvalidConfig, i, v)
		}
		cells[i/size][i%size] = v
	}

	return &Board{size: size, cells: cells}, nil
}

// Size returns the board edge length
func (b *Board) Size() int {
	return b.size
}

// MoveCount returns the number of successful shifts applied to the board
func (b *Board) MoveCount() int {
	return b.moveCount
}

// Score returns the sum of all merged tile values
func (b *Board) Score() int {
	return b.score
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

// Get returns the value at (row, col); Empty means no tile
func (b *Board) Get(row, col int) (int, error) {
	if !b.inBounds(row, col) {
		return Empty, fmt.Errorf("%w: (%d,%d) on %dx%d board", ErrOutOfBounds, row, col, b.size, b.size)
	}
	return b.cells[row][col], nil
}

// Set overwrites the value at (row, col)
func (b *Board) Set(row, col, value int) error {
	if !b.inBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d) on %dx%d board", ErrOutOfBounds, row, col, b.size, b.size)
	}
	if value < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTile, value)
	}
	b.cells[row][col] = value
	return nil
}

func (b *Board) at(p Position) int {
	return b.cells[p.Row][p.Col]
}

// EmptyCells returns the empty positions in row-major order
func (b *Board) EmptyCells() []Position {
	var empty []Position
	for r, row := range b.cells {
		for c, v := range row {
			if v == Empty {
				empty = append(empty, Position{Row: r, Col: c})
			}
		}
	}
	return empty
}

// Generate fills up to count distinct empty cells, chosen uniformly with rng,
// with values drawn uniformly from vr. When fewer empty cells remain it fills
// what it can. The positions filled are returned in fill order.
func (b *Board) Generate(rng Rand, count int, vr ValueRange) ([]Position, error) {
	if err := vr.Validate(); err != nil {
		return nil, err
	}

	empty := b.EmptyCells()
	var placed []Position
	for i := 0; i < count && len(empty) > 0; i++ {
		idx := rng.IntN(len(empty))
		pos := empty[idx]
		b.cells[pos.Row][pos.Col] = vr.Min + rng.IntN(vr.Max-vr.Min)
		placed = append(placed, pos)

		empty[idx] = empty[len(empty)-1]
		empty = empty[:len(empty)-1]
	}
	return placed, nil
}

// Tiles returns a copy of the grid
func (b *Board) Tiles() [][]int {
	out := make([][]int, b.size)
	for r, row := range b.cells {
		out[r] = append([]int(nil), row...)
	}
	return out
}

// Clone returns an independent copy of the board, counters included
func (b *Board) Clone() *Board {
	return &Board{
		size:      b.size,
		cells:     b.Tiles(),
		moveCount: b.moveCount,
		score:     b.score,
	}
}

// Equal reports whether both boards hold the same tiles
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.size != other.size {
		return false
	}
	for r := range b.cells {
		for c := range b.cells[r] {
			if b.cells[r][c] != other.cells[r][c] {
				return false
			}
		}
	}
	return true
}

// String renders the board as a fixed-width text grid
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("Situation:\n")
	for _, row := range b.cells {
		for _, v := range row {
			if v == Empty {
				fmt.Fprintf(&sb, "%5s", ".")
				continue
			}
			fmt.Fprintf(&sb, "%5d", v)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
