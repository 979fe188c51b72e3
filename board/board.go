// Package board implements the Reversi rules over an 8x8 grid.
package board

import (
	"errors"
	"fmt"
	"strings"

	"reversi-local/types"
)

const size = types.BoardSize

// ErrIllegalMove is returned when a disk cannot be placed at a coordinate.
var ErrIllegalMove = errors.New("illegal move")

// directions scanned from a candidate square.
var directions = [8]struct{ dx, dy int }{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Board is an 8x8 grid indexed as cells[y][x]. It is a value type: assigning a
// Board copies it.
type Board struct {
	cells [size][size]types.Cell
}

// New returns a board in the standard starting position:
// d4/e5 light, e4/d5 dark.
func New() Board {
	var b Board
	mid := size / 2
	b.cells[mid-1][mid-1] = types.LightDisk
	b.cells[mid][mid] = types.LightDisk
	b.cells[mid-1][mid] = types.DarkDisk
	b.cells[mid][mid-1] = types.DarkDisk
	return b
}

// At returns the content of c. c must be on the board.
func (b *Board) At(c types.Coordinate) types.Cell {
	return b.cells[c.Y][c.X]
}

// Set overwrites a single cell without applying any rule.
func (b *Board) Set(c types.Coordinate, cell types.Cell) {
	b.cells[c.Y][c.X] = cell
}

// flipsAt returns every opposing disk that placing side at c would flip, in
// direction order. An empty result means the move is illegal. This scan is the
// single source of truth for both legality and flipping.
func (b *Board) flipsAt(c types.Coordinate, side types.Side) []types.Coordinate {
	if !c.Valid() || b.At(c) != types.Empty {
		return nil
	}
	own := side.Cell()
	opp := side.Opposite().Cell()

	var flips []types.Coordinate
	for _, d := range directions {
		x, y := c.X+d.dx, c.Y+d.dy
		run := 0
		for x >= 0 && x < size && y >= 0 && y < size && b.cells[y][x] == opp {
			x += d.dx
			y += d.dy
			run++
		}
		if run == 0 || x < 0 || x >= size || y < 0 || y >= size || b.cells[y][x] != own {
			continue
		}
		for i := 1; i <= run; i++ {
			flips = append(flips, types.Coordinate{X: c.X + d.dx*i, Y: c.Y + d.dy*i})
		}
	}
	return flips
}

// CanPlace reports whether side may place a disk at c.
func (b *Board) CanPlace(c types.Coordinate, side types.Side) bool {
	return len(b.flipsAt(c, side)) > 0
}

// LegalMoves returns every legal coordinate for side in row-major order.
func (b *Board) LegalMoves(side types.Side) []types.Coordinate {
	var moves []types.Coordinate
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := types.Coordinate{X: x, Y: y}
			if b.CanPlace(c, side) {
				moves = append(moves, c)
			}
		}
	}
	return moves
}

// HasLegalMove reports whether side has at least one legal move.
func (b *Board) HasLegalMove(side types.Side) bool {
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if b.CanPlace(types.Coordinate{X: x, Y: y}, side) {
				return true
			}
		}
	}
	return false
}

// Place puts a disk of side at c and flips the captured disks. It returns the
// flipped coordinates. All flips are computed before any cell is written; on
// error the board is unchanged.
func (b *Board) Place(c types.Coordinate, side types.Side) ([]types.Coordinate, error) {
	flips := b.flipsAt(c, side)
	if len(flips) == 0 {
		return nil, fmt.Errorf("%w: %s at %s", ErrIllegalMove, side, c)
	}
	own := side.Cell()
	b.Set(c, own)
	for _, f := range flips {
		b.Set(f, own)
	}
	return flips, nil
}

// Apply is Place returning only the number of flipped disks.
func (b *Board) Apply(c types.Coordinate, side types.Side) (int, error) {
	flips, err := b.Place(c, side)
	return len(flips), err
}

// Count returns the number of disks of side.
func (b *Board) Count(side types.Side) int {
	own := side.Cell()
	n := 0
	for y := range b.cells {
		for x := range b.cells[y] {
			if b.cells[y][x] == own {
				n++
			}
		}
	}
	return n
}

// IsFull reports whether no empty cell remains.
func (b *Board) IsFull() bool {
	for y := range b.cells {
		for x := range b.cells[y] {
			if b.cells[y][x] == types.Empty {
				return false
			}
		}
	}
	return true
}

// IsTerminal reports whether neither side can move.
func (b *Board) IsTerminal() bool {
	return b.IsFull() || (!b.HasLegalMove(types.Dark) && !b.HasLegalMove(types.Light))
}

// Winner returns the disk of the side with strictly more disks, or Empty on a tie.
func (b *Board) Winner() types.Cell {
	dark, light := b.Count(types.Dark), b.Count(types.Light)
	switch {
	case dark > light:
		return types.DarkDisk
	case light > dark:
		return types.LightDisk
	}
	return types.Empty
}

// String renders the board as 8 lines of x/o/- without a trailing newline.
func (b Board) String() string {
	var sb strings.Builder
	for y := range b.cells {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range b.cells[y] {
			sb.WriteString(b.cells[y][x].Symbol())
		}
	}
	return sb.String()
}
