// Package types contains shared data structures for reversi-local.
package types

import (
	"fmt"
	"strings"
)

// BoardSize is the width and height of a Reversi board.
const BoardSize = 8

// Side is one of the two players. Dark moves first.
type Side int

const (
	Dark  Side = 0
	Light Side = 1
)

// Sides lists both sides in index order.
var Sides = [2]Side{Dark, Light}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	return 1 - s
}

// Index returns the array slot used for per-side storage.
func (s Side) Index() int {
	return int(s)
}

// Valid reports whether s is Dark or Light.
func (s Side) Valid() bool {
	return s == Dark || s == Light
}

// Cell returns the cell value of a disk belonging to s.
func (s Side) Cell() Cell {
	return Cell(s + 1)
}

// Symbol returns the single-character text form of s ("x" or "o").
func (s Side) Symbol() string {
	return s.Cell().Symbol()
}

func (s Side) String() string {
	switch s {
	case Dark:
		return "Dark"
	case Light:
		return "Light"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// Cell is the content of a board square: empty or a disk of one side.
// 0=empty, 1=dark, 2=light.
type Cell int8

const (
	Empty     Cell = 0
	DarkDisk  Cell = 1
	LightDisk Cell = 2
)

// Side returns the owner of the disk in c. ok is false for an empty cell.
func (c Cell) Side() (s Side, ok bool) {
	switch c {
	case DarkDisk:
		return Dark, true
	case LightDisk:
		return Light, true
	}
	return 0, false
}

// Symbol returns "x" for dark, "o" for light and "-" for empty.
func (c Cell) Symbol() string {
	switch c {
	case DarkDisk:
		return "x"
	case LightDisk:
		return "o"
	}
	return "-"
}

// ParseCell is the inverse of Symbol.
func ParseCell(r byte) (Cell, bool) {
	switch r {
	case 'x':
		return DarkDisk, true
	case 'o':
		return LightDisk, true
	case '-':
		return Empty, true
	}
	return Empty, false
}

// Coordinate is a square on the board, 0 ≤ X, Y < BoardSize, origin top-left.
type Coordinate struct {
	X int
	Y int
}

// Valid reports whether c lies on the board.
func (c Coordinate) Valid() bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

// String renders c in algebraic notation: column a-h, row 1-8 from the top.
// {3, 3} -> "d4"
func (c Coordinate) String() string {
	if !c.Valid() {
		return fmt.Sprintf("(%d,%d)", c.X, c.Y)
	}
	return fmt.Sprintf("%c%d", 'a'+rune(c.X), c.Y+1)
}

// ParseCoordinate converts algebraic notation ("d3", "F5") to a Coordinate.
func ParseCoordinate(s string) (Coordinate, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Coordinate{}, fmt.Errorf("invalid coordinate: %q", s)
	}
	c := Coordinate{X: int(s[0] - 'a'), Y: int(s[1] - '1')}
	if s[0] < 'a' || s[1] < '1' || !c.Valid() {
		return Coordinate{}, fmt.Errorf("coordinate out of bounds: %q", s)
	}
	return c, nil
}

// Strategy is the source of moves for a side.
type Strategy int

const (
	Manual   Strategy = 0
	Computer Strategy = 1
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == Manual || s == Computer
}

func (s Strategy) String() string {
	switch s {
	case Manual:
		return "manual"
	case Computer:
		return "computer"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy accepts "manual"/"human" and "computer"/"cpu".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual", "human", "m":
		return Manual, nil
	case "computer", "cpu", "c":
		return Computer, nil
	}
	return Manual, fmt.Errorf("unknown strategy: %q", s)
}

// Turn is whose move it is, or the result once the game is over.
type Turn struct {
	Side   Side // side to move; meaningless when Over
	Over   bool
	Winner Cell // Empty on a tie; only set when Over
}

// TurnOf returns the turn in which side is to move.
func TurnOf(side Side) Turn {
	return Turn{Side: side}
}

// GameOver returns a finished turn. winner is Empty for a tie.
func GameOver(winner Cell) Turn {
	return Turn{Over: true, Winner: winner}
}

func (t Turn) String() string {
	if !t.Over {
		return fmt.Sprintf("%s to move", t.Side)
	}
	if s, ok := t.Winner.Side(); ok {
		return fmt.Sprintf("%s wins", s)
	}
	return "Tie"
}
