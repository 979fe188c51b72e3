// Package snapshot implements the saved-game format for reversi-local.
//
// A snapshot is the entire durable state of a game: the board, whose turn it
// is and the strategy of each side. The text encoding is:
//
//	reversi 1
//	<turn><dark strategy><light strategy>
//	8 lines of 8 cells
//
// turn is x (dark to move), o (light to move) or - (game over); strategies
// are 0 (manual) or 1 (computer); cells are x, o or -.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"reversi-local/board"
	"reversi-local/types"
)

// Version is the current encoding version.
const Version = 1

const header = "reversi"

// ErrCorruptState is returned when a snapshot cannot be decoded.
var ErrCorruptState = errors.New("corrupt saved game")

// Snapshot is the persisted form of a game.
type Snapshot struct {
	Board      board.Board
	Turn       types.Turn
	Strategies [2]types.Strategy
}

// New returns the snapshot of a fresh game with the given strategies.
func New(dark, light types.Strategy) Snapshot {
	return Snapshot{
		Board:      board.New(),
		Turn:       types.TurnOf(types.Dark),
		Strategies: [2]types.Strategy{dark, light},
	}
}

// Encode serializes s.
func Encode(s Snapshot) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", header, Version)

	if s.Turn.Over {
		b.WriteByte('-')
	} else {
		b.WriteString(s.Turn.Side.Symbol())
	}
	for _, st := range s.Strategies {
		fmt.Fprintf(&b, "%d", int(st))
	}
	b.WriteByte('\n')

	b.WriteString(s.Board.String())
	b.WriteByte('\n')
	return []byte(b.String())
}

func corrupt(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorruptState, fmt.Sprintf(format, args...))
}

// Decode parses data produced by Encode. It returns ErrCorruptState for a
// wrong header or version, a wrong line or cell count, or an unknown symbol.
// For a finished game the winner is derived from the board.
func Decode(data []byte) (Snapshot, error) {
	text := string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n")))
	if !strings.HasSuffix(text, "\n") {
		return Snapshot{}, corrupt("truncated")
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(lines) != 2+types.BoardSize {
		return Snapshot{}, corrupt("expected %d lines, got %d", 2+types.BoardSize, len(lines))
	}

	fields := strings.Fields(lines[0])
	if len(fields) != 2 || fields[0] != header {
		return Snapshot{}, corrupt("bad header %q", lines[0])
	}
	version, err := strconv.Atoi(fields[1])
	if err != nil {
		return Snapshot{}, corrupt("bad version %q", fields[1])
	}
	if version != Version {
		return Snapshot{}, corrupt("unsupported version %d", version)
	}

	var s Snapshot
	meta := lines[1]
	if len(meta) != 3 {
		return Snapshot{}, corrupt("bad turn line %q", meta)
	}
	for i, side := range types.Sides {
		st := types.Strategy(meta[1+i] - '0')
		if meta[1+i] < '0' || !st.Valid() {
			return Snapshot{}, corrupt("bad strategy %q for %s", meta[1+i], side)
		}
		s.Strategies[side.Index()] = st
	}

	for y, row := range lines[2:] {
		if len(row) != types.BoardSize {
			return Snapshot{}, corrupt("row %d has %d cells", y+1, len(row))
		}
		for x := 0; x < types.BoardSize; x++ {
			cell, ok := types.ParseCell(row[x])
			if !ok {
				return Snapshot{}, corrupt("bad cell %q at row %d", row[x], y+1)
			}
			s.Board.Set(types.Coordinate{X: x, Y: y}, cell)
		}
	}

	switch meta[0] {
	case 'x':
		s.Turn = types.TurnOf(types.Dark)
	case 'o':
		s.Turn = types.TurnOf(types.Light)
	case '-':
		s.Turn = types.GameOver(s.Board.Winner())
	default:
		return Snapshot{}, corrupt("bad turn %q", meta[0])
	}
	return s, nil
}
