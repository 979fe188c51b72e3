// Package engine drives a game of Reversi: it owns the board, decides whose
// turn it is, asks the right move source for a move and tells the host what
// changed.
package engine

import (
	"errors"
	"fmt"

	"reversi-local/board"
	"reversi-local/types"
)

// ErrNotAwaitingMove is returned by PlaceDiskAt when no manual move is expected.
var ErrNotAwaitingMove = errors.New("not awaiting a manual move")

// PreconditionViolation is the panic value used when an internal invariant
// is broken. It signals a programming error, never an operating condition.
type PreconditionViolation struct {
	What string
}

func (p PreconditionViolation) Error() string {
	return fmt.Sprintf("precondition violation: %s", p.What)
}

// Host receives every state change. All methods are called on the
// controller's goroutine.
type Host interface {
	// MessageChanged reports whose turn it is, or the result.
	MessageChanged(turn types.Turn)

	// CountsChanged reports the number of disks of each side.
	CountsChanged(dark, light int)

	// StrategyChanged reports the move source of a side.
	StrategyChanged(side types.Side, strategy types.Strategy)

	// SearchingChanged reports whether a computer search runs for side.
	SearchingChanged(side types.Side, searching bool)

	// DiskChanged asks the host to show cell at c. The host calls done, on the
	// controller's goroutine, once its (possibly animated) update finished.
	DiskChanged(c types.Coordinate, cell types.Cell, done func())

	// BoardReplaced reports a wholesale board change (reset, load).
	BoardReplaced(b board.Board)

	// Passed reports that side had no legal move and was skipped.
	Passed(side types.Side)

	// RequestResetConfirmation asks the user whether to start over. The host
	// must eventually call respond on the controller's goroutine.
	RequestResetConfirmation(respond func(bool))
}

// MoveSearcher computes moves for computer-controlled sides.
type MoveSearcher interface {
	// RequestMove starts computing a move for side on b and returns at once.
	// onResult is called from any goroutine with a legal coordinate, unless the
	// returned token is cancelled first. b is a copy owned by the search.
	RequestMove(b board.Board, side types.Side, onResult func(types.Coordinate)) *Token
}

// Dispatcher runs functions on the controller's goroutine. Dispatch must not
// run f before returning.
type Dispatcher interface {
	Dispatch(f func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(f func())

// Dispatch calls d(f).
func (d DispatcherFunc) Dispatch(f func()) {
	d(f)
}

// Store is the byte sink and source used for saved games.
type Store interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// Result summarizes a finished game.
type Result struct {
	Winner     types.Cell // Empty on a tie
	Dark       int
	Light      int
	Strategies [2]types.Strategy
}
