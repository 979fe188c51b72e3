package engine

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reversi-local/board"
	"reversi-local/snapshot"
	"reversi-local/types"
)

func at(s string) types.Coordinate {
	c, err := types.ParseCoordinate(s)
	if err != nil {
		panic(err)
	}
	return c
}

func boardFromRows(t *testing.T, rows ...string) board.Board {
	t.Helper()
	require.Len(t, rows, types.BoardSize)
	var b board.Board
	for y, row := range rows {
		require.Len(t, row, types.BoardSize)
		for x := 0; x < types.BoardSize; x++ {
			cell, ok := types.ParseCell(row[x])
			require.True(t, ok)
			b.Set(types.Coordinate{X: x, Y: y}, cell)
		}
	}
	return b
}

func TestStartManual(t *testing.T) {
	f := newFixture()
	assert.Equal(t, Idle, f.ctrl.State().Phase)

	f.ctrl.Start()
	assert.Equal(t, State{Phase: AwaitingMove, Turn: types.TurnOf(types.Dark)}, f.ctrl.State())
	assert.Equal(t, types.TurnOf(types.Dark), f.host.lastMessage())
	assert.Equal(t, [2]int{2, 2}, f.host.lastCounts())
	assert.Equal(t, 1, f.host.replaced)
	assert.Empty(t, f.searcher.requests)

	// Start is a no-op once running.
	f.ctrl.Start()
	assert.Equal(t, 1, f.host.replaced)
}

func TestStartComputerRequestsSearch(t *testing.T) {
	f := newFixture(WithStrategies(types.Computer, types.Manual))
	f.ctrl.Start()

	assert.Equal(t, ComputingMove, f.ctrl.State().Phase)
	require.Len(t, f.searcher.requests, 1)
	assert.Equal(t, types.Dark, f.searcher.last().side)
	assert.Equal(t, board.New(), f.searcher.last().board)
	assert.Contains(t, f.host.searching, searchEvent{types.Dark, true})
	assert.True(t, f.ctrl.Searching(types.Dark))
}

func TestPlaceDiskAtIllegal(t *testing.T) {
	f := newFixture()
	f.ctrl.Start()
	before := f.ctrl.Board()
	messages := len(f.host.messages)

	for _, c := range []types.Coordinate{at("a1"), at("d4"), at("c3"), {X: 9, Y: 9}} {
		err := f.ctrl.PlaceDiskAt(c)
		require.ErrorIs(t, err, board.ErrIllegalMove, "coordinate %s", c)
	}
	assert.Equal(t, before, f.ctrl.Board())
	assert.Equal(t, AwaitingMove, f.ctrl.State().Phase)
	assert.Len(t, f.host.messages, messages)
	assert.Empty(t, f.host.disks)
}

func TestPlaceDiskAtAdvancesTurn(t *testing.T) {
	f := newFixture()
	f.ctrl.Start()

	require.NoError(t, f.ctrl.PlaceDiskAt(at("d3")))
	assert.Equal(t, []diskEvent{
		{at("d3"), types.DarkDisk},
		{at("d4"), types.DarkDisk},
	}, f.host.disks)
	assert.Equal(t, [2]int{4, 1}, f.host.lastCounts())
	assert.Equal(t, State{Phase: AwaitingMove, Turn: types.TurnOf(types.Light)}, f.ctrl.State())
	assert.Equal(t, types.TurnOf(types.Light), f.host.lastMessage())
}

func TestPlaceDiskAtOutsideManualTurn(t *testing.T) {
	f := newFixture(WithStrategies(types.Computer, types.Manual))
	err := f.ctrl.PlaceDiskAt(at("d3"))
	require.ErrorIs(t, err, ErrNotAwaitingMove, "idle")

	f.ctrl.Start()
	err = f.ctrl.PlaceDiskAt(at("d3"))
	require.ErrorIs(t, err, ErrNotAwaitingMove, "computer to move")
	assert.Equal(t, board.New(), f.ctrl.Board())
}

func TestDiskUpdatesAreSequenced(t *testing.T) {
	f := newFixture()
	f.host.deferDisks = true
	f.ctrl.Start()

	require.NoError(t, f.ctrl.PlaceDiskAt(at("d3")))
	// Counts are reported before any animation completes.
	assert.Equal(t, [2]int{4, 1}, f.host.lastCounts())
	assert.Equal(t, Animating, f.ctrl.State().Phase)
	require.Len(t, f.host.disks, 1)

	err := f.ctrl.PlaceDiskAt(at("c3"))
	require.ErrorIs(t, err, ErrNotAwaitingMove)

	// A snapshot taken mid-animation already names the next side.
	assert.Equal(t, types.TurnOf(types.Light), f.ctrl.Snapshot().Turn)

	done := f.host.pending[0]
	f.host.releaseOne()
	require.Len(t, f.host.disks, 2)
	done() // a second call is ignored
	require.Len(t, f.host.disks, 2)
	assert.Equal(t, Animating, f.ctrl.State().Phase)

	f.host.releaseOne()
	assert.Equal(t, State{Phase: AwaitingMove, Turn: types.TurnOf(types.Light)}, f.ctrl.State())
}

func TestComputerMoveApplied(t *testing.T) {
	f := newFixture(WithStrategies(types.Computer, types.Manual))
	f.ctrl.Start()
	r := f.searcher.last()

	r.onResult(at("d3"))
	// Nothing happens until the result reaches the controller's goroutine.
	assert.Equal(t, board.New(), f.ctrl.Board())

	f.queue.drain()
	b := f.ctrl.Board()
	assert.Equal(t, types.DarkDisk, b.At(at("d3")))
	assert.Equal(t, State{Phase: AwaitingMove, Turn: types.TurnOf(types.Light)}, f.ctrl.State())
	assert.False(t, f.ctrl.Searching(types.Dark))
	assert.Equal(t, searchEvent{types.Dark, false}, f.host.searching[len(f.host.searching)-1])
	assert.True(t, r.token.Cancelled(), "token is discarded after use")
}

func TestComputerVsComputer(t *testing.T) {
	var results []Result
	f := newFixture(
		WithStrategies(types.Computer, types.Computer),
		WithGameOverFunc(func(r Result) { results = append(results, r) }),
	)
	f.ctrl.Start()
	for f.ctrl.State().Phase != GameOver {
		require.Equal(t, ComputingMove, f.ctrl.State().Phase)
		f.searcher.last().firstLegal()
		f.queue.drain()
	}
	require.Len(t, results, 1)
	b := f.ctrl.Board()
	assert.Equal(t, b.Count(types.Dark), results[0].Dark)
	assert.Equal(t, b.Count(types.Light), results[0].Light)
	assert.Equal(t, b.Winner(), results[0].Winner)
	assert.True(t, b.IsTerminal())
}

func TestComputerIllegalMovePanics(t *testing.T) {
	f := newFixture(WithStrategies(types.Computer, types.Manual))
	f.ctrl.Start()
	f.searcher.last().onResult(at("a1"))
	assert.Panics(t, f.queue.drain)
}

func TestPass(t *testing.T) {
	var results []Result
	f := newFixture(WithGameOverFunc(func(r Result) { results = append(results, r) }))
	f.ctrl.Restore(snapshot.Snapshot{
		Board: boardFromRows(t,
			"-ox-----",
			"--------",
			"--------",
			"--------",
			"--------",
			"--------",
			"--------",
			"------ox",
		),
		Turn: types.TurnOf(types.Dark),
	})
	f.ctrl.Start()

	require.NoError(t, f.ctrl.PlaceDiskAt(at("a1")))
	assert.Equal(t, []types.Side{types.Light}, f.host.passes)
	assert.Equal(t, State{Phase: AwaitingMove, Turn: types.TurnOf(types.Dark)}, f.ctrl.State(), "light is skipped")

	require.NoError(t, f.ctrl.PlaceDiskAt(at("f8")))
	assert.Equal(t, State{Phase: GameOver, Turn: types.GameOver(types.DarkDisk)}, f.ctrl.State())
	assert.Equal(t, types.GameOver(types.DarkDisk), f.host.lastMessage())
	assert.Equal(t, []Result{{Winner: types.DarkDisk, Dark: 6, Light: 0}}, results)

	err := f.ctrl.PlaceDiskAt(at("a2"))
	assert.ErrorIs(t, err, ErrNotAwaitingMove)
}

func TestGameOverOnFullBoard(t *testing.T) {
	var b board.Board
	for i := 0; i < 64; i++ {
		b.Set(types.Coordinate{X: i % 8, Y: i / 8}, types.LightDisk)
	}
	b.Set(at("a1"), types.Empty)
	for _, s := range []string{"c1", "a2", "b2"} {
		b.Set(at(s), types.DarkDisk)
	}
	for i := 63; b.Count(types.Dark) < 31; i-- {
		b.Set(types.Coordinate{X: i % 8, Y: i / 8}, types.DarkDisk)
	}
	require.Equal(t, 32, b.Count(types.Light))

	var results []Result
	f := newFixture(WithGameOverFunc(func(r Result) { results = append(results, r) }))
	f.ctrl.Restore(snapshot.Snapshot{Board: b, Turn: types.TurnOf(types.Dark)})
	f.ctrl.Start()
	require.NoError(t, f.ctrl.PlaceDiskAt(at("a1")))

	assert.Equal(t, GameOver, f.ctrl.State().Phase)
	assert.Equal(t, types.GameOver(types.DarkDisk), f.ctrl.State().Turn)
	assert.Equal(t, [2]int{33, 31}, f.host.lastCounts())
	require.Len(t, results, 1)
	assert.Equal(t, 33, results[0].Dark)
	assert.Equal(t, 31, results[0].Light)
}

func TestTieGame(t *testing.T) {
	// Dark captures the only light disk of the top row, leaving 3 vs 3 with
	// no moves for either side.
	b := boardFromRows(t,
		"-ox-----",
		"--------",
		"--------",
		"--------",
		"--------",
		"--------",
		"--------",
		"ooo-----",
	)
	f := newFixture()
	f.ctrl.Restore(snapshot.Snapshot{Board: b, Turn: types.TurnOf(types.Dark)})
	f.ctrl.Start()
	require.NoError(t, f.ctrl.PlaceDiskAt(at("a1")))
	assert.Equal(t, types.GameOver(types.Empty), f.ctrl.State().Turn)
	assert.Equal(t, "Tie", f.host.lastMessage().String())
}

func TestSetStrategyCancelsSearch(t *testing.T) {
	f := newFixture(WithStrategies(types.Computer, types.Manual))
	f.ctrl.Start()
	r := f.searcher.last()

	f.ctrl.SetStrategy(types.Dark, types.Manual)
	assert.True(t, r.token.Cancelled())
	assert.False(t, f.ctrl.Searching(types.Dark))
	assert.Equal(t, AwaitingMove, f.ctrl.State().Phase)
	assert.Equal(t, types.Manual, f.ctrl.Strategy(types.Dark))

	// The late result is ignored.
	r.onResult(at("d3"))
	f.queue.drain()
	assert.Equal(t, board.New(), f.ctrl.Board())
	assert.Empty(t, f.host.disks)
	assert.Equal(t, AwaitingMove, f.ctrl.State().Phase)

	// The manual player can move normally.
	require.NoError(t, f.ctrl.PlaceDiskAt(at("c4")))
}

func TestSetStrategyToComputerStartsSearch(t *testing.T) {
	f := newFixture()
	f.ctrl.Start()

	f.ctrl.SetStrategy(types.Dark, types.Computer)
	assert.Equal(t, ComputingMove, f.ctrl.State().Phase)
	require.Len(t, f.searcher.requests, 1)

	f.ctrl.SetStrategy(types.Dark, types.Manual)
	f.ctrl.SetStrategy(types.Dark, types.Computer)
	require.Len(t, f.searcher.requests, 2)
	assert.True(t, f.searcher.requests[0].token.Cancelled())
	assert.Equal(t, 1, f.searcher.live(types.Dark))

	// Setting the same strategy again changes nothing.
	f.ctrl.SetStrategy(types.Dark, types.Computer)
	assert.Len(t, f.searcher.requests, 2)

	// A stale result from the first request is dropped; the current one applies.
	f.searcher.requests[0].onResult(at("d3"))
	f.searcher.requests[1].onResult(at("f5"))
	f.queue.drain()
	b := f.ctrl.Board()
	assert.Equal(t, types.Empty, b.At(at("d3")))
	assert.Equal(t, types.DarkDisk, b.At(at("f5")))
}

func TestSetStrategyForWaitingSide(t *testing.T) {
	f := newFixture()
	f.ctrl.Start()
	f.ctrl.SetStrategy(types.Light, types.Computer)
	assert.Empty(t, f.searcher.requests, "light is not to move")

	require.NoError(t, f.ctrl.PlaceDiskAt(at("d3")))
	assert.Equal(t, ComputingMove, f.ctrl.State().Phase)
	require.Len(t, f.searcher.requests, 1)
	assert.Equal(t, types.Light, f.searcher.last().side)
}

func TestReset(t *testing.T) {
	f := newFixture(WithStrategies(types.Manual, types.Computer))
	f.ctrl.Start()
	require.NoError(t, f.ctrl.PlaceDiskAt(at("d3")))
	moved := f.ctrl.Board()
	r := f.searcher.last()

	f.ctrl.Reset()
	require.Equal(t, 1, f.host.confirmations)
	f.ctrl.Reset()
	assert.Equal(t, 1, f.host.confirmations, "pending confirmation is not repeated")

	f.host.respond(false)
	assert.Equal(t, moved, f.ctrl.Board())
	assert.False(t, r.token.Cancelled())

	f.ctrl.Reset()
	require.Equal(t, 2, f.host.confirmations)
	f.host.respond(true)
	assert.True(t, r.token.Cancelled())
	assert.Equal(t, board.New(), f.ctrl.Board())
	assert.Equal(t, State{Phase: AwaitingMove, Turn: types.TurnOf(types.Dark)}, f.ctrl.State())
	assert.Equal(t, types.Computer, f.ctrl.Strategy(types.Light), "strategies survive a reset")

	// A second answer to the same request does nothing.
	require.NoError(t, f.ctrl.PlaceDiskAt(at("d3")))
	f.host.respond(true)
	assert.NotEqual(t, board.New(), f.ctrl.Board())

	// The light search cancelled by the reset is ignored when it arrives.
	r.onResult(at("c3"))
	f.queue.drain()
	b := f.ctrl.Board()
	assert.Equal(t, types.Empty, b.At(at("c3")))
}

func TestResetVoidsPendingAnimation(t *testing.T) {
	f := newFixture()
	f.host.deferDisks = true
	f.ctrl.Start()
	require.NoError(t, f.ctrl.PlaceDiskAt(at("d3")))
	stale := f.host.pending[0]
	f.host.pending = nil

	f.ctrl.Reset()
	f.host.respond(true)
	require.Equal(t, AwaitingMove, f.ctrl.State().Phase)

	stale()
	assert.Len(t, f.host.disks, 1)
	assert.Equal(t, types.TurnOf(types.Dark), f.ctrl.State().Turn)
	assert.Equal(t, board.New(), f.ctrl.Board())
}

func TestAutosave(t *testing.T) {
	store := &memStore{}
	f := newFixture(WithStore(store))

	f.ctrl.SetStrategy(types.Light, types.Computer)
	assert.Zero(t, store.writes, "idle controller does not overwrite the saved game")

	f.ctrl.Start()
	require.Equal(t, 1, store.writes)
	require.NoError(t, f.ctrl.PlaceDiskAt(at("d3")))

	s, err := snapshot.Decode(store.data)
	require.NoError(t, err)
	assert.Equal(t, f.ctrl.Snapshot(), s)
	assert.Equal(t, types.TurnOf(types.Light), s.Turn)
	assert.Equal(t, [2]types.Strategy{types.Manual, types.Computer}, s.Strategies)
}

func TestAutosaveFailureIsNotFatal(t *testing.T) {
	store := &memStore{writeErr: snapshot.ErrIO}
	f := newFixture(WithStore(store))
	f.ctrl.Start()
	require.NoError(t, f.ctrl.PlaceDiskAt(at("d3")))
	assert.ErrorIs(t, f.ctrl.Save(), snapshot.ErrIO)
}

func TestLoad(t *testing.T) {
	saved := &memStore{}
	a := newFixture(WithStore(saved), WithStrategies(types.Manual, types.Computer))
	a.ctrl.Start()
	require.NoError(t, a.ctrl.PlaceDiskAt(at("d3")))
	require.NoError(t, a.ctrl.Save())

	b := newFixture(WithStore(saved))
	require.NoError(t, b.ctrl.Load())
	assert.Equal(t, a.ctrl.Snapshot(), b.ctrl.Snapshot())
	assert.Equal(t, Idle, b.ctrl.State().Phase)
	assert.Equal(t, 1, b.host.replaced)

	b.ctrl.Start()
	assert.Equal(t, ComputingMove, b.ctrl.State().Phase)
	assert.Equal(t, types.Light, b.searcher.last().side)
}

func TestLoadFailureLeavesStateUntouched(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		readErr error
		want    error
	}{
		{"truncated", "reversi 1\nx00\n---", nil, snapshot.ErrCorruptState},
		{"out of range", "reversi 1\nx09\n", nil, snapshot.ErrCorruptState},
		{"read error", "", snapshot.ErrNotExist, snapshot.ErrIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			f := newFixture(WithStore(store), WithStrategies(types.Manual, types.Computer))
			f.ctrl.Start()
			require.NoError(t, f.ctrl.PlaceDiskAt(at("d3")))
			before := f.ctrl.Snapshot()
			state := f.ctrl.State()
			r := f.searcher.last()

			store.data = []byte(tt.data)
			store.readErr = tt.readErr
			err := f.ctrl.Load()
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, f.ctrl.Snapshot())
			assert.Equal(t, state, f.ctrl.State())
			assert.False(t, r.token.Cancelled(), "the running search survives a failed load")
		})
	}
}

func TestSaveWithoutStore(t *testing.T) {
	f := newFixture()
	assert.True(t, errors.Is(f.ctrl.Save(), snapshot.ErrIO))
	assert.True(t, errors.Is(f.ctrl.Load(), snapshot.ErrIO))
}

func TestRestoreHandEditedStuckTurn(t *testing.T) {
	// Light is recorded to move but has no legal move; dark has one.
	f := newFixture()
	f.ctrl.Restore(snapshot.Snapshot{
		Board: boardFromRows(t,
			"------ox",
			"--------",
			"--------",
			"--------",
			"--------",
			"--------",
			"--------",
			"--------",
		),
		Turn: types.TurnOf(types.Light),
	})
	f.ctrl.Start()
	assert.Equal(t, []types.Side{types.Light}, f.host.passes)
	assert.Equal(t, State{Phase: AwaitingMove, Turn: types.TurnOf(types.Dark)}, f.ctrl.State())
}

// TestAtMostOneSearchPerSide drives the controller with random inputs and
// checks that no side ever has two live searches.
func TestAtMostOneSearchPerSide(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for run := 0; run < 50; run++ {
		f := newFixture(WithStrategies(types.Strategy(rng.Intn(2)), types.Strategy(rng.Intn(2))))
		f.host.deferDisks = rng.Intn(2) == 0
		f.ctrl.Start()

		for step := 0; step < 300 && f.ctrl.State().Phase != GameOver; step++ {
			switch rng.Intn(6) {
			case 0:
				f.ctrl.SetStrategy(types.Sides[rng.Intn(2)], types.Strategy(rng.Intn(2)))
			case 1:
				if len(f.searcher.requests) > 0 {
					r := f.searcher.requests[rng.Intn(len(f.searcher.requests))]
					r.firstLegal()
				}
			case 2:
				f.queue.drain()
			case 3:
				if len(f.host.pending) > 0 {
					f.host.releaseOne()
				}
			case 4:
				b := f.ctrl.Board()
				moves := b.LegalMoves(f.ctrl.State().Turn.Side)
				if len(moves) > 0 {
					_ = f.ctrl.PlaceDiskAt(moves[rng.Intn(len(moves))])
				}
			case 5:
				if rng.Intn(10) == 0 {
					f.ctrl.Reset()
					f.host.respond(rng.Intn(2) == 0)
				}
			}
			for _, side := range types.Sides {
				require.LessOrEqual(t, f.searcher.live(side), 1, "run %d step %d side %s", run, step, side)
				assert.Equal(t, f.searcher.live(side) == 1, f.ctrl.Searching(side))
			}
			b := f.ctrl.Board()
			require.Equal(t, 64, b.Count(types.Dark)+b.Count(types.Light)+countEmpty(&b))
		}
	}
}

func countEmpty(b *board.Board) int {
	n := 0
	for y := 0; y < types.BoardSize; y++ {
		for x := 0; x < types.BoardSize; x++ {
			if b.At(types.Coordinate{X: x, Y: y}) == types.Empty {
				n++
			}
		}
	}
	return n
}
