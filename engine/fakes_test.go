package engine

import (
	"context"

	"reversi-local/board"
	"reversi-local/types"
)

type diskEvent struct {
	Coord types.Coordinate
	Cell  types.Cell
}

type searchEvent struct {
	Side      types.Side
	Searching bool
}

// fakeHost records every notification. With deferDisks set, disk
// completions are held in pending until the test releases them.
type fakeHost struct {
	messages      []types.Turn
	counts        [][2]int
	strategies    [][2]int
	searching     []searchEvent
	disks         []diskEvent
	passes        []types.Side
	replaced      int
	confirmations int
	respond       func(bool)

	deferDisks bool
	pending    []func()
}

func (h *fakeHost) MessageChanged(turn types.Turn) {
	h.messages = append(h.messages, turn)
}

func (h *fakeHost) CountsChanged(dark, light int) {
	h.counts = append(h.counts, [2]int{dark, light})
}

func (h *fakeHost) StrategyChanged(side types.Side, s types.Strategy) {
	h.strategies = append(h.strategies, [2]int{int(side), int(s)})
}

func (h *fakeHost) SearchingChanged(side types.Side, searching bool) {
	h.searching = append(h.searching, searchEvent{side, searching})
}

func (h *fakeHost) DiskChanged(c types.Coordinate, cell types.Cell, done func()) {
	h.disks = append(h.disks, diskEvent{c, cell})
	if h.deferDisks {
		h.pending = append(h.pending, done)
		return
	}
	done()
}

func (h *fakeHost) BoardReplaced(board.Board) {
	h.replaced++
}

func (h *fakeHost) Passed(side types.Side) {
	h.passes = append(h.passes, side)
}

func (h *fakeHost) RequestResetConfirmation(respond func(bool)) {
	h.confirmations++
	h.respond = respond
}

// releaseOne completes the oldest pending disk update.
func (h *fakeHost) releaseOne() {
	done := h.pending[0]
	h.pending = h.pending[1:]
	done()
}

func (h *fakeHost) releaseAll() {
	for len(h.pending) > 0 {
		h.releaseOne()
	}
}

func (h *fakeHost) lastMessage() types.Turn {
	return h.messages[len(h.messages)-1]
}

func (h *fakeHost) lastCounts() [2]int {
	return h.counts[len(h.counts)-1]
}

type request struct {
	board    board.Board
	side     types.Side
	onResult func(types.Coordinate)
	token    *Token
}

// firstLegal answers the request with its first legal move.
func (r *request) firstLegal() {
	r.onResult(r.board.LegalMoves(r.side)[0])
}

type fakeSearcher struct {
	requests []*request
}

func (s *fakeSearcher) RequestMove(b board.Board, side types.Side, onResult func(types.Coordinate)) *Token {
	r := &request{board: b, side: side, onResult: onResult, token: NewToken(context.Background())}
	s.requests = append(s.requests, r)
	return r.token
}

func (s *fakeSearcher) last() *request {
	return s.requests[len(s.requests)-1]
}

// live counts requests for side whose token is still valid.
func (s *fakeSearcher) live(side types.Side) int {
	n := 0
	for _, r := range s.requests {
		if r.side == side && !r.token.Cancelled() {
			n++
		}
	}
	return n
}

// queue is a Dispatcher that runs functions only when drained.
type queue struct {
	fns []func()
}

func (q *queue) Dispatch(f func()) {
	q.fns = append(q.fns, f)
}

func (q *queue) drain() {
	for len(q.fns) > 0 {
		f := q.fns[0]
		q.fns = q.fns[1:]
		f()
	}
}

type memStore struct {
	data     []byte
	writes   int
	readErr  error
	writeErr error
}

func (m *memStore) Read() ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.data, nil
}

func (m *memStore) Write(data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.data = append([]byte(nil), data...)
	return nil
}

type fixture struct {
	host     *fakeHost
	searcher *fakeSearcher
	queue    *queue
	ctrl     *Controller
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{host: &fakeHost{}, searcher: &fakeSearcher{}, queue: &queue{}}
	f.ctrl = NewController(f.host, f.searcher, f.queue, opts...)
	return f
}
