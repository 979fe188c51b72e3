package engine

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"reversi-local/board"
	"reversi-local/snapshot"
	"reversi-local/types"
)

// Phase is the controller's position in the turn cycle.
type Phase int

const (
	// Idle: constructed or just restored, waiting for Start.
	Idle Phase = iota
	// AwaitingMove: a manual side is to move.
	AwaitingMove
	// ComputingMove: a search is running for the side to move.
	ComputingMove
	// Animating: a move was applied and the host is still showing it.
	Animating
	// GameOver: neither side can move.
	GameOver
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingMove:
		return "awaiting-move"
	case ComputingMove:
		return "computing-move"
	case Animating:
		return "animating"
	case GameOver:
		return "game-over"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// State is the observable state of the controller.
type State struct {
	Phase Phase
	Turn  types.Turn
}

// Option configures a Controller.
type Option func(*Controller)

// WithStore enables Save, Load and autosave after every settled transition.
func WithStore(s Store) Option {
	return func(c *Controller) {
		c.store = s
	}
}

// WithStrategies sets the initial strategy of each side.
func WithStrategies(dark, light types.Strategy) Option {
	return func(c *Controller) {
		c.strategies = [2]types.Strategy{dark, light}
	}
}

// WithGameOverFunc registers fn to be called once for every game that ends
// through play.
func WithGameOverFunc(fn func(Result)) Option {
	return func(c *Controller) {
		c.onGameOver = fn
	}
}

// Controller is the turn state machine. It is not safe for concurrent use:
// every method, and every callback handed to the host, must run on the
// same goroutine. Search results reach that goroutine through the Dispatcher.
type Controller struct {
	host       Host
	searcher   MoveSearcher
	dispatcher Dispatcher
	store      Store
	onGameOver func(Result)

	board      board.Board
	turn       types.Turn
	phase      Phase
	strategies [2]types.Strategy
	tokens     [2]*Token

	// epoch changes whenever the board is replaced wholesale; disk
	// completions from an older epoch are ignored.
	epoch      uint64
	confirming bool
}

// NewController returns an idle controller holding a fresh game with dark to move.
func NewController(host Host, searcher MoveSearcher, dispatcher Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		host:       host,
		searcher:   searcher,
		dispatcher: dispatcher,
		board:      board.New(),
		turn:       types.TurnOf(types.Dark),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current phase and turn.
func (c *Controller) State() State {
	return State{Phase: c.phase, Turn: c.turn}
}

// Board returns a copy of the current board.
func (c *Controller) Board() board.Board {
	return c.board
}

// Strategy returns the move source of side.
func (c *Controller) Strategy(side types.Side) types.Strategy {
	return c.strategies[side.Index()]
}

// Searching reports whether a search is outstanding for side.
func (c *Controller) Searching(side types.Side) bool {
	return c.tokens[side.Index()] != nil
}

// Start begins play from the idle state. It does nothing in any other phase.
func (c *Controller) Start() {
	if c.phase != Idle {
		return
	}
	c.notifyAll()
	c.enterTurn()
	c.autosave()
}

// PlaceDiskAt plays a manual move for the side to move. It returns
// ErrNotAwaitingMove outside a manual turn and board.ErrIllegalMove for an
// illegal coordinate; in both cases nothing changes.
func (c *Controller) PlaceDiskAt(coord types.Coordinate) error {
	if c.phase != AwaitingMove {
		return fmt.Errorf("%w (phase %s)", ErrNotAwaitingMove, c.phase)
	}
	return c.applyMove(coord, c.turn.Side)
}

// SetStrategy changes the move source of side. An outstanding search for side
// is cancelled before anything else happens.
func (c *Controller) SetStrategy(side types.Side, strategy types.Strategy) {
	i := side.Index()
	if c.strategies[i] == strategy {
		return
	}
	c.cancelSearch(side)
	c.strategies[i] = strategy
	c.host.StrategyChanged(side, strategy)
	log.Debug().Stringer("side", side).Stringer("strategy", strategy).Stringer("phase", c.phase).Msg("strategy changed")

	if !c.turn.Over && c.turn.Side == side {
		switch {
		case c.phase == ComputingMove && strategy == types.Manual:
			c.phase = AwaitingMove
		case c.phase == AwaitingMove && strategy == types.Computer:
			c.phase = ComputingMove
			c.requestMove(side)
		}
	}
	c.autosave()
}

// Reset asks the host for confirmation and, if given, starts a new game.
// Strategies are kept. A Reset while a confirmation is pending is ignored.
func (c *Controller) Reset() {
	if c.confirming {
		return
	}
	c.confirming = true
	answered := false
	c.host.RequestResetConfirmation(func(ok bool) {
		if answered {
			return
		}
		answered = true
		c.confirming = false
		if ok {
			c.reset()
		}
	})
}

func (c *Controller) reset() {
	log.Info().Msg("new game")
	c.replace(snapshot.New(c.strategies[0], c.strategies[1]))
	c.Start()
}

// Snapshot returns the durable state. While a move is still being shown the
// turn it will settle on is reported.
func (c *Controller) Snapshot() snapshot.Snapshot {
	turn := c.turn
	if c.phase == Animating {
		turn, _ = c.nextTurn(c.turn.Side)
	}
	return snapshot.Snapshot{
		Board:      c.board,
		Turn:       turn,
		Strategies: c.strategies,
	}
}

// Restore replaces the whole game with s and leaves the controller idle.
// Outstanding searches are cancelled and pending disk updates are voided.
func (c *Controller) Restore(s snapshot.Snapshot) {
	c.replace(s)
	c.notifyAll()
}

// Save writes the current snapshot to the store.
func (c *Controller) Save() error {
	if c.store == nil {
		return fmt.Errorf("%w: no store configured", snapshot.ErrIO)
	}
	return c.store.Write(snapshot.Encode(c.Snapshot()))
}

// Load reads and restores the saved game. On any error nothing changes.
// After a successful load the controller is idle; call Start to resume.
func (c *Controller) Load() error {
	if c.store == nil {
		return fmt.Errorf("%w: no store configured", snapshot.ErrIO)
	}
	data, err := c.store.Read()
	if err != nil {
		return err
	}
	s, err := snapshot.Decode(data)
	if err != nil {
		return err
	}
	c.Restore(s)
	log.Info().Stringer("turn", s.Turn).Msg("game loaded")
	return nil
}

func (c *Controller) replace(s snapshot.Snapshot) {
	for _, side := range types.Sides {
		c.cancelSearch(side)
	}
	c.epoch++
	c.board = s.Board
	c.turn = s.Turn
	c.strategies = s.Strategies
	c.phase = Idle
}

func (c *Controller) counts() (dark, light int) {
	return c.board.Count(types.Dark), c.board.Count(types.Light)
}

func (c *Controller) notifyAll() {
	c.host.BoardReplaced(c.board)
	c.host.CountsChanged(c.counts())
	for _, side := range types.Sides {
		c.host.StrategyChanged(side, c.strategies[side.Index()])
		c.host.SearchingChanged(side, c.Searching(side))
	}
	c.host.MessageChanged(c.turn)
}

// nextTurn decides who moves after mover played.
func (c *Controller) nextTurn(mover types.Side) (turn types.Turn, passed bool) {
	opp := mover.Opposite()
	switch {
	case c.board.IsFull():
		return types.GameOver(c.board.Winner()), false
	case c.board.HasLegalMove(opp):
		return types.TurnOf(opp), false
	case c.board.HasLegalMove(mover):
		return types.TurnOf(mover), true
	}
	return types.GameOver(c.board.Winner()), false
}

// enterTurn moves into the phase matching c.turn and the strategy of the side
// to move.
func (c *Controller) enterTurn() {
	if !c.turn.Over && !c.board.HasLegalMove(c.turn.Side) {
		// Only a hand-edited save gets here.
		stuck := c.turn.Side
		turn, passed := c.nextTurn(stuck.Opposite())
		c.turn = turn
		if passed {
			c.host.Passed(stuck)
		}
	}

	c.host.MessageChanged(c.turn)
	if c.turn.Over {
		c.phase = GameOver
		return
	}
	side := c.turn.Side
	if c.strategies[side.Index()] == types.Computer {
		c.phase = ComputingMove
		c.requestMove(side)
		return
	}
	c.phase = AwaitingMove
}

func (c *Controller) applyMove(coord types.Coordinate, side types.Side) error {
	flips, err := c.board.Place(coord, side)
	if err != nil {
		return err
	}
	log.Debug().Stringer("side", side).Stringer("coord", coord).Int("flips", len(flips)).Msg("disk placed")

	c.phase = Animating
	c.host.CountsChanged(c.counts())

	changed := make([]types.Coordinate, 0, len(flips)+1)
	changed = append(changed, coord)
	changed = append(changed, flips...)
	c.showDisks(changed, side.Cell(), func() {
		c.afterMove(side)
	})
	return nil
}

// showDisks reports each coordinate to the host in order, waiting for the
// host's completion before the next one, then calls then.
func (c *Controller) showDisks(coords []types.Coordinate, cell types.Cell, then func()) {
	epoch := c.epoch
	var step func(i int)
	step = func(i int) {
		if i == len(coords) {
			then()
			return
		}
		fired := false
		c.host.DiskChanged(coords[i], cell, func() {
			if fired || c.epoch != epoch {
				return
			}
			fired = true
			step(i + 1)
		})
	}
	step(0)
}

func (c *Controller) afterMove(mover types.Side) {
	turn, passed := c.nextTurn(mover)
	c.turn = turn
	if passed {
		log.Debug().Stringer("side", mover.Opposite()).Msg("pass")
		c.host.Passed(mover.Opposite())
	}
	c.enterTurn()
	if c.turn.Over {
		c.finish()
	}
	c.autosave()
}

func (c *Controller) finish() {
	dark, light := c.counts()
	log.Info().Int("dark", dark).Int("light", light).Stringer("result", c.turn).Msg("game over")
	if c.onGameOver != nil {
		c.onGameOver(Result{
			Winner:     c.turn.Winner,
			Dark:       dark,
			Light:      light,
			Strategies: c.strategies,
		})
	}
}

func (c *Controller) requestMove(side types.Side) {
	i := side.Index()
	if c.tokens[i] != nil {
		panic(PreconditionViolation{What: fmt.Sprintf("second search requested for %s", side)})
	}
	c.host.SearchingChanged(side, true)
	log.Debug().Stringer("side", side).Msg("search requested")

	var tok *Token
	tok = c.searcher.RequestMove(c.board, side, func(coord types.Coordinate) {
		c.dispatcher.Dispatch(func() {
			c.searchDone(side, tok, coord)
		})
	})
	c.tokens[i] = tok
}

func (c *Controller) searchDone(side types.Side, tok *Token, coord types.Coordinate) {
	i := side.Index()
	if tok.Cancelled() || c.tokens[i] != tok {
		log.Debug().Stringer("side", side).Stringer("coord", coord).Msg("discarding stale search result")
		return
	}
	c.tokens[i] = nil
	tok.Cancel()
	c.host.SearchingChanged(side, false)

	if c.phase != ComputingMove || c.turn.Side != side {
		panic(PreconditionViolation{What: fmt.Sprintf("search result for %s in phase %s", side, c.phase)})
	}
	if err := c.applyMove(coord, side); err != nil {
		panic(PreconditionViolation{What: fmt.Sprintf("search proposed %s for %s: %v", coord, side, err)})
	}
}

// cancelSearch cancels the outstanding search for side, if any.
func (c *Controller) cancelSearch(side types.Side) {
	i := side.Index()
	tok := c.tokens[i]
	if tok == nil {
		return
	}
	tok.Cancel()
	c.tokens[i] = nil
	c.host.SearchingChanged(side, false)
	log.Debug().Stringer("side", side).Msg("search cancelled")
}

func (c *Controller) autosave() {
	if c.store == nil || c.phase == Idle {
		return
	}
	if err := c.Save(); err != nil {
		log.Warn().Err(err).Msg("autosave failed")
	}
}
