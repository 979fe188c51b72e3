// Package search computes moves for computer players.
package search

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"reversi-local/board"
	"reversi-local/engine"
	"reversi-local/types"
)

// MaxLevel is the deepest search the Searcher accepts.
const MaxLevel = 8

// ErrNoMove is returned by BestMove when side has no legal move.
var ErrNoMove = errors.New("no legal move")

// Config controls the strength and pace of a Searcher.
type Config struct {
	// Level 0 plays a random legal move; higher levels search that many plies.
	Level int
	// ThinkTime is the minimum time between a request and its result.
	ThinkTime time.Duration
}

// Searcher implements engine.MoveSearcher. It is safe for concurrent use.
type Searcher struct {
	level     atomic.Int32
	thinkTime time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a searcher. Levels outside [0, MaxLevel] are clamped.
func New(cfg Config) *Searcher {
	return NewWithRand(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand is New with an explicit source for the random player.
func NewWithRand(cfg Config, rng *rand.Rand) *Searcher {
	s := &Searcher{thinkTime: cfg.ThinkTime, rng: rng}
	s.SetLevel(cfg.Level)
	return s
}

// Level returns the effective search depth.
func (s *Searcher) Level() int {
	return int(s.level.Load())
}

// SetLevel changes the depth of searches started afterwards.
func (s *Searcher) SetLevel(level int) {
	s.level.Store(int32(min(max(level, 0), MaxLevel)))
}

// RequestMove searches in the background and calls onResult with the chosen
// move unless the returned token is cancelled first.
func (s *Searcher) RequestMove(b board.Board, side types.Side, onResult func(types.Coordinate)) *engine.Token {
	tok := engine.NewToken(context.Background())
	go s.run(tok.Context(), b, side, onResult)
	return tok
}

func (s *Searcher) run(ctx context.Context, b board.Board, side types.Side, onResult func(types.Coordinate)) {
	start := time.Now()
	c, err := s.BestMove(ctx, b, side)
	if err != nil {
		log.Debug().Err(err).Stringer("side", side).Msg("search abandoned")
		return
	}

	if wait := s.thinkTime - time.Since(start); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
	if ctx.Err() != nil {
		return
	}
	onResult(c)
}

// BestMove returns the move side should play on b.
func (s *Searcher) BestMove(ctx context.Context, b board.Board, side types.Side) (types.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return types.Coordinate{}, err
	}
	moves := b.LegalMoves(side)
	if len(moves) == 0 {
		return types.Coordinate{}, ErrNoMove
	}
	level := s.Level()
	if level == 0 {
		s.mu.Lock()
		c := moves[s.rng.Intn(len(moves))]
		s.mu.Unlock()
		return c, nil
	}

	start := time.Now()
	scores := make([]int, len(moves))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range moves {
		g.Go(func() error {
			next := b
			if _, err := next.Place(m, side); err != nil {
				return err
			}
			v, err := negamax(gctx, &next, side.Opposite(), level-1, -infinity, infinity)
			scores[i] = -v
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return types.Coordinate{}, err
	}

	best := 0
	for i := range scores {
		if scores[i] > scores[best] {
			best = i
		}
	}
	log.Debug().
		Stringer("side", side).
		Int("level", level).
		Stringer("coord", moves[best]).
		Int("score", scores[best]).
		Dur("elapsed", time.Since(start)).
		Msg("search finished")
	return moves[best], nil
}

const (
	infinity = 1 << 30
	// win outweighs any positional score.
	win = 1 << 20

	mobilityWeight = 8
)

var weights = [types.BoardSize][types.BoardSize]int{
	{120, -20, 20, 5, 5, 20, -20, 120},
	{-20, -40, -5, -5, -5, -5, -40, -20},
	{20, -5, 15, 3, 3, 15, -5, 20},
	{5, -5, 3, 3, 3, 3, -5, 5},
	{5, -5, 3, 3, 3, 3, -5, 5},
	{20, -5, 15, 3, 3, 15, -5, 20},
	{-20, -40, -5, -5, -5, -5, -40, -20},
	{120, -20, 20, 5, 5, 20, -20, 120},
}

// negamax scores b from the point of view of side, to move.
func negamax(ctx context.Context, b *board.Board, side types.Side, depth, alpha, beta int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	opp := side.Opposite()
	moves := b.LegalMoves(side)
	if len(moves) == 0 {
		if !b.HasLegalMove(opp) {
			return final(b, side), nil
		}
		v, err := negamax(ctx, b, opp, depth, -beta, -alpha)
		return -v, err
	}
	if depth <= 0 {
		return evaluate(b, side, len(moves)), nil
	}

	for _, m := range moves {
		next := *b
		if _, err := next.Place(m, side); err != nil {
			return 0, err
		}
		v, err := negamax(ctx, &next, opp, depth-1, -beta, -alpha)
		if err != nil {
			return 0, err
		}
		if -v > alpha {
			alpha = -v
		}
		if alpha >= beta {
			break
		}
	}
	return alpha, nil
}

func final(b *board.Board, side types.Side) int {
	diff := b.Count(side) - b.Count(side.Opposite())
	switch {
	case diff > 0:
		return win + diff
	case diff < 0:
		return -win + diff
	}
	return 0
}

func evaluate(b *board.Board, side types.Side, mobility int) int {
	own, theirs := side.Cell(), side.Opposite().Cell()
	score := 0
	for y := 0; y < types.BoardSize; y++ {
		for x := 0; x < types.BoardSize; x++ {
			switch b.At(types.Coordinate{X: x, Y: y}) {
			case own:
				score += weights[y][x]
			case theirs:
				score -= weights[y][x]
			}
		}
	}
	return score + mobilityWeight*(mobility-len(b.LegalMoves(side.Opposite())))
}
