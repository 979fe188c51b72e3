// Package history archives the results of finished games in SQLite.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"reversi-local/engine"
	"reversi-local/types"
)

//go:embed schema.sql
var schemaSQL string

// Game is one archived result.
type Game struct {
	ID         string
	FinishedAt time.Time
	engine.Result
}

// Totals counts archived outcomes.
type Totals struct {
	DarkWins  int
	LightWins int
	Ties      int
}

// Games returns the number of archived games.
func (t Totals) Games() int {
	return t.DarkWins + t.LightWins + t.Ties
}

// Store is the results archive.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the archive at path.
//
// The database runs in WAL mode with a single connection, so the game can
// record a result while the history command reads.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Record archives a finished game and returns its id.
func (s *Store) Record(ctx context.Context, r engine.Result) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO games (id, finished_at, winner, dark_count, light_count, dark_strategy, light_strategy)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, s.now().UnixMilli(), r.Winner.Symbol(), r.Dark, r.Light, int(r.Strategies[0]), int(r.Strategies[1]))
	if err != nil {
		return "", fmt.Errorf("insert game: %w", err)
	}
	log.Debug().Str("id", id).Stringer("winner", types.GameOver(r.Winner)).Msg("game archived")
	return id, nil
}

// Recent returns up to limit games, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, finished_at, winner, dark_count, light_count, dark_strategy, light_strategy
		FROM games
		ORDER BY finished_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	games := []Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return games, nil
}

func scanGame(rows *sql.Rows) (Game, error) {
	var (
		g           Game
		finished    int64
		winner      string
		dark, light int
	)
	if err := rows.Scan(&g.ID, &finished, &winner, &g.Dark, &g.Light, &dark, &light); err != nil {
		return Game{}, fmt.Errorf("scan game: %w", err)
	}
	if len(winner) != 1 {
		return Game{}, fmt.Errorf("scan game %s: bad winner %q", g.ID, winner)
	}
	cell, ok := types.ParseCell(winner[0])
	if !ok {
		return Game{}, fmt.Errorf("scan game %s: bad winner %q", g.ID, winner)
	}
	g.FinishedAt = time.UnixMilli(finished)
	g.Winner = cell
	g.Strategies = [2]types.Strategy{types.Strategy(dark), types.Strategy(light)}
	return g, nil
}

// Totals counts wins per side and ties over the whole archive.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(winner = 'x'), 0),
			COALESCE(SUM(winner = 'o'), 0),
			COALESCE(SUM(winner = '-'), 0)
		FROM games
	`).Scan(&t.DarkWins, &t.LightWins, &t.Ties)
	if err != nil {
		return Totals{}, fmt.Errorf("query totals: %w", err)
	}
	return t, nil
}
