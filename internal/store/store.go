package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/moonlit-games/werewolf/internal/game"
)

var ErrNotFound = errors.New("game not found")

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id       TEXT PRIMARY KEY,
	winner   TEXT NOT NULL,
	day      INTEGER NOT NULL,
	state    TEXT NOT NULL,
	saved_at TIMESTAMP NOT NULL
);`

// Record summarizes a persisted game for listings.
type Record struct {
	ID      string    `db:"id" json:"id"`
	Winner  string    `db:"winner" json:"winner"`
	Day     int       `db:"day" json:"day"`
	SavedAt time.Time `db:"saved_at" json:"savedAt"`
}

// Store persists finished and in-flight games as JSON snapshots in sqlite.
type Store struct {
	db *sqlx.DB
}

func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save upserts the snapshot under the given id.
func (s *Store) Save(ctx context.Context, id string, g game.GameState) error {
	blob, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encoding game %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO games (id, winner, day, state, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			winner = excluded.winner,
			day = excluded.day,
			state = excluded.state,
			saved_at = excluded.saved_at`,
		id, string(g.Winner), g.Day, string(blob), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving game %s: %w", id, err)
	}
	return nil
}

// Load returns the snapshot stored under id.
func (s *Store) Load(ctx context.Context, id string) (game.GameState, error) {
	var blob string
	err := s.db.GetContext(ctx, &blob, `SELECT state FROM games WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return game.GameState{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return game.GameState{}, fmt.Errorf("loading game %s: %w", id, err)
	}
	var g game.GameState
	if err := json.Unmarshal([]byte(blob), &g); err != nil {
		return game.GameState{}, fmt.Errorf("decoding game %s: %w", id, err)
	}
	return g, nil
}

// List returns saved games, newest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	var out []Record
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, winner, day, saved_at FROM games ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return out, nil
}
