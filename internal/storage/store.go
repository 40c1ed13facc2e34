package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrVersionConflict is returned by UpdateGame when the stored version no
// longer matches the one the caller loaded.
var ErrVersionConflict = errors.New("game version conflict")

// GameRow is a stored game: the serialized aggregate plus a version
// counter used for optimistic concurrency.
type GameRow struct {
	ID        string
	StateJSON string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatRow is a player's cumulative win counters across all games.
type StatRow struct {
	Nickname  string `json:"nickname"`
	WinRounds int    `json:"win_rounds"`
	WinGames  int    `json:"win_games"`
}

// Store handles SQLite persistence for games and statistics.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			id         TEXT PRIMARY KEY,
			state_json TEXT NOT NULL,
			version    INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS stats (
			nickname   TEXT PRIMARY KEY,
			win_rounds INTEGER NOT NULL DEFAULT 0,
			win_games  INTEGER NOT NULL DEFAULT 0
		);
	`)
	return err
}

// CreateGame inserts a new game at version 1.
func (s *Store) CreateGame(ctx context.Context, id, stateJSON string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO games (id, state_json) VALUES (?, ?)",
		id, stateJSON,
	)
	return err
}

// GetGame retrieves a game by id. Returns sql.ErrNoRows when absent.
func (s *Store) GetGame(ctx context.Context, id string) (*GameRow, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, state_json, version, created_at, updated_at FROM games WHERE id = ?", id)
	var gr GameRow
	if err := row.Scan(&gr.ID, &gr.StateJSON, &gr.Version, &gr.CreatedAt, &gr.UpdatedAt); err != nil {
		return nil, err
	}
	return &gr, nil
}

// UpdateGame replaces a game's state if the stored version still matches
// version, bumping it by one. Returns ErrVersionConflict when another
// writer got there first.
func (s *Store) UpdateGame(ctx context.Context, id, stateJSON string, version int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE games
		SET state_json = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
	`, stateJSON, id, version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}
	return nil
}

// AddRoundWin increments a player's round-win counter, creating the
// record if absent. The single-statement upsert cannot lose an increment
// to a concurrent writer.
func (s *Store) AddRoundWin(ctx context.Context, nickname string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stats (nickname, win_rounds, win_games) VALUES (?, 1, 0)
		ON CONFLICT(nickname) DO UPDATE SET win_rounds = win_rounds + 1
	`, nickname)
	return err
}

// AddGameWin increments a player's game-win counter, creating the record
// if absent.
func (s *Store) AddGameWin(ctx context.Context, nickname string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stats (nickname, win_rounds, win_games) VALUES (?, 0, 1)
		ON CONFLICT(nickname) DO UPDATE SET win_games = win_games + 1
	`, nickname)
	return err
}

// GetStat retrieves one player's counters. Returns sql.ErrNoRows when the
// player has never won anything.
func (s *Store) GetStat(ctx context.Context, nickname string) (*StatRow, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT nickname, win_rounds, win_games FROM stats WHERE nickname = ?", nickname)
	var sr StatRow
	if err := row.Scan(&sr.Nickname, &sr.WinRounds, &sr.WinGames); err != nil {
		return nil, err
	}
	return &sr, nil
}

// TopStats returns up to limit players sorted by game wins descending.
// Order among equal counts is unspecified.
func (s *Store) TopStats(ctx context.Context, limit int) ([]StatRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT nickname, win_rounds, win_games FROM stats ORDER BY win_games DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []StatRow{}
	for rows.Next() {
		var sr StatRow
		if err := rows.Scan(&sr.Nickname, &sr.WinRounds, &sr.WinGames); err != nil {
			return nil, err
		}
		result = append(result, sr)
	}
	return result, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
