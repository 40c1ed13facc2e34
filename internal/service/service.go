// Package service coordinates one logical transaction per request:
// load the game, validate and mutate it, record statistics, persist, and
// fan out update signals. Games are independent, so mutual exclusion is
// per game id.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"rps/internal/game"
	"rps/internal/notify"
	"rps/internal/stats"
	"rps/internal/storage"
)

// Service owns the game lifecycle against the store.
type Service struct {
	store    *storage.Store
	stats    *stats.Aggregator
	registry *notify.Registry

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a service.
func New(store *storage.Store, agg *stats.Aggregator, registry *notify.Registry) *Service {
	return &Service{
		store:    store,
		stats:    agg,
		registry: registry,
		locks:    make(map[string]*sync.Mutex),
	}
}

// gameLock returns the mutex serializing writes to one game. Two players
// racing on the same round must not both be treated as the round's first
// action, so load-mutate-persist runs under this lock.
func (s *Service) gameLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// CreateGame validates the parameters, creates the game with the creator
// as player one, and persists it.
func (s *Service) CreateGame(ctx context.Context, nickname string, maxRounds int) (*game.Game, error) {
	g, err := game.New(uuid.NewString(), maxRounds, nickname)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal game: %w", err)
	}
	if err := s.store.CreateGame(ctx, g.ID, string(data)); err != nil {
		return nil, fmt.Errorf("persist game: %w", err)
	}
	return g, nil
}

// GetGame returns the redacted view of a game: an undecided last round
// has its actions hidden.
func (s *Service) GetGame(ctx context.Context, id string) (*game.Game, error) {
	g, _, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.Redacted(), nil
}

// Join adds nickname to the game and notifies all players when a slot
// was filled. Rejoining an occupied slot is a no-op success.
func (s *Service) Join(ctx context.Context, id, nickname string) error {
	lock := s.gameLock(id)
	lock.Lock()
	defer lock.Unlock()

	g, version, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	joined, err := g.Join(nickname)
	if err != nil {
		return err
	}
	if !joined {
		return nil
	}
	if err := s.persist(ctx, g, version); err != nil {
		return err
	}
	s.registry.NotifyUpdate(g.Players)
	return nil
}

// SubmitAction records a move, in order: resolve the round, credit the
// round winner, advance or finish the game, credit the game winner,
// persist, notify. Statistics failures are surfaced, never retried,
// since the increments are not idempotent.
func (s *Service) SubmitAction(ctx context.Context, id, nickname, move string) error {
	lock := s.gameLock(id)
	lock.Lock()
	defer lock.Unlock()

	g, version, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	out, err := g.SubmitAction(nickname, move)
	if err != nil {
		return err
	}
	if out.RoundResolved && out.RoundWinner != game.Tie {
		if err := s.stats.RecordRoundWin(ctx, out.RoundWinner); err != nil {
			return fmt.Errorf("record round win: %w", err)
		}
	}
	if out.Finished && out.GameWinner != "" {
		if err := s.stats.RecordGameWin(ctx, out.GameWinner); err != nil {
			return fmt.Errorf("record game win: %w", err)
		}
	}
	if err := s.persist(ctx, g, version); err != nil {
		return err
	}
	s.registry.NotifyUpdate(g.Players)
	return nil
}

// TopStats returns the leaderboard, most game wins first.
func (s *Service) TopStats(ctx context.Context, limit int) ([]storage.StatRow, error) {
	return s.stats.TopByGameWins(ctx, limit)
}

func (s *Service) load(ctx context.Context, id string) (*game.Game, int64, error) {
	row, err := s.store.GetGame(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, &game.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load game: %w", err)
	}
	var g game.Game
	if err := json.Unmarshal([]byte(row.StateJSON), &g); err != nil {
		return nil, 0, fmt.Errorf("unmarshal game %s: %w", id, err)
	}
	return &g, row.Version, nil
}

// persist writes the mutated aggregate back under the version it was
// loaded at. The per-game lock already serializes writers in this
// process; the version check catches any writer outside it.
func (s *Service) persist(ctx context.Context, g *game.Game, version int64) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal game: %w", err)
	}
	if err := s.store.UpdateGame(ctx, g.ID, string(data), version); err != nil {
		return fmt.Errorf("persist game %s: %w", g.ID, err)
	}
	return nil
}
