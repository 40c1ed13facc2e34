// Package stats tracks cumulative per-player win counters. Records are
// keyed by nickname and shared across games, so every update goes
// straight to the store rather than through an in-memory cache.
package stats

import (
	"context"

	"rps/internal/storage"
)

// Aggregator records round and game wins and serves the leaderboard.
type Aggregator struct {
	store *storage.Store
}

// New creates an aggregator backed by store.
func New(store *storage.Store) *Aggregator {
	return &Aggregator{store: store}
}

// RecordRoundWin credits nickname with one round win.
func (a *Aggregator) RecordRoundWin(ctx context.Context, nickname string) error {
	return a.store.AddRoundWin(ctx, nickname)
}

// RecordGameWin credits nickname with one game win.
func (a *Aggregator) RecordGameWin(ctx context.Context, nickname string) error {
	return a.store.AddGameWin(ctx, nickname)
}

// TopByGameWins returns up to limit players, most game wins first.
func (a *Aggregator) TopByGameWins(ctx context.Context, limit int) ([]storage.StatRow, error) {
	return a.store.TopStats(ctx, limit)
}
