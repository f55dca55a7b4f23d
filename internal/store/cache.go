package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetCachedSearch returns the stored result set for a round, or nil when the
// round has never been cached.
func (s *Store) GetCachedSearch(ctx context.Context, roundID int64) (*CachedSearch, error) {
	var (
		cached    CachedSearch
		cachedRaw string
	)
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT round_id, cached_at, results_json FROM cached_searches WHERE round_id = ?`,
		roundID).Scan(&cached.RoundID, &cachedRaw, &cached.ResultsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached search: %w", err)
	}
	if at, parseErr := parseTimeString(cachedRaw); parseErr == nil {
		cached.CachedAt = at
	}
	return &cached, nil
}

// PutCachedSearch stores the result set for a round, replacing any previous
// entry.
func (s *Store) PutCachedSearch(ctx context.Context, roundID int64, cachedAt time.Time, resultsJSON string) error {
	_, err := s.execWithRetry(ensureContext(ctx),
		`INSERT OR REPLACE INTO cached_searches (round_id, cached_at, results_json)
         VALUES (?, ?, ?)`,
		roundID, timestamp(cachedAt), resultsJSON)
	if err != nil {
		return fmt.Errorf("put cached search: %w", err)
	}
	return nil
}

// InvalidateCachedSearch drops the cached result set for a round.
func (s *Store) InvalidateCachedSearch(ctx context.Context, roundID int64) error {
	_, err := s.execWithRetry(ensureContext(ctx),
		`DELETE FROM cached_searches WHERE round_id = ?`, roundID)
	if err != nil {
		return fmt.Errorf("invalidate cached search: %w", err)
	}
	return nil
}
