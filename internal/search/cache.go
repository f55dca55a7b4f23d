package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"racecarr/internal/indexer"
	"racecarr/internal/logging"
	"racecarr/internal/media"
	"racecarr/internal/scoring"
	"racecarr/internal/services"
	"racecarr/internal/store"
)

// CacheTTL is how long a round's search results stay fresh.
const CacheTTL = 24 * time.Hour

// RoundResult is the outcome of a cached round search.
type RoundResult struct {
	Results   []media.Candidate `json:"results"`
	FromCache bool              `json:"from_cache"`
	CachedAt  *time.Time        `json:"cached_at,omitempty"`
	TTL       time.Duration     `json:"-"`
}

// RoundSearchService serves round searches through the persistent result
// cache: one entry per round, refreshed on expiry or on demand.
type RoundSearchService struct {
	store    *store.Store
	orch     *Orchestrator
	settings scoring.Settings
	logger   *slog.Logger
	now      func() time.Time
	ttl      time.Duration
}

// NewRoundSearchService constructs the cached round search service.
func NewRoundSearchService(st *store.Store, orch *Orchestrator, settings scoring.Settings, logger *slog.Logger) *RoundSearchService {
	return &RoundSearchService{
		store:    st,
		orch:     orch,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "search"),
		now:      time.Now,
		ttl:      CacheTTL,
	}
}

// Search returns the round's candidates, serving from cache when a fresh
// entry exists. force bypasses the cache and refreshes it. A cache row that
// no longer deserializes counts as a miss.
func (s *RoundSearchService) Search(ctx context.Context, roundID int64, force bool) (*RoundResult, error) {
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("load round: %w", err)
	}
	if round == nil {
		return nil, services.Wrap(services.ErrNotFound, "search", "round", fmt.Sprintf("round %d not found", roundID), nil)
	}

	if !force {
		if result := s.fromCache(ctx, roundID); result != nil {
			return result, nil
		}
	}

	indexers, err := s.store.EnabledIndexers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load indexers: %w", err)
	}
	endpoints := Endpoints(indexers)

	results := s.orch.SearchRound(ctx, endpoints, *round, nil)
	scoring.Apply(results, s.settings)

	now := s.now().UTC()
	if payload, marshalErr := json.Marshal(results); marshalErr != nil {
		s.logger.Warn("marshal round results failed",
			logging.Int64(logging.FieldRound, roundID),
			logging.Error(marshalErr))
	} else if putErr := s.store.PutCachedSearch(ctx, roundID, now, string(payload)); putErr != nil {
		s.logger.Warn("cache round results failed",
			logging.Int64(logging.FieldRound, roundID),
			logging.Error(putErr))
	}

	return &RoundResult{
		Results:   results,
		FromCache: false,
		CachedAt:  &now,
		TTL:       s.ttl,
	}, nil
}

func (s *RoundSearchService) fromCache(ctx context.Context, roundID int64) *RoundResult {
	cached, err := s.store.GetCachedSearch(ctx, roundID)
	if err != nil {
		s.logger.Warn("read cached round results failed",
			logging.Int64(logging.FieldRound, roundID),
			logging.Error(err))
		return nil
	}
	if cached == nil {
		return nil
	}

	age := s.now().Sub(cached.CachedAt)
	if age >= s.ttl {
		return nil
	}

	var results []media.Candidate
	if err := json.Unmarshal([]byte(cached.ResultsJSON), &results); err != nil {
		s.logger.Warn("cached round results unreadable; refreshing",
			logging.Int64(logging.FieldRound, roundID),
			logging.Error(err))
		return nil
	}

	cachedAt := cached.CachedAt
	return &RoundResult{
		Results:   results,
		FromCache: true,
		CachedAt:  &cachedAt,
		TTL:       s.ttl - age,
	}
}

// Endpoints converts stored indexer rows into query endpoints.
func Endpoints(indexers []store.Indexer) []indexer.Endpoint {
	endpoints := make([]indexer.Endpoint, 0, len(indexers))
	for _, row := range indexers {
		endpoints = append(endpoints, indexer.Endpoint{
			Name:     row.Name,
			APIURL:   row.APIURL,
			APIKey:   row.APIKey,
			Category: row.Category,
		})
	}
	return endpoints
}
