package search

import (
	"context"
	"testing"
	"time"

	"racecarr/internal/media"
	"racecarr/internal/scoring"
	"racecarr/internal/testsupport"
)

func newCachedService(t *testing.T, searcher *fakeSearcher) (*RoundSearchService, *media.Round) {
	t.Helper()

	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.SeedIndexer(t, st, "one", "https://indexer.test", "key")
	round := testsupport.SeedRound(t, st, 2025, 8, "Monaco Grand Prix", map[string]time.Time{
		"race": time.Now().UTC().Add(-24 * time.Hour),
	})

	orch := NewOrchestrator(searcher, discardLogger(), 50)
	settings := scoring.Settings{MinResolution: "720p", MaxResolution: "2160p", AllowHDR: true, Threshold: 70}
	svc := NewRoundSearchService(st, orch, settings, discardLogger())
	return svc, round
}

func TestRoundSearchServiceCachesResults(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]media.Candidate{
		"monaco": {
			{Title: "F1 2025 Monaco Grand Prix Race 1080p", NZBURL: "https://indexer.test/get/1"},
		},
	}}
	svc, round := newCachedService(t, searcher)
	ctx := context.Background()

	fresh, err := svc.Search(ctx, round.ID, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if fresh.FromCache {
		t.Fatal("first search must not be served from cache")
	}
	if len(fresh.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(fresh.Results))
	}
	if fresh.Results[0].Score == nil {
		t.Fatal("results must be scored before caching")
	}

	searcher.mu.Lock()
	callsAfterFirst := len(searcher.calls)
	searcher.mu.Unlock()

	cached, err := svc.Search(ctx, round.ID, false)
	if err != nil {
		t.Fatalf("Search cached: %v", err)
	}
	if !cached.FromCache {
		t.Fatal("second search must be served from cache")
	}
	if cached.CachedAt == nil {
		t.Fatal("cached result missing cached_at")
	}
	if len(cached.Results) != 1 || cached.Results[0].NZBURL != fresh.Results[0].NZBURL {
		t.Fatalf("cached results differ: %+v", cached.Results)
	}

	searcher.mu.Lock()
	callsAfterSecond := len(searcher.calls)
	searcher.mu.Unlock()
	if callsAfterSecond != callsAfterFirst {
		t.Fatalf("cached search must not hit indexers: %d -> %d calls", callsAfterFirst, callsAfterSecond)
	}
}

func TestRoundSearchServiceForceRefreshes(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]media.Candidate{
		"monaco": {
			{Title: "F1 2025 Monaco Grand Prix Race 1080p", NZBURL: "https://indexer.test/get/1"},
		},
	}}
	svc, round := newCachedService(t, searcher)
	ctx := context.Background()

	if _, err := svc.Search(ctx, round.ID, false); err != nil {
		t.Fatalf("Search: %v", err)
	}

	searcher.mu.Lock()
	callsBefore := len(searcher.calls)
	searcher.mu.Unlock()

	forced, err := svc.Search(ctx, round.ID, true)
	if err != nil {
		t.Fatalf("Search force: %v", err)
	}
	if forced.FromCache {
		t.Fatal("forced search must bypass the cache")
	}

	searcher.mu.Lock()
	callsAfter := len(searcher.calls)
	searcher.mu.Unlock()
	if callsAfter <= callsBefore {
		t.Fatal("forced search must hit indexers again")
	}
}

func TestRoundSearchServiceExpiredCacheRefreshes(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]media.Candidate{
		"monaco": {
			{Title: "F1 2025 Monaco Grand Prix Race 1080p", NZBURL: "https://indexer.test/get/1"},
		},
	}}
	svc, round := newCachedService(t, searcher)
	ctx := context.Background()

	if _, err := svc.Search(ctx, round.ID, false); err != nil {
		t.Fatalf("Search: %v", err)
	}

	// Move the clock past the TTL so the cache row counts as stale.
	svc.now = func() time.Time { return time.Now().Add(CacheTTL + time.Minute) }

	refreshed, err := svc.Search(ctx, round.ID, false)
	if err != nil {
		t.Fatalf("Search after expiry: %v", err)
	}
	if refreshed.FromCache {
		t.Fatal("expired cache entry must not be served")
	}
}

func TestRoundSearchServiceUnknownRound(t *testing.T) {
	svc, _ := newCachedService(t, &fakeSearcher{})

	if _, err := svc.Search(context.Background(), 9999, false); err == nil {
		t.Fatal("expected an error for an unknown round")
	}
}
