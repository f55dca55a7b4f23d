package testsupport

import (
	"context"
	"testing"
	"time"

	"racecarr/internal/config"
	"racecarr/internal/media"
	"racecarr/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedRound creates a season and one round with the given events, returning
// the stored round with identifiers filled in. Event start times are relative
// offsets from the provided reference time.
func SeedRound(t testing.TB, st *store.Store, year, roundNumber int, name string, events map[string]time.Time) *media.Round {
	t.Helper()

	ctx := context.Background()
	season, err := st.UpsertSeason(ctx, year)
	if err != nil {
		t.Fatalf("store.UpsertSeason: %v", err)
	}

	round := media.Round{
		RoundNumber: roundNumber,
		Name:        name,
	}
	for eventType, start := range events {
		startUTC := start.UTC()
		round.Events = append(round.Events, media.Event{
			Type:     eventType,
			StartUTC: &startUTC,
		})
	}

	existing, err := st.RoundsForSeason(ctx, season.ID)
	if err != nil {
		t.Fatalf("store.RoundsForSeason: %v", err)
	}
	existing = append(existing, round)
	if err := st.ReplaceSeasonRounds(ctx, season.ID, existing); err != nil {
		t.Fatalf("store.ReplaceSeasonRounds: %v", err)
	}

	rounds, err := st.RoundsForSeason(ctx, season.ID)
	if err != nil {
		t.Fatalf("store.RoundsForSeason: %v", err)
	}
	for i := range rounds {
		if rounds[i].RoundNumber == roundNumber {
			return &rounds[i]
		}
	}
	t.Fatalf("seeded round %d not found", roundNumber)
	return nil
}

// SeedIndexer stores an enabled indexer pointing at the given API URL.
func SeedIndexer(t testing.TB, st *store.Store, name, apiURL, apiKey string) *store.Indexer {
	t.Helper()

	indexer, err := st.AddIndexer(context.Background(), store.Indexer{
		Name:    name,
		APIURL:  apiURL,
		APIKey:  apiKey,
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("store.AddIndexer: %v", err)
	}
	return indexer
}

// SeedDownloader stores an enabled downloader of the given type.
func SeedDownloader(t testing.TB, st *store.Store, name, kind, apiURL, apiKey string) *store.Downloader {
	t.Helper()

	downloader, err := st.AddDownloader(context.Background(), store.Downloader{
		Name:    name,
		Type:    kind,
		APIURL:  apiURL,
		APIKey:  apiKey,
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("store.AddDownloader: %v", err)
	}
	return downloader
}
