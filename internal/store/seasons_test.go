package store_test

import (
	"context"
	"testing"
	"time"

	"racecarr/internal/media"
	"racecarr/internal/testsupport"
)

func TestUpsertSeasonIsIdempotent(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first, err := st.UpsertSeason(ctx, 2025)
	if err != nil {
		t.Fatalf("UpsertSeason: %v", err)
	}
	second, err := st.UpsertSeason(ctx, 2025)
	if err != nil {
		t.Fatalf("UpsertSeason again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same season row, got %d and %d", first.ID, second.ID)
	}
}

func TestReplaceSeasonRoundsAndGetRound(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	race := time.Date(2025, 5, 25, 13, 0, 0, 0, time.UTC)
	round := testsupport.SeedRound(t, st, 2025, 8, "Monaco Grand Prix", map[string]time.Time{
		"race":       race,
		"qualifying": race.Add(-22 * time.Hour),
	})

	loaded, err := st.GetRound(ctx, round.ID)
	if err != nil {
		t.Fatalf("GetRound: %v", err)
	}
	if loaded == nil {
		t.Fatal("round not found")
	}
	if loaded.Year != 2025 || loaded.RoundNumber != 8 || loaded.Name != "Monaco Grand Prix" {
		t.Fatalf("unexpected round: %+v", loaded)
	}
	if len(loaded.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(loaded.Events))
	}
	start := loaded.EventStart("race")
	if start == nil || !start.Equal(race) {
		t.Fatalf("race start = %v, want %v", start, race)
	}

	// Replacing with a new set drops the old rounds entirely.
	season, err := st.GetSeasonByYear(ctx, 2025)
	if err != nil {
		t.Fatalf("GetSeasonByYear: %v", err)
	}
	if err := st.ReplaceSeasonRounds(ctx, season.ID, []media.Round{
		{RoundNumber: 1, Name: "Bahrain Grand Prix"},
	}); err != nil {
		t.Fatalf("ReplaceSeasonRounds: %v", err)
	}

	gone, err := st.GetRound(ctx, round.ID)
	if err != nil {
		t.Fatalf("GetRound after replace: %v", err)
	}
	if gone != nil {
		t.Fatalf("expected old round to be deleted, got %+v", gone)
	}

	rounds, err := st.RoundsForSeason(ctx, season.ID)
	if err != nil {
		t.Fatalf("RoundsForSeason: %v", err)
	}
	if len(rounds) != 1 || rounds[0].Name != "Bahrain Grand Prix" {
		t.Fatalf("unexpected rounds: %+v", rounds)
	}

	refreshed, err := st.GetSeasonByYear(ctx, 2025)
	if err != nil {
		t.Fatalf("GetSeasonByYear: %v", err)
	}
	if refreshed.LastRefreshed == nil {
		t.Fatal("expected last_refreshed to be stamped")
	}
}

func TestSetSeasonHidden(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	round := testsupport.SeedRound(t, st, 2024, 1, "Bahrain Grand Prix", nil)

	found, err := st.SetSeasonHidden(ctx, 2024, true)
	if err != nil {
		t.Fatalf("SetSeasonHidden: %v", err)
	}
	if !found {
		t.Fatal("expected season to exist")
	}

	hidden, err := st.SeasonHiddenForRound(ctx, round.ID)
	if err != nil {
		t.Fatalf("SeasonHiddenForRound: %v", err)
	}
	if !hidden {
		t.Fatal("expected round's season to be hidden")
	}

	found, err = st.SetSeasonHidden(ctx, 1999, true)
	if err != nil {
		t.Fatalf("SetSeasonHidden missing year: %v", err)
	}
	if found {
		t.Fatal("expected missing season to report not found")
	}
}

func TestListSeasonsOrdersByYearDescending(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	for _, year := range []int{2023, 2025, 2024} {
		if _, err := st.UpsertSeason(ctx, year); err != nil {
			t.Fatalf("UpsertSeason(%d): %v", year, err)
		}
	}

	seasons, err := st.ListSeasons(ctx)
	if err != nil {
		t.Fatalf("ListSeasons: %v", err)
	}
	if len(seasons) != 3 {
		t.Fatalf("expected 3 seasons, got %d", len(seasons))
	}
	for i, want := range []int{2025, 2024, 2023} {
		if seasons[i].Year != want {
			t.Fatalf("seasons[%d].Year = %d, want %d", i, seasons[i].Year, want)
		}
	}
}
