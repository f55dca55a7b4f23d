package store_test

import (
	"context"
	"testing"
	"time"

	"racecarr/internal/store"
	"racecarr/internal/testsupport"
)

func seedSchedule(t *testing.T, st *store.Store, roundID int64, eventType string, status store.Status, nextRun *time.Time) *store.ScheduledSearch {
	t.Helper()

	item, err := st.AddScheduledSearch(context.Background(), store.ScheduledSearch{
		RoundID:   roundID,
		EventType: eventType,
		Status:    status,
		NextRunAt: nextRun,
	})
	if err != nil {
		t.Fatalf("AddScheduledSearch: %v", err)
	}
	return item
}

func TestAddScheduledSearchDefaults(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	round := testsupport.SeedRound(t, st, 2025, 1, "Bahrain Grand Prix", nil)

	item, err := st.AddScheduledSearch(context.Background(), store.ScheduledSearch{
		RoundID:   round.ID,
		EventType: "race",
	})
	if err != nil {
		t.Fatalf("AddScheduledSearch: %v", err)
	}
	if item.Status != store.StatusPending {
		t.Fatalf("status = %q, want pending", item.Status)
	}
	if item.AddedAt.IsZero() {
		t.Fatal("added_at not defaulted")
	}
	if item.Attempts != 0 {
		t.Fatalf("attempts = %d", item.Attempts)
	}
}

func TestAddScheduledSearchRejectsDuplicatePair(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	round := testsupport.SeedRound(t, st, 2025, 1, "Bahrain Grand Prix", nil)

	seedSchedule(t, st, round.ID, "race", "", nil)
	if _, err := st.AddScheduledSearch(context.Background(), store.ScheduledSearch{
		RoundID:   round.ID,
		EventType: "race",
	}); err == nil {
		t.Fatal("expected duplicate (round, event) insert to fail")
	}
}

func TestDueScheduledSelection(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	round := testsupport.SeedRound(t, st, 2025, 1, "Bahrain Grand Prix", nil)

	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	pendingNoDue := seedSchedule(t, st, round.ID, "race", store.StatusPending, nil)
	pendingDue := seedSchedule(t, st, round.ID, "qualifying", store.StatusPending, &past)
	seedSchedule(t, st, round.ID, "fp1", store.StatusPending, &future)
	failedDue := seedSchedule(t, st, round.ID, "fp2", store.StatusFailed, &past)
	// A failed item without a due time is terminal and must never be retried.
	seedSchedule(t, st, round.ID, "fp3", store.StatusFailed, nil)
	seedSchedule(t, st, round.ID, "sprint", store.StatusPaused, nil)
	seedSchedule(t, st, round.ID, "sprint-qualifying", store.StatusCompleted, nil)

	due, err := st.DueScheduled(context.Background(), now)
	if err != nil {
		t.Fatalf("DueScheduled: %v", err)
	}

	got := make(map[int64]struct{}, len(due))
	for _, item := range due {
		got[item.ID] = struct{}{}
	}
	for _, want := range []*store.ScheduledSearch{pendingNoDue, pendingDue, failedDue} {
		if _, ok := got[want.ID]; !ok {
			t.Fatalf("expected schedule %d (%s) to be due", want.ID, want.EventType)
		}
	}
	if len(due) != 3 {
		t.Fatalf("expected exactly 3 due schedules, got %d", len(due))
	}
}

func TestUpdateScheduledSearchRoundTrip(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	round := testsupport.SeedRound(t, st, 2025, 1, "Bahrain Grand Prix", nil)
	downloader := testsupport.SeedDownloader(t, st, "sab", "sabnzbd", "http://sab.test", "key")

	item := seedSchedule(t, st, round.ID, "race", "", nil)

	now := time.Now().UTC().Truncate(time.Second)
	next := now.Add(6 * time.Hour)
	minRes := "1080p"
	allowHDR := false
	threshold := 80

	item.Status = store.StatusWaitingDownload
	item.LastSearchedAt = &now
	item.NextRunAt = &next
	item.LastError = ""
	item.Tag = "rc-1-race"
	item.NZBTitle = "F1 2025 Bahrain Race 1080p [rc-1-race]"
	item.NZBURL = "https://indexer.test/get/1"
	item.DownloaderID = &downloader.ID
	item.Attempts = 2
	item.MinResolution = &minRes
	item.AllowHDR = &allowHDR
	item.ScoreThreshold = &threshold

	if err := st.UpdateScheduledSearch(context.Background(), item); err != nil {
		t.Fatalf("UpdateScheduledSearch: %v", err)
	}

	loaded, err := st.GetScheduledSearch(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetScheduledSearch: %v", err)
	}
	if loaded.Status != store.StatusWaitingDownload {
		t.Fatalf("status = %q", loaded.Status)
	}
	if loaded.Tag != "rc-1-race" || loaded.NZBURL != "https://indexer.test/get/1" {
		t.Fatalf("nzb fields lost: %+v", loaded)
	}
	if loaded.DownloaderID == nil || *loaded.DownloaderID != downloader.ID {
		t.Fatalf("downloader id = %v", loaded.DownloaderID)
	}
	if loaded.NextRunAt == nil || !loaded.NextRunAt.Equal(next) {
		t.Fatalf("next_run_at = %v, want %v", loaded.NextRunAt, next)
	}
	if loaded.MinResolution == nil || *loaded.MinResolution != "1080p" {
		t.Fatalf("min_resolution = %v", loaded.MinResolution)
	}
	if loaded.AllowHDR == nil || *loaded.AllowHDR {
		t.Fatalf("allow_hdr = %v", loaded.AllowHDR)
	}
	if loaded.ScoreThreshold == nil || *loaded.ScoreThreshold != 80 {
		t.Fatalf("score_threshold = %v", loaded.ScoreThreshold)
	}
	if loaded.Attempts != 2 {
		t.Fatalf("attempts = %d", loaded.Attempts)
	}
}

func TestResetRunning(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	round := testsupport.SeedRound(t, st, 2025, 1, "Bahrain Grand Prix", nil)

	next := time.Now().UTC().Add(time.Hour)
	running := seedSchedule(t, st, round.ID, "race", store.StatusRunning, &next)
	waiting := seedSchedule(t, st, round.ID, "qualifying", store.StatusWaitingDownload, nil)

	reset, err := st.ResetRunning(context.Background())
	if err != nil {
		t.Fatalf("ResetRunning: %v", err)
	}
	if reset != 1 {
		t.Fatalf("reset = %d, want 1", reset)
	}

	loaded, err := st.GetScheduledSearch(context.Background(), running.ID)
	if err != nil {
		t.Fatalf("GetScheduledSearch: %v", err)
	}
	if loaded.Status != store.StatusPending || loaded.NextRunAt != nil {
		t.Fatalf("running item not reset: %+v", loaded)
	}

	untouched, err := st.GetScheduledSearch(context.Background(), waiting.ID)
	if err != nil {
		t.Fatalf("GetScheduledSearch: %v", err)
	}
	if untouched.Status != store.StatusWaitingDownload {
		t.Fatalf("waiting item must not be reset: %+v", untouched)
	}
}

func TestRemoveScheduledSearch(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	round := testsupport.SeedRound(t, st, 2025, 1, "Bahrain Grand Prix", nil)
	item := seedSchedule(t, st, round.ID, "race", "", nil)

	found, err := st.RemoveScheduledSearch(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("RemoveScheduledSearch: %v", err)
	}
	if !found {
		t.Fatal("expected removal to report found")
	}

	found, err = st.RemoveScheduledSearch(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("RemoveScheduledSearch again: %v", err)
	}
	if found {
		t.Fatal("expected second removal to report not found")
	}
}

func TestScheduleStats(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	round := testsupport.SeedRound(t, st, 2025, 1, "Bahrain Grand Prix", nil)

	seedSchedule(t, st, round.ID, "race", store.StatusPending, nil)
	seedSchedule(t, st, round.ID, "qualifying", store.StatusPending, nil)
	seedSchedule(t, st, round.ID, "fp1", store.StatusCompleted, nil)

	stats, err := st.ScheduleStats(context.Background())
	if err != nil {
		t.Fatalf("ScheduleStats: %v", err)
	}
	if stats[store.StatusPending] != 2 || stats[store.StatusCompleted] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestRoundDeletionCascadesToSchedules(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	round := testsupport.SeedRound(t, st, 2025, 1, "Bahrain Grand Prix", nil)
	item := seedSchedule(t, st, round.ID, "race", "", nil)

	ctx := context.Background()
	season, err := st.GetSeasonByYear(ctx, 2025)
	if err != nil {
		t.Fatalf("GetSeasonByYear: %v", err)
	}
	if err := st.ReplaceSeasonRounds(ctx, season.ID, nil); err != nil {
		t.Fatalf("ReplaceSeasonRounds: %v", err)
	}

	gone, err := st.GetScheduledSearch(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetScheduledSearch: %v", err)
	}
	if gone != nil {
		t.Fatalf("expected schedule to cascade-delete, got %+v", gone)
	}
}
