package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"racecarr/internal/downloader"
	"racecarr/internal/notifications"
	"racecarr/internal/store"
	"racecarr/internal/testsupport"
)

func seedWaitingItem(t *testing.T, fx *fixture, downloaderID int64) *store.ScheduledSearch {
	t.Helper()

	ctx := context.Background()
	round := testsupport.SeedRound(t, fx.store, 2025, 8, "Monaco Grand Prix", nil)
	item, err := fx.store.AddScheduledSearch(ctx, store.ScheduledSearch{
		RoundID:   round.ID,
		EventType: "race",
		Status:    store.StatusWaitingDownload,
	})
	if err != nil {
		t.Fatalf("AddScheduledSearch: %v", err)
	}
	ensureTag(item)
	item.NZBTitle = "F1 2025 Monaco Grand Prix Race 1080p"
	item.DownloaderID = &downloaderID
	if err := fx.store.UpdateScheduledSearch(ctx, item); err != nil {
		t.Fatalf("UpdateScheduledSearch: %v", err)
	}
	return item
}

func TestPollDownloadsCompletesOnSuccess(t *testing.T) {
	fx := newFixture(t)
	target := testsupport.SeedDownloader(t, fx.store, "sab", "sabnzbd", "http://sab.test", "key")
	item := seedWaitingItem(t, fx, target.ID)

	fx.downloads.history = []downloader.HistoryEntry{
		{Name: item.NZBTitle + " [" + item.Tag + "]", Status: "completed"},
	}

	if err := fx.service.pollDownloads(context.Background()); err != nil {
		t.Fatalf("pollDownloads: %v", err)
	}

	loaded, _ := fx.store.GetScheduledSearch(context.Background(), item.ID)
	if loaded.Status != store.StatusCompleted {
		t.Fatalf("status = %q", loaded.Status)
	}
	if loaded.NextRunAt != nil || loaded.LastError != "" {
		t.Fatalf("completed item not cleaned up: %+v", loaded)
	}
	if got := fx.notifier.count(notifications.EventDownloadCompleted); got != 1 {
		t.Fatalf("expected 1 completion notification, got %d", got)
	}
}

func TestPollDownloadsFailsOnFailure(t *testing.T) {
	fx := newFixture(t)
	target := testsupport.SeedDownloader(t, fx.store, "sab", "sabnzbd", "http://sab.test", "key")
	item := seedWaitingItem(t, fx, target.ID)

	fx.downloads.history = []downloader.HistoryEntry{
		{Name: item.NZBTitle + " [" + item.Tag + "]", Status: "failed"},
	}

	if err := fx.service.pollDownloads(context.Background()); err != nil {
		t.Fatalf("pollDownloads: %v", err)
	}

	loaded, _ := fx.store.GetScheduledSearch(context.Background(), item.ID)
	if loaded.Status != store.StatusFailed || loaded.LastError != "downloader reported failure" {
		t.Fatalf("unexpected outcome: status=%q error=%q", loaded.Status, loaded.LastError)
	}
	if loaded.NextRunAt == nil {
		t.Fatal("failed download must schedule a retry")
	}
	if got := fx.notifier.count(notifications.EventDownloadFailed); got != 1 {
		t.Fatalf("expected 1 failure notification, got %d", got)
	}
}

func TestPollDownloadsLeavesInFlightAlone(t *testing.T) {
	fx := newFixture(t)
	target := testsupport.SeedDownloader(t, fx.store, "sab", "sabnzbd", "http://sab.test", "key")
	item := seedWaitingItem(t, fx, target.ID)

	// History has no entry for the tag yet.
	fx.downloads.history = []downloader.HistoryEntry{
		{Name: "Some Other Download", Status: "completed"},
	}

	if err := fx.service.pollDownloads(context.Background()); err != nil {
		t.Fatalf("pollDownloads: %v", err)
	}

	loaded, _ := fx.store.GetScheduledSearch(context.Background(), item.ID)
	if loaded.Status != store.StatusWaitingDownload {
		t.Fatalf("in-flight item changed state: %q", loaded.Status)
	}
}

func TestPollDownloadsDisabledDownloaderFails(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	target := testsupport.SeedDownloader(t, fx.store, "sab", "sabnzbd", "http://sab.test", "key")
	item := seedWaitingItem(t, fx, target.ID)

	target.Enabled = false
	if err := fx.store.UpdateDownloader(ctx, *target); err != nil {
		t.Fatalf("UpdateDownloader: %v", err)
	}

	if err := fx.service.pollDownloads(ctx); err != nil {
		t.Fatalf("pollDownloads: %v", err)
	}

	loaded, _ := fx.store.GetScheduledSearch(ctx, item.ID)
	if loaded.Status != store.StatusFailed || loaded.LastError != "downloader not available" {
		t.Fatalf("unexpected outcome: status=%q error=%q", loaded.Status, loaded.LastError)
	}
}

func TestPollDownloadsReconcilesManual(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	target := testsupport.SeedDownloader(t, fx.store, "sab", "sabnzbd", "http://sab.test", "key")

	if err := fx.store.AddManualDownload(ctx, store.ManualDownload{
		Tag:          "rc-manual-deadbeef",
		Title:        "F1 2025 Monaco Race 1080p",
		DownloaderID: &target.ID,
	}); err != nil {
		t.Fatalf("AddManualDownload: %v", err)
	}
	fx.downloads.history = []downloader.HistoryEntry{
		{Name: "F1 2025 Monaco Race 1080p [RC-MANUAL-DEADBEEF]", Status: "success"},
	}

	if err := fx.service.pollDownloads(ctx); err != nil {
		t.Fatalf("pollDownloads: %v", err)
	}

	entry, err := fx.store.GetManualDownload(ctx, "rc-manual-deadbeef")
	if err != nil {
		t.Fatalf("GetManualDownload: %v", err)
	}
	if entry.Status != store.ManualStatusCompleted {
		t.Fatalf("manual status = %q", entry.Status)
	}
}

func TestDispatchManual(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testsupport.SeedDownloader(t, fx.store, "sab", "sabnzbd", "http://sab.test", "key")

	tag, err := fx.service.DispatchManual(ctx, "F1 2025 Monaco Race", "https://indexer.test/get/1", nil)
	if err != nil {
		t.Fatalf("DispatchManual: %v", err)
	}
	if !strings.HasPrefix(tag, "rc-manual-") {
		t.Fatalf("tag = %q", tag)
	}

	entry, err := fx.store.GetManualDownload(ctx, tag)
	if err != nil {
		t.Fatalf("GetManualDownload: %v", err)
	}
	if entry == nil || entry.Status != store.ManualStatusSent {
		t.Fatalf("manual record not stored: %+v", entry)
	}
	if got := fx.notifier.count(notifications.EventDownloadStarted); got != 1 {
		t.Fatalf("expected 1 start notification, got %d", got)
	}
}

func TestDispatchManualValidation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if _, err := fx.service.DispatchManual(ctx, "title", "  ", nil); err == nil {
		t.Fatal("expected missing nzb url to fail")
	}
	// No downloaders configured.
	if _, err := fx.service.DispatchManual(ctx, "title", "https://indexer.test/get/1", nil); err == nil {
		t.Fatal("expected missing downloader to fail")
	}
}

func TestDispatchManualRejectedSend(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testsupport.SeedDownloader(t, fx.store, "sab", "sabnzbd", "http://sab.test", "key")
	fx.downloads.sendOK = false
	fx.downloads.sendMsg = "queue full"

	if _, err := fx.service.DispatchManual(ctx, "title", "https://indexer.test/get/1", nil); err == nil {
		t.Fatal("expected rejected dispatch to fail")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx.service.Start(ctx)
	fx.service.Start(ctx)
	time.Sleep(10 * time.Millisecond)
	fx.service.Stop()
	fx.service.Stop()
}
