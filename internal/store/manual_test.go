package store_test

import (
	"context"
	"testing"

	"racecarr/internal/store"
	"racecarr/internal/testsupport"
)

func TestManualDownloadLifecycle(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	downloader := testsupport.SeedDownloader(t, st, "sab", "sabnzbd", "http://sab.test", "key")

	if err := st.AddManualDownload(ctx, store.ManualDownload{
		Tag:          "rc-manual-abcd1234",
		Title:        "F1 2025 Monaco Race 1080p",
		DownloaderID: &downloader.ID,
	}); err != nil {
		t.Fatalf("AddManualDownload: %v", err)
	}

	entry, err := st.GetManualDownload(ctx, "rc-manual-abcd1234")
	if err != nil {
		t.Fatalf("GetManualDownload: %v", err)
	}
	if entry == nil {
		t.Fatal("entry not found")
	}
	if entry.Status != store.ManualStatusSent {
		t.Fatalf("status = %q, want sent", entry.Status)
	}
	if entry.CreatedAt.IsZero() {
		t.Fatal("created_at not defaulted")
	}
	if entry.DownloaderID == nil || *entry.DownloaderID != downloader.ID {
		t.Fatalf("downloader id = %v", entry.DownloaderID)
	}

	pending, err := st.PendingManualDownloads(ctx)
	if err != nil {
		t.Fatalf("PendingManualDownloads: %v", err)
	}
	if len(pending) != 1 || pending[0].Tag != "rc-manual-abcd1234" {
		t.Fatalf("unexpected pending set: %+v", pending)
	}

	if err := st.UpdateManualDownloadStatus(ctx, "rc-manual-abcd1234",
		store.ManualStatusFailed, "downloader reported failure"); err != nil {
		t.Fatalf("UpdateManualDownloadStatus: %v", err)
	}

	entry, err = st.GetManualDownload(ctx, "rc-manual-abcd1234")
	if err != nil {
		t.Fatalf("GetManualDownload: %v", err)
	}
	if entry.Status != store.ManualStatusFailed || entry.LastError != "downloader reported failure" {
		t.Fatalf("status update not applied: %+v", entry)
	}

	pending, err = st.PendingManualDownloads(ctx)
	if err != nil {
		t.Fatalf("PendingManualDownloads: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("failed entries must not stay pending: %+v", pending)
	}
}

func TestGetManualDownloadMissingTag(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	entry, err := st.GetManualDownload(context.Background(), "rc-manual-missing")
	if err != nil {
		t.Fatalf("GetManualDownload: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected nil for unknown tag, got %+v", entry)
	}
}
