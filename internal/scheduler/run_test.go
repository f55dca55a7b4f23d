package scheduler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"racecarr/internal/classify"
	"racecarr/internal/config"
	"racecarr/internal/downloader"
	"racecarr/internal/indexer"
	"racecarr/internal/logging"
	"racecarr/internal/media"
	"racecarr/internal/notifications"
	"racecarr/internal/store"
	"racecarr/internal/testsupport"
)

type stubSearcher struct {
	results []media.Candidate
	calls   int
}

func (s *stubSearcher) SearchRound(_ context.Context, _ []indexer.Endpoint, _ media.Round, _ []classify.SessionType) []media.Candidate {
	s.calls++
	out := make([]media.Candidate, len(s.results))
	copy(out, s.results)
	return out
}

type sendCall struct {
	nzbURL string
	title  string
}

type stubDownloads struct {
	mu      sync.Mutex
	sendOK  bool
	sendMsg string
	history []downloader.HistoryEntry
	sends   []sendCall
}

func (d *stubDownloads) Send(_ context.Context, _ downloader.Target, nzbURL, title, _ string, _ int) (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sends = append(d.sends, sendCall{nzbURL: nzbURL, title: title})
	return d.sendOK, d.sendMsg
}

func (d *stubDownloads) History(_ context.Context, _ downloader.Target, _ int) ([]downloader.HistoryEntry, error) {
	return d.history, nil
}

type recordedEvent struct {
	event   notifications.Event
	message string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Publish(_ context.Context, event notifications.Event, _, message string, _ notifications.Payload) (bool, []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{event: event, message: message})
	return true, nil
}

func (n *recordingNotifier) Test(context.Context) (bool, []string) {
	return true, nil
}

func (n *recordingNotifier) count(event notifications.Event) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, recorded := range n.events {
		if recorded.event == event {
			total++
		}
	}
	return total
}

type fixture struct {
	service   *Service
	store     *store.Store
	searcher  *stubSearcher
	downloads *stubDownloads
	notifier  *recordingNotifier
	cfg       *config.Config
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	searcher := &stubSearcher{}
	downloads := &stubDownloads{sendOK: true, sendMsg: "sent"}
	notifier := &recordingNotifier{}

	service := New(st, searcher, downloads, notifier, cfg, logging.NewNop())
	return &fixture{
		service:   service,
		store:     st,
		searcher:  searcher,
		downloads: downloads,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func raceCandidate(score boostKind) media.Candidate {
	candidate := media.Candidate{
		Title:   "F1 2025 Monaco Grand Prix Race 1080p WEB",
		Quality: "1080p",
		NZBURL:  "https://indexer.test/get/1",
	}
	if score == boostHigh {
		candidate.Seeders = 50
		candidate.SizeMB = 4096
	}
	return candidate
}

type boostKind int

const (
	boostNone boostKind = iota
	boostHigh
)

func TestRunNowDispatchesBestCandidate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(-3 * time.Hour)
	round := testsupport.SeedRound(t, fx.store, 2025, 8, "Monaco Grand Prix", map[string]time.Time{
		"race": start,
	})
	testsupport.SeedIndexer(t, fx.store, "one", "https://indexer.test", "key")
	target := testsupport.SeedDownloader(t, fx.store, "sab", "sabnzbd", "http://sab.test", "key")
	fx.searcher.results = []media.Candidate{raceCandidate(boostHigh)}

	item, err := fx.service.Create(ctx, CreateRequest{RoundID: round.ID, EventType: "race"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := fx.service.RunNow(ctx, item.ID); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	loaded, err := fx.store.GetScheduledSearch(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetScheduledSearch: %v", err)
	}
	if loaded.Status != store.StatusWaitingDownload {
		t.Fatalf("status = %q, want waiting-download (last_error=%q)", loaded.Status, loaded.LastError)
	}
	if loaded.Tag == "" || !strings.HasPrefix(loaded.Tag, "rc-") {
		t.Fatalf("tag = %q", loaded.Tag)
	}
	if loaded.NZBURL != "https://indexer.test/get/1" || loaded.NZBTitle == "" {
		t.Fatalf("nzb fields missing: %+v", loaded)
	}
	if loaded.DownloaderID == nil || *loaded.DownloaderID != target.ID {
		t.Fatalf("downloader id = %v", loaded.DownloaderID)
	}
	if loaded.Attempts != 1 {
		t.Fatalf("attempts = %d", loaded.Attempts)
	}
	if loaded.NextRunAt == nil {
		t.Fatal("waiting item must keep a recheck time")
	}

	fx.downloads.mu.Lock()
	sends := len(fx.downloads.sends)
	sentTitle := ""
	if sends > 0 {
		sentTitle = fx.downloads.sends[0].title
	}
	fx.downloads.mu.Unlock()
	if sends != 1 {
		t.Fatalf("expected 1 dispatch, got %d", sends)
	}
	if !strings.Contains(sentTitle, loaded.Tag) {
		t.Fatalf("dispatch title %q missing tag %q", sentTitle, loaded.Tag)
	}
	if got := fx.notifier.count(notifications.EventDownloadStarted); got != 1 {
		t.Fatalf("expected 1 download-started notification, got %d", got)
	}
}

func TestRunNowBeforeEventStartsStaysPending(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(2 * time.Hour)
	round := testsupport.SeedRound(t, fx.store, 2025, 8, "Monaco Grand Prix", map[string]time.Time{
		"race": start,
	})
	testsupport.SeedIndexer(t, fx.store, "one", "https://indexer.test", "key")

	item, err := fx.service.Create(ctx, CreateRequest{RoundID: round.ID, EventType: "race"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fx.service.RunNow(ctx, item.ID); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	loaded, _ := fx.store.GetScheduledSearch(ctx, item.ID)
	if loaded.Status != store.StatusPending {
		t.Fatalf("status = %q", loaded.Status)
	}
	if fx.searcher.calls != 0 {
		t.Fatal("search must not run before the session starts")
	}
	// Next run lands on the start+30m boundary.
	wantNext := start.Add(30 * time.Minute)
	if loaded.NextRunAt == nil || loaded.NextRunAt.Sub(wantNext).Abs() > time.Second {
		t.Fatalf("next_run_at = %v, want %v", loaded.NextRunAt, wantNext)
	}
}

func TestRunNowWithoutIndexersFails(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(-3 * time.Hour)
	round := testsupport.SeedRound(t, fx.store, 2025, 8, "Monaco Grand Prix", map[string]time.Time{
		"race": start,
	})
	item, err := fx.service.Create(ctx, CreateRequest{RoundID: round.ID, EventType: "race"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fx.service.RunNow(ctx, item.ID); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	loaded, _ := fx.store.GetScheduledSearch(ctx, item.ID)
	if loaded.Status != store.StatusFailed || loaded.LastError != "no enabled indexers" {
		t.Fatalf("unexpected outcome: status=%q error=%q", loaded.Status, loaded.LastError)
	}
	if loaded.NextRunAt == nil {
		t.Fatal("transient failure must stay retryable")
	}
}

func TestRunNowNoResultsStaysPending(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(-3 * time.Hour)
	round := testsupport.SeedRound(t, fx.store, 2025, 8, "Monaco Grand Prix", map[string]time.Time{
		"race": start,
	})
	testsupport.SeedIndexer(t, fx.store, "one", "https://indexer.test", "key")
	testsupport.SeedDownloader(t, fx.store, "sab", "sabnzbd", "http://sab.test", "key")

	item, err := fx.service.Create(ctx, CreateRequest{RoundID: round.ID, EventType: "race"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fx.service.RunNow(ctx, item.ID); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	loaded, _ := fx.store.GetScheduledSearch(ctx, item.ID)
	if loaded.Status != store.StatusPending || loaded.LastError != "no results" {
		t.Fatalf("unexpected outcome: status=%q error=%q", loaded.Status, loaded.LastError)
	}
	if loaded.Attempts != 1 {
		t.Fatalf("attempts = %d", loaded.Attempts)
	}
}

func TestRunNowBelowThresholdStaysPending(t *testing.T) {
	fx := newFixture(t, testsupport.WithThreshold(99))
	ctx := context.Background()

	start := time.Now().UTC().Add(-3 * time.Hour)
	round := testsupport.SeedRound(t, fx.store, 2025, 8, "Monaco Grand Prix", map[string]time.Time{
		"race": start,
	})
	testsupport.SeedIndexer(t, fx.store, "one", "https://indexer.test", "key")
	testsupport.SeedDownloader(t, fx.store, "sab", "sabnzbd", "http://sab.test", "key")
	fx.searcher.results = []media.Candidate{raceCandidate(boostNone)}

	item, err := fx.service.Create(ctx, CreateRequest{RoundID: round.ID, EventType: "race"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fx.service.RunNow(ctx, item.ID); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	loaded, _ := fx.store.GetScheduledSearch(ctx, item.ID)
	if loaded.Status != store.StatusPending || loaded.LastError != "no result above threshold" {
		t.Fatalf("unexpected outcome: status=%q error=%q", loaded.Status, loaded.LastError)
	}
	if got := fx.notifier.count(notifications.EventDownloadStarted); got != 0 {
		t.Fatalf("no dispatch expected, got %d notifications", got)
	}
}

func TestRunNowHiddenSeasonPauses(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	start := time.Now().UTC().Add(-3 * time.Hour)
	round := testsupport.SeedRound(t, fx.store, 2025, 8, "Monaco Grand Prix", map[string]time.Time{
		"race": start,
	})
	item, err := fx.service.Create(ctx, CreateRequest{RoundID: round.ID, EventType: "race"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := fx.store.SetSeasonHidden(ctx, 2025, true); err != nil {
		t.Fatalf("SetSeasonHidden: %v", err)
	}

	if err := fx.service.RunNow(ctx, item.ID); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	loaded, _ := fx.store.GetScheduledSearch(ctx, item.ID)
	if loaded.Status != store.StatusPaused || loaded.NextRunAt != nil {
		t.Fatalf("unexpected outcome: %+v", loaded)
	}
}

func TestRunNowUnknownIDIsNoop(t *testing.T) {
	fx := newFixture(t)
	if err := fx.service.RunNow(context.Background(), 9999); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
}

func TestComputeNextRun(t *testing.T) {
	now := time.Date(2025, 5, 25, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		name       string
		eventStart *time.Time
		want       time.Time
	}{
		{"no start", nil, now.Add(6 * time.Hour)},
		{"before boundary", timePtr(now.Add(-10 * time.Minute)), now.Add(20 * time.Minute)},
		{"recent event", timePtr(now.Add(-40 * time.Hour)), now.Add(10 * time.Minute)},
		{"within a week", timePtr(now.Add(-100 * time.Hour)), now.Add(6 * time.Hour)},
		{"old event", timePtr(now.Add(-10 * 24 * time.Hour)), now.Add(24 * time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := computeNextRun(tc.eventStart, now)
			if !got.Equal(tc.want) {
				t.Fatalf("computeNextRun = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPickBest(t *testing.T) {
	low, mid, high := 40, 75, 90
	results := []media.Candidate{
		{Title: "low", Score: &low, NZBURL: "u1"},
		{Title: "high", Score: &high, NZBURL: "u2"},
		{Title: "mid", Score: &mid, NZBURL: "u3"},
		{Title: "unscored"},
	}
	best := pickBest(results, 70)
	if best == nil || best.Title != "high" {
		t.Fatalf("pickBest = %+v", best)
	}
	if pickBest(results, 95) != nil {
		t.Fatal("expected nil when nothing clears the threshold")
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
