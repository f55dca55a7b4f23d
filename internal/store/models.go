package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a scheduled search.
type Status string

const (
	StatusPending         Status = "pending"
	StatusRunning         Status = "running"
	StatusWaitingDownload Status = "waiting-download"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
	StatusPaused          Status = "paused"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusWaitingDownload,
	StatusCompleted,
	StatusFailed,
	StatusPaused,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsLive reports whether the status keeps a schedule eligible for future
// scheduler work.
func (s Status) IsLive() bool {
	switch s {
	case StatusPending, StatusRunning, StatusWaitingDownload:
		return true
	default:
		return false
	}
}

// Indexer is a configured newznab-style search endpoint.
type Indexer struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	APIURL   string `json:"api_url"`
	APIKey   string `json:"-"`
	Category string `json:"category,omitempty"`
	Enabled  bool   `json:"enabled"`
}

// Downloader is a configured download client.
type Downloader struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	APIURL   string `json:"api_url"`
	APIKey   string `json:"-"`
	Category string `json:"category,omitempty"`
	Priority int    `json:"priority"`
	Enabled  bool   `json:"enabled"`
}

// ScheduledSearch is one persistent scheduler item: a (round, event type)
// pair plus its state machine bookkeeping and optional per-item preference
// overrides (nil means use the global setting).
type ScheduledSearch struct {
	ID             int64      `json:"id"`
	RoundID        int64      `json:"round_id"`
	EventType      string     `json:"event_type"`
	Status         Status     `json:"status"`
	AddedAt        time.Time  `json:"added_at"`
	LastSearchedAt *time.Time `json:"last_searched_at,omitempty"`
	NextRunAt      *time.Time `json:"next_run_at,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	Tag            string     `json:"tag,omitempty"`
	NZBTitle       string     `json:"nzb_title,omitempty"`
	NZBURL         string     `json:"nzb_url,omitempty"`
	DownloaderID   *int64     `json:"downloader_id,omitempty"`
	EventStartUTC  *time.Time `json:"event_start_utc,omitempty"`
	Attempts       int        `json:"attempts"`
	MinResolution  *string    `json:"min_resolution,omitempty"`
	MaxResolution  *string    `json:"max_resolution,omitempty"`
	AllowHDR       *bool      `json:"allow_hdr,omitempty"`
	ScoreThreshold *int       `json:"score_threshold,omitempty"`
}

// CachedSearch is the stored search result set for one round.
type CachedSearch struct {
	RoundID     int64     `json:"round_id"`
	CachedAt    time.Time `json:"cached_at"`
	ResultsJSON string    `json:"-"`
}

// ManualDownload tracks an ad-hoc dispatch so the poll loop can reconcile it
// against downloader history.
type ManualDownload struct {
	Tag          string    `json:"tag"`
	Title        string    `json:"title"`
	DownloaderID *int64    `json:"downloader_id,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	LastError    string    `json:"last_error,omitempty"`
}
