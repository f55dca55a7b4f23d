package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"racecarr/internal/classify"
	"racecarr/internal/logging"
	"racecarr/internal/media"
	"racecarr/internal/notifications"
	"racecarr/internal/scoring"
	"racecarr/internal/search"
	"racecarr/internal/store"
)

// Scheduler error strings stored on last_error. Stable because the CLI and
// tests match on them.
const (
	errRoundNotFound     = "round not found"
	errEventDisallowed   = "event type disallowed"
	errNoIndexers        = "no enabled indexers"
	errNoResults         = "no results"
	errBelowThreshold    = "no result above threshold"
	errNoDownloaders     = "no enabled downloaders"
	errMissingDownloader = "missing downloader"
	errDownloaderGone    = "downloader not available"
	errDownloaderFailure = "downloader reported failure"
)

// runDue executes the single-item procedure for every due schedule.
func (s *Service) runDue(ctx context.Context) error {
	now := s.now().UTC()
	due, err := s.store.DueScheduled(ctx, now)
	if err != nil {
		return fmt.Errorf("load due schedules: %w", err)
	}
	for _, item := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.runSingle(ctx, item, now)
	}
	return nil
}

// RunNow executes the single-item procedure for one schedule immediately,
// regardless of its due time. Unknown ids are a no-op.
func (s *Service) RunNow(ctx context.Context, id int64) error {
	item, err := s.store.GetScheduledSearch(ctx, id)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	if item == nil {
		return nil
	}
	s.runSingle(ctx, item, s.now().UTC())
	return nil
}

// runSingle is one pass of the state machine for one schedule. Every exit
// path persists the item; failures inside the pass downgrade to a stored
// last_error rather than propagate.
func (s *Service) runSingle(ctx context.Context, item *store.ScheduledSearch, now time.Time) {
	logger := s.logger.With(
		logging.Int64(logging.FieldSchedule, item.ID),
		logging.Int64(logging.FieldRound, item.RoundID),
		logging.String(logging.FieldEventType, item.EventType),
	)

	round, err := s.store.GetRound(ctx, item.RoundID)
	if err != nil {
		logger.Error("load round failed", logging.Error(err))
		return
	}
	if round == nil {
		item.Status = store.StatusFailed
		item.LastError = errRoundNotFound
		item.NextRunAt = nil
		s.persist(ctx, item, logger)
		return
	}

	hidden, err := s.store.SeasonHiddenForRound(ctx, item.RoundID)
	if err != nil {
		logger.Error("load season failed", logging.Error(err))
		return
	}
	if hidden {
		item.Status = store.StatusPaused
		item.NextRunAt = nil
		s.persist(ctx, item, logger)
		logger.Info("schedule paused; season hidden")
		return
	}

	eventStart := item.EventStartUTC
	if eventStart == nil {
		eventStart = round.EventStart(item.EventType)
	}
	item.EventStartUTC = eventStart
	nextDue := computeNextRun(eventStart, now)

	// Releases are not expected before the session actually starts.
	if eventStart != nil && now.Before(eventStart.Add(30*time.Minute)) {
		item.Status = store.StatusPending
		item.NextRunAt = &nextDue
		item.LastError = ""
		s.persist(ctx, item, logger)
		return
	}

	if !s.eventAllowed(item.EventType) {
		item.Status = store.StatusPending
		item.NextRunAt = &nextDue
		item.LastError = errEventDisallowed
		s.persist(ctx, item, logger)
		return
	}

	indexers, err := s.store.EnabledIndexers(ctx)
	if err != nil {
		logger.Error("load indexers failed", logging.Error(err))
		return
	}
	if len(indexers) == 0 {
		item.Status = store.StatusFailed
		item.LastError = errNoIndexers
		item.NextRunAt = &nextDue
		s.persist(ctx, item, logger)
		return
	}

	item.Status = store.StatusRunning
	searchedAt := now
	item.LastSearchedAt = &searchedAt
	item.Attempts++
	s.persist(ctx, item, logger)

	session := classify.SessionType(strings.ToLower(item.EventType))
	results := s.search.SearchRound(ctx, search.Endpoints(indexers), *round, []classify.SessionType{session})
	if len(results) == 0 {
		item.Status = store.StatusPending
		item.LastError = errNoResults
		item.NextRunAt = &nextDue
		s.persist(ctx, item, logger)
		return
	}

	settings := scoring.Effective(scoring.FromConfig(s.cfg.Search), overrideFor(item))
	scoring.Apply(results, settings)
	best := pickBest(results, settings.Threshold)
	if best == nil || best.NZBURL == "" {
		item.Status = store.StatusPending
		item.LastError = errBelowThreshold
		item.NextRunAt = &nextDue
		s.persist(ctx, item, logger)
		return
	}

	target, err := s.resolveDownloader(ctx, item.DownloaderID)
	if err != nil {
		logger.Error("load downloaders failed", logging.Error(err))
		return
	}
	if target == nil {
		item.Status = store.StatusFailed
		item.LastError = errNoDownloaders
		item.NextRunAt = &nextDue
		s.persist(ctx, item, logger)
		return
	}

	tag := ensureTag(item)
	title := fmt.Sprintf("%s [%s]", best.Title, tag)
	ok, message := s.downloads.Send(ctx, targetFor(*target), best.NZBURL, title, target.Category, target.Priority)
	if !ok {
		item.Status = store.StatusPending
		item.LastError = message
		item.NextRunAt = &nextDue
		s.persist(ctx, item, logger)
		logger.Warn("downloader dispatch failed", logging.String("message", message))
		return
	}

	item.Status = store.StatusWaitingDownload
	item.NZBTitle = best.Title
	item.NZBURL = best.NZBURL
	item.DownloaderID = &target.ID
	item.LastError = ""
	recheck := now.Add(waitingRecheck)
	item.NextRunAt = &recheck
	s.persist(ctx, item, logger)

	logger.Info("download dispatched",
		logging.String("title", best.Title),
		logging.String("tag", tag),
		logging.String("downloader", target.Name))
	s.notify(ctx, notifications.EventDownloadStarted,
		fmt.Sprintf("Download started: %s", best.Title),
		notifications.Payload{
			"tag":        tag,
			"round_id":   item.RoundID,
			"event_type": item.EventType,
			"downloader": target.Name,
		})
}

func (s *Service) persist(ctx context.Context, item *store.ScheduledSearch, logger *slog.Logger) {
	if err := s.store.UpdateScheduledSearch(ctx, item); err != nil {
		logger.Error("persist schedule failed", logging.Error(err))
	}
}

func (s *Service) eventAllowed(eventType string) bool {
	allowlist := s.cfg.Search.EventAllowlist
	if len(allowlist) == 0 {
		return true
	}
	target := strings.ToLower(strings.TrimSpace(eventType))
	for _, allowed := range allowlist {
		if strings.ToLower(strings.TrimSpace(allowed)) == target {
			return true
		}
	}
	return false
}

// resolveDownloader prefers the schedule's explicit downloader when still
// enabled, then falls back to the first enabled downloader by id order.
func (s *Service) resolveDownloader(ctx context.Context, preferred *int64) (*store.Downloader, error) {
	if preferred != nil {
		target, err := s.store.GetDownloader(ctx, *preferred)
		if err != nil {
			return nil, err
		}
		if target != nil && target.Enabled {
			return target, nil
		}
	}
	return s.store.FirstEnabledDownloader(ctx)
}

// computeNextRun models decaying search frequency after a live event: no
// known start → 6h; before start+30m → exactly that boundary; within 48h of
// start → 10m; within 7 days → 6h; beyond → 24h.
func computeNextRun(eventStart *time.Time, now time.Time) time.Time {
	if eventStart == nil {
		return now.Add(6 * time.Hour)
	}
	anchor := eventStart.Add(30 * time.Minute)
	if now.Before(anchor) {
		return anchor
	}
	elapsed := now.Sub(*eventStart)
	switch {
	case elapsed <= 48*time.Hour:
		return now.Add(10 * time.Minute)
	case elapsed <= 168*time.Hour:
		return now.Add(6 * time.Hour)
	default:
		return now.Add(24 * time.Hour)
	}
}

// ensureTag returns the schedule's dedup tag, generating and persisting it on
// the item the first time.
func ensureTag(item *store.ScheduledSearch) string {
	if item.Tag != "" {
		return item.Tag
	}
	item.Tag = fmt.Sprintf("rc-%d-%s", item.RoundID, strings.ToLower(item.EventType))
	return item.Tag
}

// pickBest returns the highest-scoring candidate at or above the threshold.
func pickBest(results []media.Candidate, threshold int) *media.Candidate {
	var best *media.Candidate
	for i := range results {
		candidate := &results[i]
		if candidate.Score == nil || *candidate.Score < threshold {
			continue
		}
		if best == nil || *candidate.Score > *best.Score {
			best = candidate
		}
	}
	return best
}

func overrideFor(item *store.ScheduledSearch) scoring.Override {
	return scoring.Override{
		MinResolution: item.MinResolution,
		MaxResolution: item.MaxResolution,
		AllowHDR:      item.AllowHDR,
		Threshold:     item.ScoreThreshold,
	}
}

func (s *Service) notify(ctx context.Context, event notifications.Event, message string, data notifications.Payload) {
	if ok, errs := s.notifier.Publish(ctx, event, "Racecarr", message, data); !ok {
		s.logger.Warn("notification delivery incomplete",
			logging.String("event", string(event)),
			logging.Int("failures", len(errs)))
	}
}
