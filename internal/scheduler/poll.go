package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"racecarr/internal/downloader"
	"racecarr/internal/logging"
	"racecarr/internal/notifications"
	"racecarr/internal/store"
)

// Download history statuses recognized as terminal outcomes. Anything else
// means the download is still in flight.
var (
	successStatuses = map[string]struct{}{"completed": {}, "success": {}, "ok": {}}
	failureStatuses = map[string]struct{}{"failed": {}, "failure": {}, "error": {}}
)

// pollDownloads reconciles waiting-download schedules and pending manual
// dispatches against downloader history. History is fetched at most once per
// downloader per pass.
func (s *Service) pollDownloads(ctx context.Context) error {
	now := s.now().UTC()

	waiting, err := s.store.WaitingScheduled(ctx)
	if err != nil {
		return fmt.Errorf("load waiting schedules: %w", err)
	}
	manual, err := s.store.PendingManualDownloads(ctx)
	if err != nil {
		return fmt.Errorf("load manual downloads: %w", err)
	}
	if len(waiting) == 0 && len(manual) == 0 {
		return nil
	}

	histories := newHistoryCache(s)
	for _, item := range waiting {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.pollScheduled(ctx, item, histories, now)
	}
	for _, entry := range manual {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.pollManual(ctx, entry, histories)
	}
	return nil
}

func (s *Service) pollScheduled(ctx context.Context, item *store.ScheduledSearch, histories *historyCache, now time.Time) {
	logger := s.logger.With(
		logging.Int64(logging.FieldSchedule, item.ID),
		logging.Int64(logging.FieldRound, item.RoundID),
		logging.String(logging.FieldEventType, item.EventType),
	)

	if item.DownloaderID == nil {
		item.Status = store.StatusFailed
		item.LastError = errMissingDownloader
		next := computeNextRun(item.EventStartUTC, now)
		item.NextRunAt = &next
		s.persist(ctx, item, logger)
		return
	}

	target, err := s.store.GetDownloader(ctx, *item.DownloaderID)
	if err != nil {
		logger.Error("load downloader failed", logging.Error(err))
		return
	}
	if target == nil || !target.Enabled {
		item.Status = store.StatusFailed
		item.LastError = errDownloaderGone
		next := computeNextRun(item.EventStartUTC, now)
		item.NextRunAt = &next
		s.persist(ctx, item, logger)
		return
	}

	tag := ensureTag(item)
	entry, ok := histories.match(ctx, *target, tag)
	if !ok {
		// Still in flight.
		return
	}

	status := strings.ToLower(strings.TrimSpace(entry.Status))
	if _, done := successStatuses[status]; done {
		item.Status = store.StatusCompleted
		item.LastError = ""
		item.NextRunAt = nil
		s.persist(ctx, item, logger)
		logger.Info("download completed", logging.String("title", item.NZBTitle))
		s.notify(ctx, notifications.EventDownloadCompleted,
			fmt.Sprintf("Download completed: %s", item.NZBTitle),
			notifications.Payload{
				"tag":        tag,
				"round_id":   item.RoundID,
				"event_type": item.EventType,
			})
		return
	}
	if _, failed := failureStatuses[status]; failed {
		item.Status = store.StatusFailed
		item.LastError = errDownloaderFailure
		next := computeNextRun(item.EventStartUTC, now)
		item.NextRunAt = &next
		s.persist(ctx, item, logger)
		logger.Warn("download failed", logging.String("title", item.NZBTitle))
		s.notify(ctx, notifications.EventDownloadFailed,
			fmt.Sprintf("Download failed: %s", item.NZBTitle),
			notifications.Payload{
				"tag":        tag,
				"round_id":   item.RoundID,
				"event_type": item.EventType,
			})
	}
}

func (s *Service) pollManual(ctx context.Context, entry *store.ManualDownload, histories *historyCache) {
	logger := s.logger.With(logging.String("tag", entry.Tag))

	if entry.DownloaderID == nil {
		s.updateManual(ctx, entry.Tag, store.ManualStatusFailed, errMissingDownloader, logger)
		return
	}
	target, err := s.store.GetDownloader(ctx, *entry.DownloaderID)
	if err != nil {
		logger.Error("load downloader failed", logging.Error(err))
		return
	}
	if target == nil || !target.Enabled {
		s.updateManual(ctx, entry.Tag, store.ManualStatusFailed, errDownloaderGone, logger)
		return
	}

	row, ok := histories.match(ctx, *target, entry.Tag)
	if !ok {
		return
	}

	status := strings.ToLower(strings.TrimSpace(row.Status))
	if _, done := successStatuses[status]; done {
		s.updateManual(ctx, entry.Tag, store.ManualStatusCompleted, "", logger)
		s.notify(ctx, notifications.EventDownloadCompleted,
			fmt.Sprintf("Download completed: %s", entry.Title),
			notifications.Payload{"tag": entry.Tag})
		return
	}
	if _, failed := failureStatuses[status]; failed {
		s.updateManual(ctx, entry.Tag, store.ManualStatusFailed, errDownloaderFailure, logger)
		s.notify(ctx, notifications.EventDownloadFailed,
			fmt.Sprintf("Download failed: %s", entry.Title),
			notifications.Payload{"tag": entry.Tag})
	}
}

func (s *Service) updateManual(ctx context.Context, tag, status, lastError string, logger *slog.Logger) {
	if err := s.store.UpdateManualDownloadStatus(ctx, tag, status, lastError); err != nil {
		logger.Error("persist manual download failed", logging.Error(err))
	}
}

// DispatchManual sends a candidate directly to a downloader outside the
// schedule state machine and records it for poll-loop reconciliation. The
// dedup tag carries a random suffix so repeated manual sends of the same
// title stay distinguishable.
func (s *Service) DispatchManual(ctx context.Context, title, nzbURL string, downloaderID *int64) (string, error) {
	if strings.TrimSpace(nzbURL) == "" {
		return "", fmt.Errorf("nzb url is required")
	}

	target, err := s.resolveDownloader(ctx, downloaderID)
	if err != nil {
		return "", fmt.Errorf("resolve downloader: %w", err)
	}
	if target == nil {
		return "", fmt.Errorf("%s", errNoDownloaders)
	}

	tag := "rc-manual-" + uuid.NewString()[:8]
	tagged := fmt.Sprintf("%s [%s]", title, tag)
	ok, message := s.downloads.Send(ctx, targetFor(*target), nzbURL, tagged, target.Category, target.Priority)
	if !ok {
		return "", fmt.Errorf("downloader rejected dispatch: %s", message)
	}

	if err := s.store.AddManualDownload(ctx, store.ManualDownload{
		Tag:          tag,
		Title:        title,
		DownloaderID: &target.ID,
	}); err != nil {
		return "", fmt.Errorf("record manual download: %w", err)
	}

	s.logger.Info("manual download dispatched",
		logging.String("tag", tag),
		logging.String("title", title),
		logging.String("downloader", target.Name))
	s.notify(ctx, notifications.EventDownloadStarted,
		fmt.Sprintf("Download started: %s", title),
		notifications.Payload{"tag": tag, "downloader": target.Name})
	return tag, nil
}

func targetFor(row store.Downloader) downloader.Target {
	return downloader.Target{
		ID:       row.ID,
		Name:     row.Name,
		Type:     row.Type,
		APIURL:   row.APIURL,
		APIKey:   row.APIKey,
		Category: row.Category,
		Priority: row.Priority,
	}
}

// historyCache memoizes per-downloader history for one poll pass.
type historyCache struct {
	service *Service
	entries map[int64][]downloader.HistoryEntry
	failed  map[int64]struct{}
}

func newHistoryCache(service *Service) *historyCache {
	return &historyCache{
		service: service,
		entries: make(map[int64][]downloader.HistoryEntry),
		failed:  make(map[int64]struct{}),
	}
}

// match returns the first history entry whose name contains the tag,
// case-insensitively.
func (h *historyCache) match(ctx context.Context, target store.Downloader, tag string) (downloader.HistoryEntry, bool) {
	if _, bad := h.failed[target.ID]; bad {
		return downloader.HistoryEntry{}, false
	}
	history, ok := h.entries[target.ID]
	if !ok {
		var err error
		history, err = h.service.downloads.History(ctx, targetFor(target), historyLimit)
		if err != nil {
			h.service.logger.Warn("downloader history failed",
				logging.String("downloader", target.Name),
				logging.Error(err))
			h.failed[target.ID] = struct{}{}
			return downloader.HistoryEntry{}, false
		}
		h.entries[target.ID] = history
	}

	needle := strings.ToLower(tag)
	for _, entry := range history {
		if strings.Contains(strings.ToLower(entry.Name), needle) {
			return entry, true
		}
	}
	return downloader.HistoryEntry{}, false
}
