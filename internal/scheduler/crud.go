package scheduler

import (
	"context"
	"fmt"
	"strings"

	"racecarr/internal/services"
	"racecarr/internal/store"
)

// CreateRequest describes a new scheduled search.
type CreateRequest struct {
	RoundID        int64
	EventType      string
	DownloaderID   *int64
	MinResolution  *string
	MaxResolution  *string
	AllowHDR       *bool
	ScoreThreshold *int
}

// UpdateRequest describes a schedule mutation. Nil fields are left unchanged.
// Status may only move to pending or paused.
type UpdateRequest struct {
	DownloaderID   *int64
	Status         *string
	MinResolution  *string
	MaxResolution  *string
	AllowHDR       *bool
	ScoreThreshold *int
}

// List returns all scheduled searches.
func (s *Service) List(ctx context.Context) ([]*store.ScheduledSearch, error) {
	return s.store.ListScheduledSearches(ctx)
}

// Get returns one scheduled search, or nil.
func (s *Service) Get(ctx context.Context, id int64) (*store.ScheduledSearch, error) {
	return s.store.GetScheduledSearch(ctx, id)
}

// Create schedules an event for automation. The round must exist; the
// (round, event type) pair is unique and an existing schedule is returned
// as-is. The default downloader from config applies when none is given.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*store.ScheduledSearch, error) {
	eventType := strings.ToLower(strings.TrimSpace(req.EventType))
	if eventType == "" {
		return nil, services.Wrap(services.ErrValidation, "scheduler", "create", "event type is required", nil)
	}

	round, err := s.store.GetRound(ctx, req.RoundID)
	if err != nil {
		return nil, fmt.Errorf("load round: %w", err)
	}
	if round == nil {
		return nil, services.Wrap(services.ErrNotFound, "scheduler", "create",
			fmt.Sprintf("round %d not found", req.RoundID), nil)
	}

	existing, err := s.store.GetScheduledByRoundEvent(ctx, req.RoundID, eventType)
	if err != nil {
		return nil, fmt.Errorf("check existing schedule: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	downloaderID := req.DownloaderID
	if downloaderID == nil && s.cfg.Search.DefaultDownloaderID > 0 {
		id := s.cfg.Search.DefaultDownloaderID
		downloaderID = &id
	}

	now := s.now().UTC()
	eventStart := round.EventStart(eventType)
	nextRun := computeNextRun(eventStart, now)

	item, err := s.store.AddScheduledSearch(ctx, store.ScheduledSearch{
		RoundID:        req.RoundID,
		EventType:      eventType,
		Status:         store.StatusPending,
		AddedAt:        now,
		NextRunAt:      &nextRun,
		EventStartUTC:  eventStart,
		MinResolution:  req.MinResolution,
		MaxResolution:  req.MaxResolution,
		AllowHDR:       req.AllowHDR,
		ScoreThreshold: req.ScoreThreshold,
	})
	if err != nil {
		return nil, err
	}
	if downloaderID != nil {
		item.DownloaderID = downloaderID
		if err := s.store.UpdateScheduledSearch(ctx, item); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// Update mutates a schedule. Status transitions are restricted to pending
// (re-arm, recomputing the due time) and paused (clearing it).
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*store.ScheduledSearch, error) {
	item, err := s.store.GetScheduledSearch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "scheduler", "update",
			fmt.Sprintf("schedule %d not found", id), nil)
	}

	if req.DownloaderID != nil {
		item.DownloaderID = req.DownloaderID
	}
	if req.MinResolution != nil {
		item.MinResolution = req.MinResolution
	}
	if req.MaxResolution != nil {
		item.MaxResolution = req.MaxResolution
	}
	if req.AllowHDR != nil {
		item.AllowHDR = req.AllowHDR
	}
	if req.ScoreThreshold != nil {
		item.ScoreThreshold = req.ScoreThreshold
	}

	if req.Status != nil {
		status, ok := store.ParseStatus(*req.Status)
		if !ok || (status != store.StatusPending && status != store.StatusPaused) {
			return nil, services.Wrap(services.ErrValidation, "scheduler", "update",
				fmt.Sprintf("invalid status %q", *req.Status), nil)
		}
		item.Status = status
		item.LastError = ""
		if status == store.StatusPaused {
			item.NextRunAt = nil
		} else {
			next := computeNextRun(item.EventStartUTC, s.now().UTC())
			item.NextRunAt = &next
		}
	}

	if err := s.store.UpdateScheduledSearch(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a schedule and reports whether it existed.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.store.RemoveScheduledSearch(ctx, id)
}
