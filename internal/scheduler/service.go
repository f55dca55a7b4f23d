package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"racecarr/internal/classify"
	"racecarr/internal/config"
	"racecarr/internal/downloader"
	"racecarr/internal/indexer"
	"racecarr/internal/logging"
	"racecarr/internal/media"
	"racecarr/internal/notifications"
	"racecarr/internal/store"
)

const (
	minLoopInterval = time.Minute
	historyLimit    = 80
	waitingRecheck  = 6 * time.Hour
)

// Searcher runs a round-driven search. Implemented by search.Orchestrator.
type Searcher interface {
	SearchRound(ctx context.Context, endpoints []indexer.Endpoint, round media.Round, types []classify.SessionType) []media.Candidate
}

// DownloadClient dispatches and inspects download targets. Implemented by
// downloader.Client.
type DownloadClient interface {
	Send(ctx context.Context, target downloader.Target, nzbURL, title, category string, priority int) (bool, string)
	History(ctx context.Context, target downloader.Target, limit int) ([]downloader.HistoryEntry, error)
}

// Service owns the scheduler state machine and its two loops.
type Service struct {
	store     *store.Store
	search    Searcher
	downloads DownloadClient
	notifier  notifications.Service
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time

	tickInterval time.Duration
	pollInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs the scheduler service. Loop intervals come from the config
// and are clamped to at least one minute.
func New(st *store.Store, search Searcher, downloads DownloadClient, notifier notifications.Service, cfg *config.Config, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = notifications.NewService(&config.Config{}, logger)
	}
	return &Service{
		store:        st,
		search:       search,
		downloads:    downloads,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logging.NewComponentLogger(logger, "scheduler"),
		now:          time.Now,
		tickInterval: clampInterval(cfg.Scheduler.TickInterval),
		pollInterval: clampInterval(cfg.Scheduler.PollInterval),
	}
}

func clampInterval(seconds int) time.Duration {
	interval := time.Duration(seconds) * time.Second
	if interval < minLoopInterval {
		return minLoopInterval
	}
	return interval
}

// Start launches the tick and poll loops. Calling Start on a running service
// is a no-op.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go s.runLoop(loopCtx, s.tickInterval, "tick", s.runDue)
	go s.runLoop(loopCtx, s.pollInterval, "poll", s.pollDownloads)
	s.logger.Info("scheduler started",
		logging.Duration("tick_interval", s.tickInterval),
		logging.Duration("poll_interval", s.pollInterval))
}

// Stop cancels the loops and waits for them to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// runLoop invokes fn immediately and then on every interval until the context
// is canceled. A failed iteration is logged and the loop continues.
func (s *Service) runLoop(ctx context.Context, interval time.Duration, name string, fn func(context.Context) error) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("scheduler iteration failed",
				logging.String("loop", name),
				logging.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
