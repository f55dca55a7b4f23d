package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"racecarr/internal/calendar"
	"racecarr/internal/classify"
	"racecarr/internal/config"
	"racecarr/internal/downloader"
	"racecarr/internal/indexer"
	"racecarr/internal/logging"
	"racecarr/internal/media"
	"racecarr/internal/notifications"
	"racecarr/internal/scheduler"
	"racecarr/internal/search"
	"racecarr/internal/store"
)

// Orchestrator is the ad-hoc search surface the API depends on.
type Orchestrator interface {
	Search(ctx context.Context, endpoints []indexer.Endpoint, query string, limit int, types []classify.SessionType) []media.Candidate
}

// IndexerTester probes indexer connectivity.
type IndexerTester interface {
	Test(ctx context.Context, endpoint indexer.Endpoint) (bool, string)
}

// DownloaderTester probes downloader connectivity.
type DownloaderTester interface {
	Test(ctx context.Context, target downloader.Target) (bool, string)
}

// Server wires the HTTP surface to the daemon's services.
type Server struct {
	store       *store.Store
	scheduler   *scheduler.Service
	orch        Orchestrator
	roundSearch *search.RoundSearchService
	calendar    *calendar.Client
	indexers    IndexerTester
	downloaders DownloaderTester
	notifier    notifications.Service
	cfg         *config.Config
	logger      *slog.Logger
}

// NewServer constructs the API server.
func NewServer(
	st *store.Store,
	sched *scheduler.Service,
	orch Orchestrator,
	roundSearch *search.RoundSearchService,
	cal *calendar.Client,
	indexers IndexerTester,
	downloaders DownloaderTester,
	notifier notifications.Service,
	cfg *config.Config,
	logger *slog.Logger,
) *Server {
	return &Server{
		store:       st,
		scheduler:   sched,
		orch:        orch,
		roundSearch: roundSearch,
		calendar:    cal,
		indexers:    indexers,
		downloaders: downloaders,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "api"),
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.logMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/search", s.handleSearch)
		r.Get("/rounds/{id}/search", s.handleRoundSearch)

		r.Get("/seasons", s.handleListSeasons)
		r.Post("/seasons", s.handleAddSeason)
		r.Get("/seasons/{year}/rounds", s.handleSeasonRounds)
		r.Post("/seasons/{year}/refresh", s.handleRefreshSeason)
		r.Post("/seasons/{year}/hidden", s.handleSetSeasonHidden)

		r.Get("/indexers", s.handleListIndexers)
		r.Post("/indexers", s.handleAddIndexer)
		r.Put("/indexers/{id}", s.handleUpdateIndexer)
		r.Delete("/indexers/{id}", s.handleRemoveIndexer)
		r.Post("/indexers/{id}/test", s.handleTestIndexer)

		r.Get("/downloaders", s.handleListDownloaders)
		r.Post("/downloaders", s.handleAddDownloader)
		r.Put("/downloaders/{id}", s.handleUpdateDownloader)
		r.Delete("/downloaders/{id}", s.handleRemoveDownloader)
		r.Post("/downloaders/{id}/test", s.handleTestDownloader)

		r.Get("/schedules", s.handleListSchedules)
		r.Post("/schedules", s.handleCreateSchedule)
		r.Patch("/schedules/{id}", s.handleUpdateSchedule)
		r.Delete("/schedules/{id}", s.handleDeleteSchedule)
		r.Post("/schedules/{id}/run", s.handleRunSchedule)

		r.Post("/downloads", s.handleManualDownload)
		r.Post("/notifications/test", s.handleTestNotifications)
	})

	return r
}
