package api

import (
	"net/http"
	"strings"

	"racecarr/internal/logging"
	"racecarr/internal/store"
)

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz reports readiness by probing the database.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("readiness probe failed", logging.Error(err))
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type statusResponse struct {
	Status    string         `json:"status"`
	Database  string         `json:"database"`
	Schedules map[string]int `json:"schedules"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.ScheduleStats(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	statuses := store.AllStatuses()
	schedules := make(map[string]int, len(statuses))
	for _, status := range statuses {
		schedules[string(status)] = stats[status]
	}
	s.respondJSON(w, http.StatusOK, statusResponse{
		Status:    "running",
		Database:  s.store.Path(),
		Schedules: schedules,
	})
}

type manualDownloadRequest struct {
	Title        string `json:"title"`
	NZBURL       string `json:"nzb_url"`
	DownloaderID *int64 `json:"downloader_id"`
}

// handleManualDownload dispatches a user-supplied NZB straight to a
// downloader and records it for poll tracking.
func (s *Server) handleManualDownload(w http.ResponseWriter, r *http.Request) {
	var req manualDownloadRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondBadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.NZBURL) == "" {
		s.respondBadRequest(w, "nzb_url is required")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Manual download"
	}

	tag, err := s.scheduler.DispatchManual(r.Context(), title, req.NZBURL, req.DownloaderID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"tag": tag})
}

type notificationTestResponse struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
}

func (s *Server) handleTestNotifications(w http.ResponseWriter, r *http.Request) {
	ok, failures := s.notifier.Test(r.Context())
	if failures == nil {
		failures = []string{}
	}
	s.respondJSON(w, http.StatusOK, notificationTestResponse{OK: ok, Errors: failures})
}
