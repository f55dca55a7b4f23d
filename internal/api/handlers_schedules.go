package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"racecarr/internal/scheduler"
)

type createScheduleRequest struct {
	RoundID        int64   `json:"round_id"`
	EventType      string  `json:"event_type"`
	DownloaderID   *int64  `json:"downloader_id"`
	MinResolution  *string `json:"min_resolution"`
	MaxResolution  *string `json:"max_resolution"`
	AllowHDR       *bool   `json:"allow_hdr"`
	ScoreThreshold *int    `json:"score_threshold"`
}

type updateScheduleRequest struct {
	DownloaderID   *int64  `json:"downloader_id"`
	Status         *string `json:"status"`
	MinResolution  *string `json:"min_resolution"`
	MaxResolution  *string `json:"max_resolution"`
	AllowHDR       *bool   `json:"allow_hdr"`
	ScoreThreshold *int    `json:"score_threshold"`
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.scheduler.List(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, schedules)
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondBadRequest(w, "invalid request body")
		return
	}
	item, err := s.scheduler.Create(r.Context(), scheduler.CreateRequest{
		RoundID:        req.RoundID,
		EventType:      req.EventType,
		DownloaderID:   req.DownloaderID,
		MinResolution:  req.MinResolution,
		MaxResolution:  req.MaxResolution,
		AllowHDR:       req.AllowHDR,
		ScoreThreshold: req.ScoreThreshold,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondBadRequest(w, "invalid schedule id")
		return
	}
	var req updateScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondBadRequest(w, "invalid request body")
		return
	}
	item, err := s.scheduler.Update(r.Context(), id, scheduler.UpdateRequest{
		DownloaderID:   req.DownloaderID,
		Status:         req.Status,
		MinResolution:  req.MinResolution,
		MaxResolution:  req.MaxResolution,
		AllowHDR:       req.AllowHDR,
		ScoreThreshold: req.ScoreThreshold,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondBadRequest(w, "invalid schedule id")
		return
	}
	found, err := s.scheduler.Delete(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if !found {
		s.respondNotFound(w, "schedule not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// handleRunSchedule triggers a single scheduler pass for one item, bypassing
// its due time.
func (s *Server) handleRunSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondBadRequest(w, "invalid schedule id")
		return
	}
	item, err := s.scheduler.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if item == nil {
		s.respondNotFound(w, "schedule not found")
		return
	}
	if err := s.scheduler.RunNow(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	updated, err := s.scheduler.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}
