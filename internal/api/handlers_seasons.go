package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := s.store.ListSeasons(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, seasons)
}

type addSeasonRequest struct {
	Year int `json:"year"`
}

// handleAddSeason creates a season row and immediately refreshes its rounds
// from the calendar feed.
func (s *Server) handleAddSeason(w http.ResponseWriter, r *http.Request) {
	var req addSeasonRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondBadRequest(w, "invalid request body")
		return
	}
	if req.Year < 1950 || req.Year > 2100 {
		s.respondBadRequest(w, "year out of range")
		return
	}

	season, err := s.calendar.RefreshSeason(r.Context(), s.store, req.Year)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, season)
}

func (s *Server) handleSeasonRounds(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		s.respondBadRequest(w, "invalid year")
		return
	}
	season, err := s.store.GetSeasonByYear(r.Context(), year)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if season == nil {
		s.respondNotFound(w, "season not found")
		return
	}
	rounds, err := s.store.RoundsForSeason(r.Context(), season.ID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rounds)
}

func (s *Server) handleRefreshSeason(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		s.respondBadRequest(w, "invalid year")
		return
	}
	season, err := s.calendar.RefreshSeason(r.Context(), s.store, year)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, season)
}

type setHiddenRequest struct {
	Hidden bool `json:"hidden"`
}

func (s *Server) handleSetSeasonHidden(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		s.respondBadRequest(w, "invalid year")
		return
	}
	var req setHiddenRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondBadRequest(w, "invalid request body")
		return
	}
	found, err := s.store.SetSeasonHidden(r.Context(), year, req.Hidden)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if !found {
		s.respondNotFound(w, "season not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"hidden": req.Hidden})
}
