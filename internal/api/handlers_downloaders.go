package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"racecarr/internal/downloader"
	"racecarr/internal/store"
)

type downloaderRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	APIURL   string `json:"api_url"`
	APIKey   string `json:"api_key"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
	Enabled  *bool  `json:"enabled"`
}

func (req downloaderRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	switch strings.ToLower(strings.TrimSpace(req.Type)) {
	case "sabnzbd", "nzbget":
	default:
		return "type must be sabnzbd or nzbget"
	}
	if strings.TrimSpace(req.APIURL) == "" {
		return "api_url is required"
	}
	return ""
}

func (req downloaderRequest) toRecord(id int64) store.Downloader {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	return store.Downloader{
		ID:       id,
		Name:     strings.TrimSpace(req.Name),
		Type:     strings.ToLower(strings.TrimSpace(req.Type)),
		APIURL:   strings.TrimSpace(req.APIURL),
		APIKey:   strings.TrimSpace(req.APIKey),
		Category: strings.TrimSpace(req.Category),
		Priority: req.Priority,
		Enabled:  enabled,
	}
}

func (s *Server) handleListDownloaders(w http.ResponseWriter, r *http.Request) {
	downloaders, err := s.store.ListDownloaders(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, downloaders)
}

func (s *Server) handleAddDownloader(w http.ResponseWriter, r *http.Request) {
	var req downloaderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondBadRequest(w, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		s.respondBadRequest(w, msg)
		return
	}
	created, err := s.store.AddDownloader(r.Context(), req.toRecord(0))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateDownloader(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondBadRequest(w, "invalid downloader id")
		return
	}
	existing, err := s.store.GetDownloader(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if existing == nil {
		s.respondNotFound(w, "downloader not found")
		return
	}

	var req downloaderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondBadRequest(w, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		s.respondBadRequest(w, msg)
		return
	}
	record := req.toRecord(id)
	if record.APIKey == "" {
		record.APIKey = existing.APIKey
	}
	if err := s.store.UpdateDownloader(r.Context(), record); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleRemoveDownloader(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondBadRequest(w, "invalid downloader id")
		return
	}
	found, err := s.store.RemoveDownloader(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if !found {
		s.respondNotFound(w, "downloader not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleTestDownloader(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondBadRequest(w, "invalid downloader id")
		return
	}
	record, err := s.store.GetDownloader(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if record == nil {
		s.respondNotFound(w, "downloader not found")
		return
	}
	ok, message := s.downloaders.Test(r.Context(), downloader.Target{
		ID:       record.ID,
		Name:     record.Name,
		Type:     record.Type,
		APIURL:   record.APIURL,
		APIKey:   record.APIKey,
		Category: record.Category,
		Priority: record.Priority,
	})
	s.respondJSON(w, http.StatusOK, testResponse{OK: ok, Message: message})
}
