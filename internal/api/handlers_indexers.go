package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"racecarr/internal/indexer"
	"racecarr/internal/store"
)

type indexerRequest struct {
	Name     string `json:"name"`
	APIURL   string `json:"api_url"`
	APIKey   string `json:"api_key"`
	Category string `json:"category"`
	Enabled  *bool  `json:"enabled"`
}

func (req indexerRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if strings.TrimSpace(req.APIURL) == "" {
		return "api_url is required"
	}
	return ""
}

func (req indexerRequest) toRecord(id int64) store.Indexer {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	return store.Indexer{
		ID:       id,
		Name:     strings.TrimSpace(req.Name),
		APIURL:   strings.TrimSpace(req.APIURL),
		APIKey:   strings.TrimSpace(req.APIKey),
		Category: strings.TrimSpace(req.Category),
		Enabled:  enabled,
	}
}

func (s *Server) handleListIndexers(w http.ResponseWriter, r *http.Request) {
	indexers, err := s.store.ListIndexers(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, indexers)
}

func (s *Server) handleAddIndexer(w http.ResponseWriter, r *http.Request) {
	var req indexerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondBadRequest(w, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		s.respondBadRequest(w, msg)
		return
	}
	created, err := s.store.AddIndexer(r.Context(), req.toRecord(0))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateIndexer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondBadRequest(w, "invalid indexer id")
		return
	}
	existing, err := s.store.GetIndexer(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if existing == nil {
		s.respondNotFound(w, "indexer not found")
		return
	}

	var req indexerRequest
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
	if err := s.store.UpdateIndexer(r.Context(), record); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleRemoveIndexer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondBadRequest(w, "invalid indexer id")
		return
	}
	found, err := s.store.RemoveIndexer(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if !found {
		s.respondNotFound(w, "indexer not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type testResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (s *Server) handleTestIndexer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondBadRequest(w, "invalid indexer id")
		return
	}
	record, err := s.store.GetIndexer(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if record == nil {
		s.respondNotFound(w, "indexer not found")
		return
	}
	ok, message := s.indexers.Test(r.Context(), indexer.Endpoint{
		Name:     record.Name,
		APIURL:   record.APIURL,
		APIKey:   record.APIKey,
		Category: record.Category,
	})
	s.respondJSON(w, http.StatusOK, testResponse{OK: ok, Message: message})
}
