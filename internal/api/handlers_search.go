package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"racecarr/internal/classify"
	"racecarr/internal/scoring"
	"racecarr/internal/search"
)

// handleSearch runs an ad-hoc free-text search across enabled indexers.
// Query parameters: q (required), limit, types (comma-separated session
// types).
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.respondBadRequest(w, "q is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.respondBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	var types []classify.SessionType
	if raw := strings.TrimSpace(r.URL.Query().Get("types")); raw != "" {
		for _, token := range strings.Split(raw, ",") {
			session, ok := classify.ParseSessionType(token)
			if !ok {
				s.respondBadRequest(w, "unknown session type "+strings.TrimSpace(token))
				return
			}
			types = append(types, session)
		}
	}

	indexers, err := s.store.EnabledIndexers(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	results := s.orch.Search(r.Context(), search.Endpoints(indexers), query, limit, types)
	scoring.Apply(results, scoring.FromConfig(s.cfg.Search))
	s.respondJSON(w, http.StatusOK, results)
}

type roundSearchResponse struct {
	Results   any        `json:"results"`
	FromCache bool       `json:"from_cache"`
	CachedAt  *time.Time `json:"cached_at,omitempty"`
	TTL       int64      `json:"ttl_seconds"`
}

// handleRoundSearch serves round searches through the result cache. The
// force query parameter bypasses and refreshes the cache.
func (s *Server) handleRoundSearch(w http.ResponseWriter, r *http.Request) {
	roundID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondBadRequest(w, "invalid round id")
		return
	}
	force := parseBool(r.URL.Query().Get("force"))

	result, err := s.roundSearch.Search(r.Context(), roundID, force)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, roundSearchResponse{
		Results:   result.Results,
		FromCache: result.FromCache,
		CachedAt:  result.CachedAt,
		TTL:       int64(result.TTL.Seconds()),
	})
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
