package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"racecarr/internal/logging"
	"racecarr/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response failed", logging.Error(err))
	}
}

// respondError maps service error classes onto HTTP status codes. Unclassified
// errors return a generic 500 so internals never leak to callers.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		s.respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConfiguration):
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed", logging.Error(err))
		s.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) respondBadRequest(w http.ResponseWriter, message string) {
	s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

func (s *Server) respondNotFound(w http.ResponseWriter, message string) {
	s.respondJSON(w, http.StatusNotFound, errorResponse{Error: message})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}
