package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/courier/pkg/conversation"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeDetail(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}

// fail maps an engine or store error to its HTTP status.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var engErr *conversation.Error
	if !errors.As(err, &engErr) {
		s.logger.Error("Request failed", "path", r.URL.Path, "err", err)
		s.writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch engErr.Kind {
	case conversation.KindUnauthorized:
		s.writeDetail(w, http.StatusUnauthorized, engErr.Reason)
	case conversation.KindInvalidInput:
		s.writeDetail(w, http.StatusBadRequest, engErr.Reason)
	case conversation.KindNotFound:
		s.writeDetail(w, http.StatusNotFound, engErr.Reason)
	default:
		s.logger.Error("Request failed", "path", r.URL.Path, "err", err)
		s.writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}
