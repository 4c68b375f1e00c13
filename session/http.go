package session

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xldeveloper/theinterneti-tta-solo/router"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
)

// Server exposes the Manager over HTTP. It is a thin adapter: all
// rules live in router.Router, this only does request/response
// plumbing (spec.md §6: the HTTP surface is not part of the resolution
// engine itself).
type Server struct {
	manager *Manager
	logger  *zap.Logger
	mux     chi.Router
}

// NewServer builds the chi-routed HTTP surface over an existing Manager.
func NewServer(manager *Manager, logger *zap.Logger) *Server {
	s := &Server{manager: manager, logger: logger, mux: chi.NewRouter()}
	s.mux.Post("/sessions/{sessionID}/turn", s.handleTurn)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	var in router.TurnInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, rpgerr.BadInput("malformed turn body"))
		return
	}

	sess, err := s.manager.Get(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := sess.Dispatch(r.Context(), in)
	if err != nil {
		s.logger.Error("turn dispatch failed", zap.String("session_id", sessionID), zap.Error(err))
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch rpgerr.GetCode(err) {
	case rpgerr.CodeBadInput, rpgerr.CodeInvalidTarget:
		status = http.StatusBadRequest
	case rpgerr.CodeNotFound:
		status = http.StatusNotFound
	case rpgerr.CodeConflictState:
		status = http.StatusConflict
	case rpgerr.CodeInsufficientResource:
		status = http.StatusTooManyRequests
	case rpgerr.CodeTimeout:
		status = http.StatusGatewayTimeout
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
