// Package session implements spec.md §5's concurrency model: a server
// process may run many sessions concurrently, but each session
// processes its turns one at a time (suspending only at repo I/O or
// LLM calls). Cross-session fan-out is grounded on the pack's
// golang.org/x/sync/errgroup convention (see
// internal/campaign/intelligence_gatherer.go's parallel-gather loop).
package session

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/xldeveloper/theinterneti-tta-solo/router"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
)

// Session serializes turn dispatch for one player/universe pairing.
type Session struct {
	ID         string
	UniverseID string

	mu     sync.Mutex
	router *router.Router
}

// Dispatch runs one turn, holding the session's lock for its duration
// so two turns for the same session never interleave.
func (s *Session) Dispatch(ctx context.Context, in router.TurnInput) (*router.TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in.UniverseID = s.UniverseID
	return s.router.Dispatch(ctx, in)
}

// Manager owns the set of live sessions for a process.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
}

// NewManager builds an empty Manager bounded to maxSessions concurrent
// sessions (spec.md §6 config surface: TTA_MAX_SESSIONS).
func NewManager(maxSessions int) *Manager {
	return &Manager{sessions: make(map[string]*Session), maxSessions: maxSessions}
}

// Create registers a new session bound to the given Router, or fails
// if the process is already at capacity.
func (m *Manager) Create(id, universeID string, r *router.Router) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; exists {
		return nil, rpgerr.ConflictState("session already exists", rpgerr.WithMeta("session_id", id))
	}
	if len(m.sessions) >= m.maxSessions {
		return nil, rpgerr.InsufficientResource("session capacity exhausted", rpgerr.WithMeta("max_sessions", m.maxSessions))
	}
	s := &Session{ID: id, UniverseID: universeID, router: r}
	m.sessions[id] = s
	return s, nil
}

// Get returns a live session, or NotFound.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, rpgerr.NotFound("session not found", rpgerr.WithMeta("session_id", id))
	}
	return s, nil
}

// Close drops a session from the manager. In-flight turns already
// holding the session's lock still run to completion.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// TurnRequest addresses one turn at a specific session.
type TurnRequest struct {
	SessionID string
	Input     router.TurnInput
}

// TurnResponse pairs a request's session id with its outcome; Err is
// set instead of Result when that one session's turn failed, so one
// bad session never drops the others' results.
type TurnResponse struct {
	SessionID string
	Result    *router.TurnResult
	Err       error
}

// DispatchMany runs turns for independent sessions concurrently —
// sessions never share state, so there is no reason to serialize
// across them even though each serializes internally.
func (m *Manager) DispatchMany(ctx context.Context, reqs []TurnRequest) []TurnResponse {
	responses := make([]TurnResponse, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			s, err := m.Get(req.SessionID)
			if err != nil {
				responses[i] = TurnResponse{SessionID: req.SessionID, Err: err}
				return nil
			}
			result, err := s.Dispatch(gctx, req.Input)
			responses[i] = TurnResponse{SessionID: req.SessionID, Result: result, Err: err}
			return nil
		})
	}
	_ = g.Wait() // errors are carried per-response, never aborts the batch
	return responses
}
