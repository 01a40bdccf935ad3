package mcp

import (
	"sync"
	"time"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
)

// SessionBindings maps protocol session ids to the principal that
// authenticated the session's first request. It is a deliberate cache, not a
// source of truth: a missing binding means "unauthenticated", never an error
// to retry against storage, and losing the map on restart just forces
// clients to re-initialize.
type SessionBindings struct {
	mu       sync.RWMutex
	bindings map[string]*entities.SessionBinding
}

func NewSessionBindings() *SessionBindings {
	return &SessionBindings{
		bindings: make(map[string]*entities.SessionBinding),
	}
}

// Bind records the resolved principal for a session. Called once, right
// after the session's first request authenticates.
func (s *SessionBindings) Bind(sessionID string, principal *entities.Principal) {
	if sessionID == "" || principal == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[sessionID] = &entities.SessionBinding{
		SessionID: sessionID,
		UserID:    principal.UserID,
		IsAdmin:   principal.IsAdmin,
		BoundAt:   time.Now(),
	}
}

// Resolve returns the bound principal, or false for unknown sessions.
// No I/O happens here; this sits on every tool call.
func (s *SessionBindings) Resolve(sessionID string) (*entities.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bindings[sessionID]
	if !ok {
		return nil, false
	}
	return &entities.Principal{UserID: b.UserID, IsAdmin: b.IsAdmin}, true
}

// UserID returns the bound user id, or empty for unknown sessions.
func (s *SessionBindings) UserID(sessionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.bindings[sessionID]; ok {
		return b.UserID
	}
	return ""
}

// IsAdmin reports the bound admin flag; unknown sessions are never admin.
func (s *SessionBindings) IsAdmin(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.bindings[sessionID]; ok {
		return b.IsAdmin
	}
	return false
}

// Unbind drops a session's binding when the transport reports close.
func (s *SessionBindings) Unbind(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bindings, sessionID)
}

// Retain drops every binding whose session id is not in live, returning how
// many were removed. Used to reconcile against the transport's own session
// registry, so a session torn down without an explicit DELETE (keepalive
// timeout, transport-side close) cannot leave its binding behind.
func (s *SessionBindings) Retain(live map[string]struct{}) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id := range s.bindings {
		if _, ok := live[id]; !ok {
			delete(s.bindings, id)
			removed++
		}
	}
	return removed
}

// Clear drops every binding; called on shutdown.
func (s *SessionBindings) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings = make(map[string]*entities.SessionBinding)
}

// Len reports the number of live bindings.
func (s *SessionBindings) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bindings)
}
