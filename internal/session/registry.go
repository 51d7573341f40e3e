package session

import (
	"sync"

	"github.com/goldencrust/interview-agent/internal/agent"
)

// Session is one live interview connection's entry in the registry. State is
// owned by that connection's session loop; other readers must not touch its
// fields while the session is live.
type Session struct {
	ID          string
	CandidateID string
	State       *agent.State
}

// Registry tracks active interview sessions. It is the only structure shared
// across sessions, so it owns its own synchronization; the orchestrator is
// the only caller that removes entries.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Put registers a session under its id.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove unregisters a session. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
