package match

import (
	"fmt"
	"sync"
)

// Registry holds the live sessions keyed by session ID.
type Registry struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewRegistry creates an empty session registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Insert registers a newly created session. Inserting an ID twice is an error.
func (r *Registry) Insert(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrSessionExists, s.ID())
	}
	r.sessions[s.ID()] = s
	return nil
}

// Get returns the live session with the given ID.
func (r *Registry) Get(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	return s, ok
}

// Remove deregisters a session and reports whether it was present.
func (r *Registry) Remove(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return false
	}
	delete(r.sessions, sessionID)
	return true
}

// FindByPlayer returns the active session that playerID takes part in.
func (r *Registry) FindByPlayer(playerID string) (*Session, bool) {
	for _, s := range r.List() {
		if s.HasPlayer(playerID) && s.IsActive() {
			return s, true
		}
	}
	return nil, false
}

// List returns the registered sessions in no particular order.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
