package session

import (
	"sync"
	"time"
)

// Registry owns all live sessions and evicts idle ones.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry returns a registry that evicts sessions idle longer than ttl.
// A non-positive ttl disables eviction.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{sessions: map[string]*Session{}, ttl: ttl, now: time.Now}
}

// Create starts a new session.
func (r *Registry) Create() *Session {
	s := newSession(r.now)
	r.mu.Lock()
	r.sessions[s.state.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session and marks it as seen.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch()
	return s, nil
}

// Exists reports whether id names a live session.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	_, ok := r.sessions[id]
	r.mu.RUnlock()
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts idle sessions and returns how many were removed. Evicted
// sessions have their generation bumped so in-flight work is dropped.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl).UnixNano()
	var evicted []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastSeen.Load() < cutoff {
			delete(r.sessions, id)
			evicted = append(evicted, s)
		}
	}
	r.mu.Unlock()

	for _, s := range evicted {
		s.expire()
	}
	return len(evicted)
}
