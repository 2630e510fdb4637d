package hub

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/doc82/bruce-messenger-fun/internal/domain"
)

// SessionRegistry is the authoritative map of connected sessions. It is
// owned exclusively by the Hub; all business-logic mutations arrive through
// the single dispatcher, the lock only guards against concurrent reads from
// the fan-out path.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]domain.Session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[uuid.UUID]domain.Session),
	}
}

// Upsert records a session under its id, overwriting any existing record.
// Re-joining with the same id is a re-announce, not an error. Display names
// are not checked for uniqueness; the name-taken error code is reserved for
// when they are.
func (r *SessionRegistry) Upsert(id uuid.UUID, name string) domain.Session {
	session := domain.NewSession(id, name)
	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()
	return session
}

// Remove deletes a session and reports the removed record, if any.
func (r *SessionRegistry) Remove(id uuid.UUID) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return session, ok
}

// Get returns the session registered under id.
func (r *SessionRegistry) Get(id uuid.UUID) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

// Snapshot returns a point-in-time copy of all registered sessions, in no
// particular order.
func (r *SessionRegistry) Snapshot() []domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.sessions)
}

// Len reports the number of registered sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
