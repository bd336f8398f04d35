package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/moteur/internal/search"
)

// DefaultMaxSessions bounds the registry when no explicit cap is given.
const DefaultMaxSessions = 10000

// Factory builds the controller of a new session.
type Factory func() *search.Controller

// Registry maps browser sessions to their search controller.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]*search.Controller // ID -> Controller
	factory     Factory
	maxSessions int
	lastGC      time.Time
}

// NewRegistry creates an empty registry holding at most maxSessions
// sessions. A cap <= 0 uses DefaultMaxSessions.
func NewRegistry(factory Factory, maxSessions int) *Registry {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Registry{
		sessions:    make(map[string]*search.Controller),
		factory:     factory,
		maxSessions: maxSessions,
	}
}

// Get retrieves the controller of a session
func (r *Registry) Get(id string) (*search.Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.sessions[id]
	return c, ok
}

// Resolve returns the session for id, creating it when unknown.
// A malformed id is replaced by a fresh one; a well-formed but unknown id
// (e.g. after a restart or eviction) is kept so the browser cookie stays
// valid. When the registry is full the least recently active session is
// evicted to make room.
func (r *Registry) Resolve(id string) (string, *search.Controller, bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	if c, ok := r.Get(id); ok {
		return id, c, false
	}

	r.mu.Lock()
	if c, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return id, c, false
	}
	var evicted *search.Controller
	if len(r.sessions) >= r.maxSessions {
		evicted = r.evictOldestLocked()
	}
	c := r.factory()
	r.sessions[id] = c
	r.mu.Unlock()

	if evicted != nil {
		evicted.Close()
	}
	return id, c, true
}

// evictOldestLocked removes the least recently active session and returns
// it so the caller can close it outside the lock.
func (r *Registry) evictOldestLocked() *search.Controller {
	var (
		oldestID string
		oldest   *search.Controller
		oldestAt time.Time
	)
	for id, c := range r.sessions {
		at := c.LastActivity()
		if oldest == nil || at.Before(oldestAt) {
			oldestID, oldest, oldestAt = id, c, at
		}
	}
	if oldest != nil {
		delete(r.sessions, oldestID)
	}
	return oldest
}

// Delete removes a session and cancels its fetch in flight
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	c, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		c.Close()
	}
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// IdleSince returns the ids of sessions whose last activity is before cutoff
func (r *Registry) IdleSince(cutoff time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, c := range r.sessions {
		if c.LastActivity().Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// MarkCollected records the time of the last garbage collection
func (r *Registry) MarkCollected(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastGC = t
}

// GetLastCollected returns the time of the last garbage collection
func (r *Registry) GetLastCollected() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lastGC
}

// CloseAll cancels every fetch in flight, used on shutdown
func (r *Registry) CloseAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.sessions {
		c.Close()
	}
}
