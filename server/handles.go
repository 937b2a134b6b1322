package server

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chazu/mosaic/world"
)

// handle is a server-side reference to a runtime object.
type handle struct {
	id        string
	target    world.ID
	display   string
	sessionID string
	created   time.Time
	lastUsed  time.Time
}

// HandleStore maps opaque string IDs to runtime identifiers. Handles
// exist so clients never hold raw identifiers across snapshots.
type HandleStore struct {
	mu      sync.RWMutex
	handles map[string]*handle
	nextID  atomic.Uint64
}

// NewHandleStore creates a new handle store.
func NewHandleStore() *HandleStore {
	return &HandleStore{
		handles: make(map[string]*handle),
	}
}

// Create registers a runtime identifier and returns an opaque handle ID.
func (s *HandleStore) Create(target world.ID, display, sessionID string) string {
	id := fmt.Sprintf("h-%d", s.nextID.Add(1))

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.handles[id] = &handle{
		id:        id,
		target:    target,
		display:   display,
		sessionID: sessionID,
		created:   now,
		lastUsed:  now,
	}
	return id
}

// Lookup retrieves the identifier for a handle. Returns the identifier
// and true, or NoID and false if the handle doesn't exist.
func (s *HandleStore) Lookup(id string) (world.ID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.handles[id]
	if !ok {
		return world.NoID, false
	}
	h.lastUsed = time.Now()
	return h.target, true
}

// Release removes a handle.
func (s *HandleStore) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handles, id)
}

// ReleaseSession releases all handles owned by a session.
func (s *HandleStore) ReleaseSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, h := range s.handles {
		if h.sessionID == sessionID {
			delete(s.handles, id)
		}
	}
}

// ReleaseAll drops every handle. Used when the underlying world is
// replaced and all identifiers become meaningless.
func (s *HandleStore) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles = make(map[string]*handle)
}

// Sweep removes handles that haven't been accessed within the TTL.
func (s *HandleStore) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for id, h := range s.handles {
		if h.lastUsed.Before(cutoff) {
			delete(s.handles, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs periodic TTL sweeps in the background.
// Returns a stop function.
func (s *HandleStore) StartSweeper(interval, ttl time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				s.Sweep(ttl)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
