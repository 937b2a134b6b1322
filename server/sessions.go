package server

import (
	"sync"

	"github.com/google/uuid"
)

// Session represents a client workspace session. Handles created on a
// session's behalf are released together when the session ends.
type Session struct {
	ID   string
	Name string
}

// SessionStore manages workspace sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	handles  *HandleStore
}

// NewSessionStore creates a new session store.
func NewSessionStore(handles *HandleStore) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		handles:  handles,
	}
}

// Create creates a new session with an optional name.
func (s *SessionStore) Create(name string) *Session {
	session := &Session{
		ID:   uuid.NewString(),
		Name: name,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	return session, ok
}

// Destroy removes a session and releases all its handles.
func (s *SessionStore) Destroy(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	s.handles.ReleaseSession(id)
}
