package auth

import (
	"context"
	"sync"
	"time"
)

// MemorySessionStore keeps sessions in process memory. Used when Redis is
// not configured and in tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore creates an in-memory store with the given session lifetime
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session for user and drops expired ones
func (s *MemorySessionStore) Create(_ context.Context, user User) (*Session, error) {
	now := s.now()
	session := newSession(user, now, s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.sessions {
		if !now.Before(existing.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
	s.sessions[session.ID] = session

	copied := *session
	return &copied, nil
}

// Get returns a live session; expired sessions are dropped on access
func (s *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !s.now().Before(session.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}

	copied := *session
	return &copied, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports how many sessions are held, including expired ones not yet swept
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
