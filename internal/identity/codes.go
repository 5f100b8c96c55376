package identity

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCode is returned for unknown, expired or already redeemed codes
var ErrInvalidCode = errors.New("invalid or expired authorization code")

// Grant is what an authorization code stands for
type Grant struct {
	ClientID    string
	RedirectURI string
	UserID      string
	Username    string
	DisplayName string
	Scope       string
	Nonce       string
	ExpiresAt   time.Time
}

// CodeStore holds single-use authorization codes in memory
type CodeStore struct {
	mu    sync.Mutex
	codes map[string]Grant
	ttl   time.Duration
	now   func() time.Time
}

// NewCodeStore creates a store whose codes expire after ttl
func NewCodeStore(ttl time.Duration) *CodeStore {
	return &CodeStore{
		codes: make(map[string]Grant),
		ttl:   ttl,
		now:   time.Now,
	}
}

func newCode() string {
	return uuid.New().String()
}

// Issue stores grant under a fresh code
func (s *CodeStore) Issue(grant Grant) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for code, g := range s.codes {
		if !now.Before(g.ExpiresAt) {
			delete(s.codes, code)
		}
	}

	code := newCode()
	grant.ExpiresAt = now.Add(s.ttl)
	s.codes[code] = grant
	return code
}

// Redeem returns the grant for code and invalidates it
func (s *CodeStore) Redeem(code string) (Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.codes[code]
	if !ok {
		return Grant{}, ErrInvalidCode
	}
	delete(s.codes, code)

	if !s.now().Before(grant.ExpiresAt) {
		return Grant{}, ErrInvalidCode
	}
	return grant, nil
}

// Len returns the number of outstanding codes
func (s *CodeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}
