package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
)

// Cookie names used by the storefront
const (
	SessionCookieName = "acme_session"
	StateCookieName   = "acme_oauth_state"
)

// User is the authenticated shopper attached to a session
type User struct {
	Subject     string `json:"sub"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

// Session is a logged-in browser
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore persists sessions by ID
type SessionStore interface {
	Create(ctx context.Context, user User) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// UserFromClaims maps verified ID token claims to a session user
func UserFromClaims(c *Claims) User {
	user := User{
		Subject:     c.Subject,
		Username:    c.Username,
		DisplayName: c.Name,
		Email:       c.Email,
	}
	if user.Username == "" {
		user.Username = c.Email
	}
	if user.Username == "" {
		user.Username = c.Subject
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	return user
}

func newSession(user User, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        uuid.New().String(),
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
