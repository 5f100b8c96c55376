package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is an account known to the identity provider
type User struct {
	ID           string
	Username     string `validate:"required,min=3,max=64,printascii"`
	PasswordHash string
	DisplayName  string `validate:"max=255"`
	CreatedAt    time.Time
}

// Domain errors
var (
	ErrInvalidUsername  = errors.New("username must be 3-64 characters without spaces")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrInvalidPassword  = errors.New("invalid password")
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 8

// NewUser creates a user with a bcrypt hash of the given password
func NewUser(username, password, displayName string, cost int) (*User, error) {
	username = strings.TrimSpace(username)
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	user := &User{
		ID:          uuid.New().String(),
		Username:    username,
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   time.Now(),
	}
	if err := validate.Struct(user); err != nil || strings.ContainsAny(user.Username, " \t") {
		return nil, ErrInvalidUsername
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	return user, nil
}

// CheckPassword compares password against the stored hash
func (u *User) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
