package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/acme/storefront/internal/database"
	"github.com/acme/storefront/internal/models"
	"github.com/lib/pq"
)

// UserRepository handles database operations for identity users
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a user repository on the shared connection
func NewUserRepository() *UserRepository {
	return &UserRepository{
		db: database.DB,
	}
}

// NewUserRepositoryWithDB creates a user repository with a specific database connection
func NewUserRepositoryWithDB(db *sql.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUser stores a new user
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, display_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.DisplayName,
		user.CreatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("user %s: %w", user.Username, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, display_name, created_at
		FROM users
		WHERE username = $1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.DisplayName,
		&user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
