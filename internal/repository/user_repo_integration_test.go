//go:build integration
// +build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/acme/storefront/internal/models"
	"github.com/acme/storefront/internal/repository/testutil"
	"golang.org/x/crypto/bcrypt"
)

func TestUserRepository_CreateAndGet_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewUserRepositoryWithDB(testDB.DB)
	ctx := context.Background()

	user, err := models.NewUser("jane", "correct-horse", "Jane Doe", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to build user: %v", err)
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	retrieved, err := repo.GetUserByUsername(ctx, "jane")
	if err != nil {
		t.Fatalf("Failed to retrieve user: %v", err)
	}
	if retrieved.ID != user.ID {
		t.Errorf("ID mismatch: got %v, want %v", retrieved.ID, user.ID)
	}
	if err := retrieved.CheckPassword("correct-horse"); err != nil {
		t.Errorf("stored hash should verify: %v", err)
	}
}

func TestUserRepository_DuplicateUsername_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewUserRepositoryWithDB(testDB.DB)
	ctx := context.Background()

	first, _ := models.NewUser("jane", "correct-horse", "", bcrypt.MinCost)
	second, _ := models.NewUser("jane", "battery-staple", "", bcrypt.MinCost)

	if err := repo.CreateUser(ctx, first); err != nil {
		t.Fatalf("Failed to create first user: %v", err)
	}

	err := repo.CreateUser(ctx, second)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestUserRepository_GetUserByUsername_NotFound_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewUserRepositoryWithDB(testDB.DB)

	_, err := repo.GetUserByUsername(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
