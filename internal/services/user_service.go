package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/acme/storefront/internal/models"
	"github.com/acme/storefront/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong password
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserRepository defines the interface for identity user persistence
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// UserService registers and authenticates identity users
type UserService interface {
	Register(ctx context.Context, username, password, displayName string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// UserServiceImpl implements UserService
type UserServiceImpl struct {
	userRepo  UserRepository
	hashCost  int
	dummyHash []byte
}

// NewUserService creates a user service hashing with bcrypt.DefaultCost
func NewUserService(userRepo UserRepository) UserService {
	return NewUserServiceWithCost(userRepo, bcrypt.DefaultCost)
}

// NewUserServiceWithCost creates a user service with a specific bcrypt cost
func NewUserServiceWithCost(userRepo UserRepository, cost int) UserService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &UserServiceImpl{
		userRepo:  userRepo,
		hashCost:  cost,
		dummyHash: dummy,
	}
}

// Register creates and stores a new user
func (s *UserServiceImpl) Register(ctx context.Context, username, password, displayName string) (*models.User, error) {
	user, err := models.NewUser(username, password, displayName, s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks the username and password. Unknown users still pay
// for one bcrypt comparison so response time does not reveal which usernames exist.
func (s *UserServiceImpl) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := user.CheckPassword(password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
