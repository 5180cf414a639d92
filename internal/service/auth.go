package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Nechnud/chat-app/internal/auth"
	"github.com/Nechnud/chat-app/internal/models"
	"github.com/Nechnud/chat-app/internal/repository"
)

const (
	maxUsernameLength = 50
	maxPasswordLength = 200
)

// AuthService handles account creation and credential verification. Tokens
// themselves are minted by the HTTP layer.
type AuthService struct {
	store repository.Store
}

func NewAuthService(store repository.Store) *AuthService {
	return &AuthService{store: store}
}

// Register creates an account with role user and returns the new identity.
func (s *AuthService) Register(ctx context.Context, username, password string) (models.Identity, error) {
	if username == "" || len(username) > maxUsernameLength {
		return models.Identity{}, fmt.Errorf("%w: username must be 1-%d characters", ErrInvalidInput, maxUsernameLength)
	}
	if password == "" || len(password) > maxPasswordLength || !auth.ValidPassword(password) {
		return models.Identity{}, fmt.Errorf("%w: password does not meet the policy", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.Identity{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.store.CreateUser(ctx, username, hash, models.RoleUser)
	if err != nil {
		return models.Identity{}, fmt.Errorf("create user: %w", ErrPersistence)
	}
	return models.Identity{ID: user.ID, Username: user.Username, Role: models.RoleUser}, nil
}

// Login verifies the password against the stored hash.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.Identity, error) {
	if username == "" || password == "" {
		return models.Identity{}, fmt.Errorf("%w: username and password required", ErrInvalidInput)
	}
	cred, err := s.store.GetCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, ErrInvalidCredentials
		}
		return models.Identity{}, fmt.Errorf("lookup user: %w", ErrPersistence)
	}
	if !auth.CheckPassword(password, cred.PasswordHash) {
		return models.Identity{}, ErrInvalidCredentials
	}
	return models.Identity{ID: cred.ID, Username: cred.Username, Role: cred.Role}, nil
}
