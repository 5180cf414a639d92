package service

import (
	"context"
	"fmt"

	"github.com/Nechnud/chat-app/internal/models"
	"github.com/Nechnud/chat-app/internal/repository"
)

// DefaultUserLimit caps user listings when the caller gives no limit.
const DefaultUserLimit = 10

// UserService serves user directory listings. Only regular users are listed,
// and never the caller themselves.
type UserService struct {
	store repository.Store
}

func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) Users(ctx context.Context, ident models.Identity, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultUserLimit
	}
	users, err := s.store.ListUsers(ctx, ident.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", ErrPersistence)
	}
	return users, nil
}

func (s *UserService) Search(ctx context.Context, ident models.Identity, searchValue string) ([]models.User, error) {
	users, err := s.store.SearchUsers(ctx, ident.ID, searchValue)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", ErrPersistence)
	}
	return users, nil
}
