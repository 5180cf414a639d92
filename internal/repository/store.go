// Package repository is the persistence layer, a relational store reached
// through parameterized queries only.
package repository

import (
	"context"
	"time"

	"github.com/Nechnud/chat-app/internal/models"
)

// Credential is a user row including the stored password hash. Only the
// login path sees it.
type Credential struct {
	ID           int64
	Username     string
	Role         string
	PasswordHash string
}

// Store is the full persistence surface of the service.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash, role string) (*models.User, error)
	GetCredentials(ctx context.Context, username string) (*Credential, error)
	ListUsers(ctx context.Context, excludeID int64, limit int) ([]models.User, error)
	SearchUsers(ctx context.Context, excludeID int64, search string) ([]models.User, error)

	CreateChat(ctx context.Context, createdBy int64, subject string) (*models.Chat, error)
	ListChats(ctx context.Context, userID int64) ([]models.ChatSummary, error)
	ListAllChats(ctx context.Context, userID int64) ([]models.ChatSummary, error)
	ListInvitableUsers(ctx context.Context, chatID, excludeID int64, limit int) ([]models.User, error)
	InviteUser(ctx context.Context, chatID, userID, inviterID int64) error
	ListChatMembers(ctx context.Context, chatID, excludeID int64) ([]models.ChatMember, error)
	ListInvites(ctx context.Context, userID int64) ([]models.Chat, error)
	AcceptInvite(ctx context.Context, chatID, userID int64) error
	ToggleBan(ctx context.Context, chatID, userID, byID int64, superadmin bool) (bool, error)

	IsActiveMember(ctx context.Context, chatID, userID int64) (bool, error)
	IsSuperadmin(ctx context.Context, userID int64) (bool, error)

	InsertMessage(ctx context.Context, chatID, fromID int64, content string, ts time.Time) (int64, error)
	ListMessages(ctx context.Context, chatID int64) ([]models.Message, error)
	DeleteMessage(ctx context.Context, id int64) error

	Close() error
}
