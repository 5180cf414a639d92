package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Nechnud/chat-app/internal/models"
	"github.com/Nechnud/chat-app/internal/repository"
	"github.com/Nechnud/chat-app/internal/sse"
)

const maxSubjectLength = 200

// ChatService covers chat administration: creation, listings, invitations,
// bans, history reads, and message deletion.
type ChatService struct {
	store repository.Store
	disp  *sse.Dispatcher
	log   *zap.SugaredLogger
}

func NewChatService(store repository.Store, disp *sse.Dispatcher, log *zap.SugaredLogger) *ChatService {
	return &ChatService{store: store, disp: disp, log: log}
}

func (s *ChatService) Create(ctx context.Context, ident models.Identity, subject string) (*models.Chat, error) {
	if subject == "" || len(subject) > maxSubjectLength {
		return nil, fmt.Errorf("%w: subject must be 1-%d characters", ErrInvalidInput, maxSubjectLength)
	}
	chat, err := s.store.CreateChat(ctx, ident.ID, subject)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", ErrPersistence)
	}
	return chat, nil
}

// Chats lists the caller's accepted chats; a superadmin sees every chat.
func (s *ChatService) Chats(ctx context.Context, ident models.Identity) ([]models.ChatSummary, error) {
	var (
		chats []models.ChatSummary
		err   error
	)
	if ident.Role == models.RoleSuperadmin {
		chats, err = s.store.ListAllChats(ctx, ident.ID)
	} else {
		chats, err = s.store.ListChats(ctx, ident.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", ErrPersistence)
	}
	return chats, nil
}

func (s *ChatService) InvitableUsers(ctx context.Context, ident models.Identity, chatID int64, limit int) ([]models.User, error) {
	users, err := s.store.ListInvitableUsers(ctx, chatID, ident.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list invitable users: %w", ErrPersistence)
	}
	return users, nil
}

// Invite adds a pending membership. The creator-only constraint lives in the
// store query itself; inviting on someone else's chat is a silent no-op,
// matching the insert-where-exists semantics.
func (s *ChatService) Invite(ctx context.Context, ident models.Identity, chatID, userID int64) error {
	if err := s.store.InviteUser(ctx, chatID, userID, ident.ID); err != nil {
		return fmt.Errorf("invite user: %w", ErrPersistence)
	}
	return nil
}

func (s *ChatService) Members(ctx context.Context, ident models.Identity, chatID int64) ([]models.ChatMember, error) {
	members, err := s.store.ListChatMembers(ctx, chatID, ident.ID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", ErrPersistence)
	}
	return members, nil
}

func (s *ChatService) Invites(ctx context.Context, ident models.Identity) ([]models.Chat, error) {
	invites, err := s.store.ListInvites(ctx, ident.ID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", ErrPersistence)
	}
	return invites, nil
}

func (s *ChatService) AcceptInvite(ctx context.Context, ident models.Identity, chatID int64) error {
	if err := s.store.AcceptInvite(ctx, chatID, ident.ID); err != nil {
		return fmt.Errorf("accept invite: %w", ErrPersistence)
	}
	return nil
}

// ToggleBan flips a member's ban flag. Only the chat's creator or a
// superadmin changes anything; anyone else gets ErrUnauthorized.
func (s *ChatService) ToggleBan(ctx context.Context, ident models.Identity, chatID, userID int64) error {
	changed, err := s.store.ToggleBan(ctx, chatID, userID, ident.ID, ident.Role == models.RoleSuperadmin)
	if err != nil {
		return fmt.Errorf("toggle ban: %w", ErrPersistence)
	}
	if !changed {
		return ErrUnauthorized
	}
	return nil
}

// History returns the chat's messages, oldest first, gated by the same
// eligibility rule as sending: member-and-not-banned or superadmin.
func (s *ChatService) History(ctx context.Context, ident models.Identity, chatID int64) ([]models.Message, error) {
	eligible, err := s.eligible(ctx, ident, chatID)
	if err != nil {
		return nil, fmt.Errorf("eligibility check: %w", ErrPersistence)
	}
	if !eligible {
		return nil, ErrNotEligible
	}
	messages, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", ErrPersistence)
	}
	return messages, nil
}

// DeleteMessage removes a message from the store. Open streams are not
// notified; clients reconcile on their next history fetch. Known staleness
// gap, kept on purpose.
func (s *ChatService) DeleteMessage(ctx context.Context, id int64) error {
	if err := s.store.DeleteMessage(ctx, id); err != nil {
		return fmt.Errorf("delete message: %w", ErrPersistence)
	}
	return nil
}

// AnnounceDisconnect pushes an explicit "user disconnected" event to the
// chat, as triggered by the client-side leave call.
func (s *ChatService) AnnounceDisconnect(chatID int64, ident models.Identity) {
	s.disp.Broadcast(chatID, sse.EventDisconnect, map[string]any{
		"event":     "User disconnected",
		"chatId":    chatID,
		"username":  ident.Username,
		"timestamp": time.Now().UTC(),
	})
}

func (s *ChatService) eligible(ctx context.Context, ident models.Identity, chatID int64) (bool, error) {
	member, err := s.store.IsActiveMember(ctx, chatID, ident.ID)
	if err != nil {
		return false, err
	}
	if member {
		return true, nil
	}
	return s.store.IsSuperadmin(ctx, ident.ID)
}
