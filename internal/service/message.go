package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Nechnud/chat-app/internal/acl"
	"github.com/Nechnud/chat-app/internal/models"
	"github.com/Nechnud/chat-app/internal/sse"
)

const (
	// MaxContentLength bounds message content in characters.
	MaxContentLength = 999

	// PrivilegedSuffix is silently stripped from messages authored by
	// anyone but a superadmin. The sender is not told.
	PrivilegedSuffix = "/ADMIN"

	messageRoute = "/api/message"
)

// MessageStore is the slice of persistence the ingestion gateway needs. Both
// eligibility checks read current persisted state, never a cache.
type MessageStore interface {
	IsActiveMember(ctx context.Context, chatID, userID int64) (bool, error)
	IsSuperadmin(ctx context.Context, userID int64) (bool, error)
	InsertMessage(ctx context.Context, chatID, fromID int64, content string, ts time.Time) (int64, error)
}

// MessageService is the ingestion gateway: it decides whether an incoming
// chat message may be persisted and broadcast.
type MessageService struct {
	store MessageStore
	gate  *acl.Gate
	disp  *sse.Dispatcher
	log   *zap.SugaredLogger
}

func NewMessageService(store MessageStore, gate *acl.Gate, disp *sse.Dispatcher, log *zap.SugaredLogger) *MessageService {
	return &MessageService{store: store, gate: gate, disp: disp, log: log}
}

// Ingest validates, authorizes, persists, and broadcasts one message. Every
// rejection happens before the persistence write; a persistence failure
// happens before the broadcast, so no unpersisted message is ever fanned
// out.
func (s *MessageService) Ingest(ctx context.Context, ident models.Identity, chatID int64, content string) (*models.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, fmt.Errorf("%w: content exceeds %d characters", ErrInvalidInput, MaxContentLength)
	}
	if !s.gate.Allowed(ident.Role, messageRoute, "post") {
		return nil, ErrUnauthorized
	}

	eligible, err := s.eligible(ctx, ident, chatID)
	if err != nil {
		return nil, fmt.Errorf("eligibility check: %w", ErrPersistence)
	}
	if !eligible {
		return nil, ErrNotEligible
	}

	if strings.HasSuffix(content, PrivilegedSuffix) && ident.Role != models.RoleSuperadmin {
		content = strings.TrimSuffix(content, PrivilegedSuffix)
	}

	ts := time.Now().UTC()
	id, err := s.store.InsertMessage(ctx, chatID, ident.ID, content, ts)
	if err != nil {
		s.log.Errorw("insert message", "chat_id", chatID, "from_id", ident.ID, "error", err)
		return nil, fmt.Errorf("insert message: %w", ErrPersistence)
	}

	msg := &models.Message{
		ID:        id,
		ChatID:    chatID,
		FromID:    ident.ID,
		From:      ident.Username,
		Content:   content,
		Timestamp: ts,
	}
	s.disp.Broadcast(chatID, sse.EventNewMessage, msg)
	return msg, nil
}

// eligible is member-and-not-banned OR global-superadmin, as two separate
// existence checks. The superadmin check is scoped to the sender's id, never
// to "any superadmin exists".
func (s *MessageService) eligible(ctx context.Context, ident models.Identity, chatID int64) (bool, error) {
	member, err := s.store.IsActiveMember(ctx, chatID, ident.ID)
	if err != nil {
		return false, err
	}
	if member {
		return true, nil
	}
	return s.store.IsSuperadmin(ctx, ident.ID)
}
