package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/Nechnud/chat-app/internal/models"
	"github.com/Nechnud/chat-app/internal/repository"
)

// membership is one chat_users row as the fake models it. Banned members
// keep their row.
type membership struct {
	banned   bool
	accepted bool
}

// fakeStore is an in-memory repository.Store for service tests. Only the
// behavior the tests exercise is modeled.
type fakeStore struct {
	users       map[string]repository.Credential
	nextUserID  int64
	chats       []models.Chat
	memberships map[[2]int64]*membership
	messages    []models.Message
	nextMsgID   int64

	err error // when set, every call fails with it
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]repository.Credential),
		memberships: make(map[[2]int64]*membership),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, username, passwordHash, role string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextUserID++
	f.users[username] = repository.Credential{
		ID: f.nextUserID, Username: username, Role: role, PasswordHash: passwordHash,
	}
	return &models.User{ID: f.nextUserID, Username: username}, nil
}

func (f *fakeStore) GetCredentials(_ context.Context, username string) (*repository.Credential, error) {
	if f.err != nil {
		return nil, f.err
	}
	cred, ok := f.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &cred, nil
}

func (f *fakeStore) ListUsers(_ context.Context, excludeID int64, limit int) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.User
	for _, cred := range f.users {
		if cred.ID != excludeID && cred.Role == models.RoleUser && len(out) < limit {
			out = append(out, models.User{ID: cred.ID, Username: cred.Username})
		}
	}
	return out, nil
}

func (f *fakeStore) SearchUsers(context.Context, int64, string) ([]models.User, error) {
	return nil, f.err
}

func (f *fakeStore) CreateChat(_ context.Context, createdBy int64, subject string) (*models.Chat, error) {
	if f.err != nil {
		return nil, f.err
	}
	chat := models.Chat{ID: int64(len(f.chats) + 1), CreatedBy: createdBy, Subject: subject}
	f.chats = append(f.chats, chat)
	f.memberships[[2]int64{chat.ID, createdBy}] = &membership{accepted: true}
	return &chat, nil
}

func (f *fakeStore) ListChats(context.Context, int64) ([]models.ChatSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ChatSummary
	for _, c := range f.chats {
		out = append(out, models.ChatSummary{Chat: c})
	}
	return out, nil
}

func (f *fakeStore) ListAllChats(ctx context.Context, userID int64) ([]models.ChatSummary, error) {
	return f.ListChats(ctx, userID)
}

func (f *fakeStore) ListInvitableUsers(context.Context, int64, int64, int) ([]models.User, error) {
	return nil, f.err
}

func (f *fakeStore) InviteUser(_ context.Context, chatID, userID, inviterID int64) error {
	if f.err != nil {
		return f.err
	}
	for _, c := range f.chats {
		if c.ID == chatID && c.CreatedBy == inviterID {
			key := [2]int64{chatID, userID}
			if _, exists := f.memberships[key]; !exists {
				f.memberships[key] = &membership{}
			}
		}
	}
	return nil
}

func (f *fakeStore) ListChatMembers(context.Context, int64, int64) ([]models.ChatMember, error) {
	return nil, f.err
}

func (f *fakeStore) ListInvites(context.Context, int64) ([]models.Chat, error) {
	return nil, f.err
}

func (f *fakeStore) AcceptInvite(_ context.Context, chatID, userID int64) error {
	if f.err != nil {
		return f.err
	}
	if m, ok := f.memberships[[2]int64{chatID, userID}]; ok {
		m.accepted = true
	}
	return nil
}

func (f *fakeStore) ToggleBan(_ context.Context, chatID, userID, byID int64, superadmin bool) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	m, ok := f.memberships[[2]int64{chatID, userID}]
	if !ok {
		return false, nil
	}
	if !superadmin {
		created := false
		for _, c := range f.chats {
			if c.ID == chatID && c.CreatedBy == byID {
				created = true
			}
		}
		if !created {
			return false, nil
		}
	}
	m.banned = !m.banned
	return true, nil
}

func (f *fakeStore) IsActiveMember(_ context.Context, chatID, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	m, ok := f.memberships[[2]int64{chatID, userID}]
	return ok && !m.banned, nil
}

func (f *fakeStore) IsSuperadmin(_ context.Context, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, cred := range f.users {
		if cred.ID == userID && cred.Role == models.RoleSuperadmin {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertMessage(_ context.Context, chatID, fromID int64, content string, ts time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextMsgID++
	f.messages = append(f.messages, models.Message{
		ID: f.nextMsgID, ChatID: chatID, FromID: fromID, Content: content, Timestamp: ts,
	})
	return f.nextMsgID, nil
}

func (f *fakeStore) ListMessages(_ context.Context, chatID int64) ([]models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Message
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteMessage(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	for i, m := range f.messages {
		if m.ID == id {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) Close() error { return nil }
