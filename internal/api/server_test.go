package api

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Nechnud/chat-app/internal/acl"
	"github.com/Nechnud/chat-app/internal/auth"
	"github.com/Nechnud/chat-app/internal/config"
	"github.com/Nechnud/chat-app/internal/models"
	"github.com/Nechnud/chat-app/internal/repository"
	"github.com/Nechnud/chat-app/internal/service"
	"github.com/Nechnud/chat-app/internal/sse"
)

// stubStore satisfies repository.Store with fixed answers so routing tests
// can reach the handlers without a database.
type stubStore struct{}

func (stubStore) CreateUser(_ context.Context, username, _, _ string) (*models.User, error) {
	return &models.User{ID: 1, Username: username}, nil
}

func (stubStore) GetCredentials(context.Context, string) (*repository.Credential, error) {
	return nil, sql.ErrNoRows
}

func (stubStore) ListUsers(context.Context, int64, int) ([]models.User, error) { return nil, nil }

func (stubStore) SearchUsers(context.Context, int64, string) ([]models.User, error) {
	return nil, nil
}

func (stubStore) CreateChat(_ context.Context, createdBy int64, subject string) (*models.Chat, error) {
	return &models.Chat{ID: 1, CreatedBy: createdBy, Subject: subject}, nil
}

func (stubStore) ListChats(context.Context, int64) ([]models.ChatSummary, error) { return nil, nil }
func (stubStore) ListAllChats(context.Context, int64) ([]models.ChatSummary, error) { return nil, nil }
func (stubStore) ListInvitableUsers(context.Context, int64, int64, int) ([]models.User, error) {
	return nil, nil
}
func (stubStore) InviteUser(context.Context, int64, int64, int64) error { return nil }
func (stubStore) ListChatMembers(context.Context, int64, int64) ([]models.ChatMember, error) {
	return nil, nil
}
func (stubStore) ListInvites(context.Context, int64) ([]models.Chat, error) { return nil, nil }
func (stubStore) AcceptInvite(context.Context, int64, int64) error { return nil }
func (stubStore) ToggleBan(context.Context, int64, int64, int64, bool) (bool, error) {
	return true, nil
}
func (stubStore) IsActiveMember(context.Context, int64, int64) (bool, error) { return true, nil }
func (stubStore) IsSuperadmin(context.Context, int64) (bool, error) { return false, nil }
func (stubStore) InsertMessage(context.Context, int64, int64, string, time.Time) (int64, error) {
	return 1, nil
}
func (stubStore) ListMessages(context.Context, int64) ([]models.Message, error) { return nil, nil }
func (stubStore) DeleteMessage(context.Context, int64) error { return nil }
func (stubStore) Close() error { return nil }

func routingTable() *acl.Gate {
	return acl.New(acl.Table{
		models.RoleVisitor: {
			"/api/register": {"post": true},
			"/api/login":    {"post": true, "get": true},
		},
		models.RoleUser: {
			"/api/chats":        {"get": true},
			"/api/message":      {"post": true},
			"/api/messages/:id": {"get": true},
		},
		models.RoleSuperadmin: {
			"/api/message/:id": {"delete": true},
		},
	})
}

func newRoutedServer(t *testing.T) (*Server, *auth.Manager) {
	t.Helper()
	cfg := &config.Config{TokenTTL: time.Hour}
	cfg.SSE.BufferSize = 4

	log := zap.NewNop().Sugar()
	gate := routingTable()
	tokens := auth.NewManager("0123456789abcdef0123456789abcdef", time.Hour)

	store := stubStore{}
	registry := sse.NewRegistry()
	dispatcher := sse.NewDispatcher(registry, log)

	srv := New(cfg, log, gate, tokens,
		service.NewAuthService(store),
		service.NewUserService(store),
		service.NewChatService(store, dispatcher, log),
		service.NewMessageService(store, gate, dispatcher, log),
		registry, dispatcher, nil)
	return srv, tokens
}

func bearer(t *testing.T, tokens *auth.Manager, ident models.Identity) string {
	t.Helper()
	token, err := tokens.Sign(ident)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouting_AllowedTriplesReachHandlers(t *testing.T) {
	s, tokens := newRoutedServer(t)

	// Visitor may register; the request runs the whole pipeline down to the
	// stub store and comes back with a session.
	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"username":"alice","password":"Passw0rd"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A parameterized route: the table keys on the pattern, not the URL.
	req = httptest.NewRequest(http.MethodGet, "/api/messages/42", nil)
	req.Header.Set("Authorization", bearer(t, tokens, models.Identity{ID: 7, Username: "alice", Role: models.RoleUser}))
	resp, err = s.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodDelete, "/api/message/42", nil)
	req.Header.Set("Authorization", bearer(t, tokens, models.Identity{ID: 1, Username: "root", Role: models.RoleSuperadmin}))
	resp, err = s.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouting_UnlistedTriplesAreDenied(t *testing.T) {
	s, tokens := newRoutedServer(t)
	userAuth := bearer(t, tokens, models.Identity{ID: 7, Username: "alice", Role: models.RoleUser})

	cases := []struct {
		name   string
		method string
		target string
		auth   string
	}{
		{"visitor on a user route", http.MethodGet, "/api/chats", ""},
		{"user on a superadmin route", http.MethodDelete, "/api/message/42", userAuth},
		{"registered route absent from the table", http.MethodPut, "/api/chat/ban", userAuth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			resp, err := s.App().Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Contains(t, string(body), "Not allowed")
		})
	}
}
