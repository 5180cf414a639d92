package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Nechnud/chat-app/internal/models"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	store := newFakeStore()
	svc := NewAuthService(store)

	ident, err := svc.Register(context.Background(), "alice", "Passw0rd")
	require.NoError(t, err)
	require.Equal(t, "alice", ident.Username)
	require.Equal(t, models.RoleUser, ident.Role)
	require.NotZero(t, ident.ID)

	// The stored hash must not be the plain password.
	require.NotEqual(t, "Passw0rd", store.users["alice"].PasswordHash)

	back, err := svc.Login(context.Background(), "alice", "Passw0rd")
	require.NoError(t, err)
	require.Equal(t, ident, back)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeStore())

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "Passw0rd"},
		{"long username", strings.Repeat("a", 51), "Passw0rd"},
		{"empty password", "bob", ""},
		{"long password", "bob", "A1" + strings.Repeat("a", 200)},
		{"weak password", "bob", "alllowercase"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.username, tc.password)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewAuthService(store)

	_, err := svc.Register(context.Background(), "alice", "Passw0rd")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice", "Wrong0ne")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginUnknownUser(t *testing.T) {
	svc := NewAuthService(newFakeStore())

	_, err := svc.Login(context.Background(), "ghost", "Passw0rd")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	svc := NewAuthService(store)

	_, err := svc.Register(context.Background(), "alice", "Passw0rd")
	require.ErrorIs(t, err, ErrPersistence)

	_, err = svc.Login(context.Background(), "alice", "Passw0rd")
	require.ErrorIs(t, err, ErrPersistence)
}
