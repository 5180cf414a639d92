package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Nechnud/chat-app/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestManager_SignVerifyRoundTrip(t *testing.T) {
	m := NewManager(testSecret, time.Hour)

	token, err := m.Sign(models.Identity{ID: 7, Username: "alice", Role: models.RoleUser})
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, models.RoleUser, claims.Role)
}

func TestManager_RejectsWrongSecret(t *testing.T) {
	m := NewManager(testSecret, time.Hour)
	other := NewManager("another-secret-value-entirely-here", time.Hour)

	token, err := m.Sign(models.Identity{ID: 1, Username: "bob", Role: models.RoleUser})
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.Error(t, err)
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	m := NewManager(testSecret, -time.Minute)

	token, err := m.Sign(models.Identity{ID: 1, Username: "bob", Role: models.RoleUser})
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.Error(t, err)
}

func TestParseBearerToken(t *testing.T) {
	token, err := ParseBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	_, err = ParseBearerToken("")
	require.Error(t, err)

	_, err = ParseBearerToken("Basic abc")
	require.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("Sup3rsecret")
	require.NoError(t, err)
	require.NotEqual(t, "Sup3rsecret", hash)

	require.True(t, CheckPassword("Sup3rsecret", hash))
	require.False(t, CheckPassword("wrong", hash))
}

func TestValidPassword(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"Passw0rd", true},
		{"Longenough?", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"NoDigitOrSpecial", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.valid, ValidPassword(tc.password), "password %q", tc.password)
	}
}
