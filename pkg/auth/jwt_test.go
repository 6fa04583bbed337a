package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Generate(42)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.NotEmpty(t, claims.ID)
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).Generate(1)
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := m.Generate(1)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("test-secret", time.Hour).Validate("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
