package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/fitdesk-cli/token"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestExpiryOf(t *testing.T) {
	t.Run("numeric exp claim", func(t *testing.T) {
		exp := time.Now().Add(90 * time.Second).Truncate(time.Second)
		tok := mintToken(t, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()})

		got, ok := token.ExpiryOf(tok)
		require.True(t, ok)
		require.True(t, got.Equal(exp))
	})

	t.Run("missing exp claim", func(t *testing.T) {
		tok := mintToken(t, jwt.MapClaims{"sub": "user-1"})

		_, ok := token.ExpiryOf(tok)
		require.False(t, ok)
	})

	t.Run("non-numeric exp claim", func(t *testing.T) {
		tok := mintToken(t, jwt.MapClaims{"sub": "user-1", "exp": "tomorrow"})

		_, ok := token.ExpiryOf(tok)
		require.False(t, ok)
	})

	t.Run("fewer than two segments", func(t *testing.T) {
		_, ok := token.ExpiryOf("not-a-jwt")
		require.False(t, ok)
	})

	t.Run("claims segment is not JSON", func(t *testing.T) {
		_, ok := token.ExpiryOf("aGVhZGVy.bm90anNvbg.c2ln")
		require.False(t, ok)
	})

	t.Run("empty token", func(t *testing.T) {
		_, ok := token.ExpiryOf("")
		require.False(t, ok)
	})
}

func TestDelayUntilRefresh(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	token.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { token.NowTimeFunc = time.Now })

	t.Run("refresh fires buffer before expiry", func(t *testing.T) {
		expiry := now.Add(90 * time.Second)
		require.Equal(t, 30*time.Second, token.DelayUntilRefresh(expiry, 60*time.Second))
	})

	t.Run("expiry inside buffer floors at zero", func(t *testing.T) {
		expiry := now.Add(30 * time.Second)
		require.Equal(t, time.Duration(0), token.DelayUntilRefresh(expiry, 60*time.Second))
	})

	t.Run("expiry in the past floors at zero", func(t *testing.T) {
		expiry := now.Add(-time.Hour)
		require.Equal(t, time.Duration(0), token.DelayUntilRefresh(expiry, 60*time.Second))
	})
}
