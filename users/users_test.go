package users_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitdesk/fitdesk-cli/users"
)

func TestUser_Name(t *testing.T) {
	t.Run("display name wins", func(t *testing.T) {
		u := &users.User{DisplayName: "Coach Pat", FirstName: "Pat", LastName: "Lee", Email: "p@example.com"}
		require.Equal(t, "Coach Pat", u.Name())
	})

	t.Run("falls back to full name", func(t *testing.T) {
		u := &users.User{FirstName: "Pat", LastName: "Lee", Email: "p@example.com"}
		require.Equal(t, "Pat Lee", u.Name())
	})

	t.Run("falls back to email", func(t *testing.T) {
		u := &users.User{Email: "p@example.com"}
		require.Equal(t, "p@example.com", u.Name())
	})
}

func TestUser_IsCoach(t *testing.T) {
	require.True(t, (&users.User{Role: users.RoleCoach}).IsCoach())
	require.True(t, (&users.User{Role: users.RoleAdmin}).IsCoach())
	require.False(t, (&users.User{Role: users.RoleClient}).IsCoach())
}
