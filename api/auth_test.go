package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitdesk/fitdesk-cli/api"
	errs "github.com/fitdesk/fitdesk-cli/internal/errors"
	"github.com/fitdesk/fitdesk-cli/users"
)

func TestAuthAPI_Refresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "refresh-1", body["refreshToken"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"new-access","refreshToken":"refresh-2"}`))
	}))
	defer srv.Close()

	auth := api.NewAuthAPI(srv.URL)
	resp, err := auth.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	require.Equal(t, "new-access", resp.Token)
	require.Equal(t, "refresh-2", resp.RefreshToken)
	require.Nil(t, resp.User, "refresh responses omit the user")
}

func TestAuthAPI_Register(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)

		var params api.RegisterParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		require.Equal(t, users.RoleCoach, params.Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"t","refreshToken":"r","user":{"id":"u-1","email":"new@example.com","role":"coach"}}`))
	}))
	defer srv.Close()

	auth := api.NewAuthAPI(srv.URL)
	resp, err := auth.Register(context.Background(), api.RegisterParams{
		Email:     "new@example.com",
		Password:  "pw",
		FirstName: "New",
		LastName:  "Coach",
		Role:      users.RoleCoach,
	})
	require.NoError(t, err)
	require.Equal(t, "u-1", resp.User.ID)
}

func TestAuthAPI_BackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	auth := api.NewAuthAPI(srv.URL)
	_, err := auth.Login(context.Background(), "a@example.com", "pw")
	require.ErrorIs(t, err, errs.ErrBackendUnreachable)
}

func TestAuthAPI_LogoutSendsBearer(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.Equal(t, "/auth/logout", r.URL.Path)
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	auth := api.NewAuthAPI(srv.URL)
	require.NoError(t, auth.Logout(context.Background(), "access-1"))
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_CurrentUserNormalization(t *testing.T) {
	t.Run("flat profile fields", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/me", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"u-1","email":"a@example.com","role":"client","firstName":"Ana","avatarUrl":"https://cdn.example.com/a.png"}`))
		}))
		defer srv.Close()

		box := &tokenBox{token: "tok"}
		var logoutCalls int32
		client := newTestClient(t, srv.URL, box, &logoutCalls)

		user, err := client.CurrentUser(context.Background())
		require.NoError(t, err)
		require.Equal(t, "Ana", user.FirstName)
		require.Equal(t, "https://cdn.example.com/a.png", user.AvatarURL)
	})

	t.Run("nested profile fields", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"u-1","email":"a@example.com","role":"coach","profile":{"firstName":"Bo","lastName":"Kim","displayName":"Coach Bo"}}`))
		}))
		defer srv.Close()

		box := &tokenBox{token: "tok"}
		var logoutCalls int32
		client := newTestClient(t, srv.URL, box, &logoutCalls)

		user, err := client.CurrentUser(context.Background())
		require.NoError(t, err)
		require.Equal(t, "Bo", user.FirstName)
		require.Equal(t, "Kim", user.LastName)
		require.Equal(t, "Coach Bo", user.DisplayName)
	})

	t.Run("missing id rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		box := &tokenBox{token: "tok"}
		var logoutCalls int32
		client := newTestClient(t, srv.URL, box, &logoutCalls)

		_, err := client.CurrentUser(context.Background())
		require.Error(t, err)
	})
}
