package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitdesk/fitdesk-cli/api"
	errs "github.com/fitdesk/fitdesk-cli/internal/errors"
)

// tokenBox doubles as TokenProvider and Refresher: RequestRefresh swaps in
// the configured replacement token, mimicking the coordinator updating the
// session store.
type tokenBox struct {
	mu           sync.Mutex
	token        string
	refreshed    string
	refreshErr   error
	refreshCalls int32
}

func (b *tokenBox) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

func (b *tokenBox) RequestRefresh(ctx context.Context) (string, error) {
	atomic.AddInt32(&b.refreshCalls, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refreshErr != nil {
		return "", b.refreshErr
	}
	b.token = b.refreshed
	return b.refreshed, nil
}

func newTestClient(t *testing.T, baseURL string, box *tokenBox, logoutCalls *int32) *api.Client {
	t.Helper()
	client, err := api.NewClient(baseURL, box, box, func() {
		atomic.AddInt32(logoutCalls, 1)
	})
	require.NoError(t, err)
	return client
}

func TestClient_RetryOnceContract(t *testing.T) {
	var targetCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/workouts", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))

		switch atomic.AddInt32(&targetCalls, 1) {
		case 1:
			require.Equal(t, "Bearer stale-token", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
		default:
			require.Equal(t, "Bearer fresh-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"w-1"}`))
		}
	}))
	defer srv.Close()

	box := &tokenBox{token: "stale-token", refreshed: "fresh-token"}
	var logoutCalls int32
	client := newTestClient(t, srv.URL, box, &logoutCalls)

	var out struct {
		ID string `json:"id"`
	}
	err := client.Get(context.Background(), "/workouts", &out)
	require.NoError(t, err)
	require.Equal(t, "w-1", out.ID)

	require.Equal(t, int32(2), atomic.LoadInt32(&targetCalls), "exactly one retry")
	require.Equal(t, int32(1), atomic.LoadInt32(&box.refreshCalls), "exactly one refresh")
	require.Zero(t, atomic.LoadInt32(&logoutCalls))
}

func TestClient_RefreshYieldsNoToken(t *testing.T) {
	var targetCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&targetCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	box := &tokenBox{token: "stale-token", refreshed: ""}
	var logoutCalls int32
	client := newTestClient(t, srv.URL, box, &logoutCalls)

	err := client.Get(context.Background(), "/workouts", nil)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.Equal(t, int32(1), atomic.LoadInt32(&targetCalls), "no retry without a fresh token")
	require.Equal(t, int32(1), atomic.LoadInt32(&logoutCalls), "forced logout fires exactly once")
}

func TestClient_AbandonedRefreshWaitDoesNotLogout(t *testing.T) {
	var targetCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&targetCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	box := &tokenBox{token: "stale-token", refreshErr: context.DeadlineExceeded}
	var logoutCalls int32
	client := newTestClient(t, srv.URL, box, &logoutCalls)

	err := client.Get(context.Background(), "/workouts", nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotErrorIs(t, err, errs.ErrUnauthorized)
	require.Equal(t, int32(1), atomic.LoadInt32(&targetCalls), "no retry without a token")
	require.Zero(t, atomic.LoadInt32(&logoutCalls), "giving up the wait must not end the session")
}

func TestClient_SecondUnauthorizedIsTerminal(t *testing.T) {
	var targetCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&targetCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	box := &tokenBox{token: "stale-token", refreshed: "fresh-token"}
	var logoutCalls int32
	client := newTestClient(t, srv.URL, box, &logoutCalls)

	err := client.Get(context.Background(), "/workouts", nil)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.Equal(t, int32(2), atomic.LoadInt32(&targetCalls), "one retry, no recursion")
	require.Equal(t, int32(1), atomic.LoadInt32(&logoutCalls))
}

func TestClient_APIError(t *testing.T) {
	t.Run("message field surfaced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"title is required"}`))
		}))
		defer srv.Close()

		box := &tokenBox{token: "tok"}
		var logoutCalls int32
		client := newTestClient(t, srv.URL, box, &logoutCalls)

		err := client.Post(context.Background(), "/plans", map[string]string{}, nil)
		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
		require.Equal(t, "title is required", apiErr.Message)
		require.Zero(t, atomic.LoadInt32(&logoutCalls))
	})

	t.Run("default message includes status code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("<html>oops</html>"))
		}))
		defer srv.Close()

		box := &tokenBox{token: "tok"}
		var logoutCalls int32
		client := newTestClient(t, srv.URL, box, &logoutCalls)

		err := client.Get(context.Background(), "/plans", nil)
		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Contains(t, apiErr.Message, "500")
	})
}

func TestClient_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	box := &tokenBox{token: "tok"}
	var logoutCalls int32
	client := newTestClient(t, srv.URL, box, &logoutCalls)

	var out map[string]interface{}
	require.NoError(t, client.Delete(context.Background(), "/plans/p-1", &out))
	require.Nil(t, out)
}

func TestClient_BackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	box := &tokenBox{token: "tok"}
	var logoutCalls int32
	client := newTestClient(t, srv.URL, box, &logoutCalls)

	err := client.Get(context.Background(), "/plans", nil)
	require.ErrorIs(t, err, errs.ErrBackendUnreachable)
	require.Zero(t, atomic.LoadInt32(&logoutCalls), "transport failures do not end the session")
}

func TestClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "c-1", r.FormValue("checkInId"))

		file, header, err := r.FormFile("photo")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "progress.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"photoUrl":"https://cdn.example.com/progress.jpg"}`))
	}))
	defer srv.Close()

	box := &tokenBox{token: "tok"}
	var logoutCalls int32
	client := newTestClient(t, srv.URL, box, &logoutCalls)

	var out struct {
		PhotoURL string `json:"photoUrl"`
	}
	err := client.Upload(context.Background(), "/checkins/c-1/photo",
		map[string]string{"checkInId": "c-1"}, "photo", "progress.jpg",
		strings.NewReader("fake-jpeg-bytes"), &out)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/progress.jpg", out.PhotoURL)
}

func TestNewClient_Validation(t *testing.T) {
	box := &tokenBox{}
	noop := func() {}

	t.Run("missing base URL", func(t *testing.T) {
		_, err := api.NewClient("", box, box, noop)
		require.Error(t, err)
	})

	t.Run("missing token provider", func(t *testing.T) {
		_, err := api.NewClient("http://localhost", nil, box, noop)
		require.Error(t, err)
	})

	t.Run("missing refresher", func(t *testing.T) {
		_, err := api.NewClient("http://localhost", box, nil, noop)
		require.Error(t, err)
	})

	t.Run("missing logout hook", func(t *testing.T) {
		_, err := api.NewClient("http://localhost", box, box, nil)
		require.Error(t, err)
	})
}
