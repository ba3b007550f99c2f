package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	errs "github.com/fitdesk/fitdesk-cli/internal/errors"
	"github.com/fitdesk/fitdesk-cli/users"
)

// AuthResponse is the payload of the login, register, and refresh
// endpoints. Refresh responses omit the user; the previously stored
// identity is retained in that case.
type AuthResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	User         *users.User `json:"user,omitempty"`
}

// RegisterParams is the new-account request body.
type RegisterParams struct {
	Email     string         `json:"email"`
	Password  string         `json:"password"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      users.RoleType `json:"role"`
}

// AuthAPI calls the auth endpoints directly, outside the authenticated
// wrapper's refresh-and-retry loop. A 401 from these endpoints is a real
// failure, never something to refresh through.
type AuthAPI struct {
	baseURL string
	httpc   *http.Client
}

// AuthAPIOption defines a function type to modify the AuthAPI.
type AuthAPIOption func(*AuthAPI)

// WithAuthHTTPClient replaces the underlying HTTP client.
func WithAuthHTTPClient(httpc *http.Client) AuthAPIOption {
	return func(a *AuthAPI) {
		a.httpc = httpc
	}
}

func NewAuthAPI(baseURL string, options ...AuthAPIOption) *AuthAPI {
	a := &AuthAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *AuthAPI) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	resp := &AuthResponse{}
	if err := a.post(ctx, "/auth/login", "", body, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (a *AuthAPI) Register(ctx context.Context, params RegisterParams) (*AuthResponse, error) {
	resp := &AuthResponse{}
	if err := a.post(ctx, "/auth/register", "", params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	body := map[string]string{"refreshToken": refreshToken}
	resp := &AuthResponse{}
	if err := a.post(ctx, "/auth/refresh", "", body, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout invalidates the session server-side. Callers treat failures as
// best-effort; local cleanup happens regardless.
func (a *AuthAPI) Logout(ctx context.Context, accessToken string) error {
	return a.post(ctx, "/auth/logout", accessToken, nil, nil)
}

func (a *AuthAPI) post(ctx context.Context, path, bearer string, body, out interface{}) error {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[POST %s] encoding request body", path)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrapf(err, "[POST %s] building request", path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.httpc.Do(req)
	if err != nil {
		return errs.Wrapf(errs.ErrBackendUnreachable, "POST %s (%v)", path, err)
	}
	return decodeResponse(resp, out)
}
