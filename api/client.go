// Package api is the HTTP layer of the fitdesk client: a request wrapper
// that attaches bearer credentials and transparently recovers from an
// expired token exactly once, plus the raw auth endpoints that sit outside
// that recovery loop.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	errs "github.com/fitdesk/fitdesk-cli/internal/errors"
)

// TokenProvider supplies the current bearer token, or "" when
// unauthenticated.
type TokenProvider interface {
	Token() string
}

// Refresher obtains a fresh access token after an authorization failure.
// An empty token with a nil error means no token could be obtained. A
// non-nil error means the caller gave up waiting; it says nothing about
// the refresh outcome and must not be treated as an auth failure.
type Refresher interface {
	RequestRefresh(ctx context.Context) (string, error)
}

// APIError is a non-2xx, non-401 response from the backend, carrying the
// message field from the response body when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client wraps every outbound API call. On a 401 it asks the Refresher for
// a fresh token and retries the original request once; a second 401, or a
// refresh that yields no token, forces logout through the hook supplied at
// construction.
type Client struct {
	baseURL        string
	httpc          *http.Client
	tokens         TokenProvider
	refresher      Refresher
	onForcedLogout func()
}

// ClientOption defines a function type to modify the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpc = httpc
	}
}

// NewClient creates the authenticated request wrapper. All collaborators
// are supplied up front so there is no construct-then-wire window in which
// the wrapper could run without refresh or logout behavior.
func NewClient(baseURL string, tokens TokenProvider, refresher Refresher, onForcedLogout func(), options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[NewClient] baseURL is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewClient] token provider is required")
	}
	if refresher == nil {
		return nil, errors.New("[NewClient] refresher is required")
	}
	if onForcedLogout == nil {
		return nil, errors.New("[NewClient] forced-logout hook is required")
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpc:          &http.Client{Timeout: 30 * time.Second},
		tokens:         tokens,
		refresher:      refresher,
		onForcedLogout: onForcedLogout,
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

// Upload sends a multipart form with the given fields and a single file
// part. The multipart writer sets the content type; no JSON header is
// attached.
func (c *Client) Upload(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return errors.Wrap(err, "[Upload] writing form field")
		}
	}
	part, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return errors.Wrap(err, "[Upload] creating file part")
	}
	if _, err := io.Copy(part, file); err != nil {
		return errors.Wrap(err, "[Upload] reading file")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "[Upload] finalizing form")
	}
	return c.do(ctx, http.MethodPost, path, w.FormDataContentType(), buf.Bytes(), out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	contentType := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[%s %s] encoding request body", method, path)
		}
		payload = raw
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, payload, out)
}

// do performs the request with the retry-once contract: a 401 on the first
// attempt triggers one refresh and one retry; a 401 on the retry, or a
// refresh yielding no token, forces logout and fails with ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path, contentType string, payload []byte, out interface{}) error {
	resp, err := c.attempt(ctx, method, path, contentType, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)

		// A caller abandoning its wait is not an auth failure; the shared
		// refresh keeps running and the session stays intact.
		newToken, err := c.refresher.RequestRefresh(ctx)
		if err != nil {
			return errors.Wrapf(err, "[%s %s] waiting for token refresh", method, path)
		}
		if newToken == "" {
			c.onForcedLogout()
			return errs.ErrUnauthorized
		}

		resp, err = c.attempt(ctx, method, path, contentType, payload)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			c.onForcedLogout()
			return errs.ErrUnauthorized
		}
	}

	return decodeResponse(resp, out)
}

func (c *Client) attempt(ctx context.Context, method, path, contentType string, payload []byte) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "[%s %s] building request", method, path)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("path", path).Msg("transport failure")
		return nil, errs.Wrapf(errs.ErrBackendUnreachable, "%s %s (%v)", method, path, err)
	}
	return resp, nil
}

func decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{StatusCode: resp.StatusCode, Message: apiMessage(resp.StatusCode, raw)}
	}

	// 204s and other empty bodies decode to nothing.
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decoding response body")
	}
	return nil
}

func apiMessage(status int, raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
