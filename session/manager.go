package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/fitdesk/fitdesk-cli/api"
	"github.com/fitdesk/fitdesk-cli/internal/config"
	errs "github.com/fitdesk/fitdesk-cli/internal/errors"
	"github.com/fitdesk/fitdesk-cli/refresh"
	"github.com/fitdesk/fitdesk-cli/users"
)

// Manager is the consumer-facing session context. It owns the store, the
// refresh coordinator, and the authenticated client, and wires them
// together at construction so none of them ever runs half-initialized.
// One Manager per process.
type Manager struct {
	mu           sync.Mutex
	ended        bool
	store        *Store
	coordinator  *refresh.Coordinator
	client       *api.Client
	auth         *api.AuthAPI
	onSessionEnd func()

	baseURL         string
	dataDir         string
	httpc           *http.Client
	validateTimeout time.Duration
}

// ManagerOption defines a function type to modify the Manager.
type ManagerOption func(*Manager)

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) ManagerOption {
	return func(m *Manager) {
		m.baseURL = baseURL
	}
}

// WithDataFolder overrides where session state is persisted.
func WithDataFolder(dir string) ManagerOption {
	return func(m *Manager) {
		m.dataDir = dir
	}
}

// WithHTTPClient replaces the HTTP client shared by all endpoints.
func WithHTTPClient(httpc *http.Client) ManagerOption {
	return func(m *Manager) {
		m.httpc = httpc
	}
}

// WithOnSessionEnd registers the hook fired when the session ends
// involuntarily. This is the CLI's "navigate to the login page".
func WithOnSessionEnd(hook func()) ManagerOption {
	return func(m *Manager) {
		m.onSessionEnd = hook
	}
}

// NewManager builds the full session stack from configuration.
func NewManager(cfg config.Config, options ...ManagerOption) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("[NewManager] config is required")
	}

	m := &Manager{
		baseURL:         cfg.GetAPIBaseURL(),
		dataDir:         cfg.GetDataFolder(),
		httpc:           &http.Client{Timeout: cfg.GetHTTPTimeout()},
		validateTimeout: cfg.GetRefreshTimeout(),
	}

	for _, opt := range options {
		opt(m)
	}

	m.store = NewStore(m.dataDir)
	m.auth = api.NewAuthAPI(m.baseURL, api.WithAuthHTTPClient(m.httpc))

	coordinator, err := refresh.NewCoordinator(m.store, m.refreshTokens, m.ForceLogout,
		refresh.WithBuffer(cfg.GetRefreshBuffer()),
		refresh.WithTimeout(cfg.GetRefreshTimeout()),
	)
	if err != nil {
		return nil, err
	}
	m.coordinator = coordinator

	client, err := api.NewClient(m.baseURL, m.store, m.coordinator, m.ForceLogout,
		api.WithHTTPClient(m.httpc),
	)
	if err != nil {
		return nil, err
	}
	m.client = client

	return m, nil
}

// API returns the authenticated request wrapper used by endpoint services.
func (m *Manager) API() *api.Client {
	return m.client
}

// Store returns the session store, for non-auth preferences.
func (m *Manager) Store() *Store {
	return m.store
}

// CurrentUser returns the stored identity, or nil when unauthenticated.
func (m *Manager) CurrentUser() *users.User {
	return m.store.Identity()
}

// Login authenticates with the backend, stores the returned identity and
// token pair, and arms the refresh coordinator from the new token.
func (m *Manager) Login(ctx context.Context, email, password string) (*users.User, error) {
	resp, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, errors.Wrap(err, "[Login]")
	}
	if err := m.beginSession(resp); err != nil {
		return nil, errors.Wrap(err, "[Login]")
	}
	return resp.User, nil
}

// Register creates a new account and starts a session with it.
func (m *Manager) Register(ctx context.Context, params api.RegisterParams) (*users.User, error) {
	resp, err := m.auth.Register(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "[Register]")
	}
	if err := m.beginSession(resp); err != nil {
		return nil, errors.Wrap(err, "[Register]")
	}
	return resp.User, nil
}

// Logout ends the session. The server-side call is best-effort; local
// cleanup always happens.
func (m *Manager) Logout(ctx context.Context) {
	m.coordinator.Logout()

	if tok := m.store.Token(); tok != "" {
		if err := m.auth.Logout(ctx, tok); err != nil {
			log.Debug().Err(err).Msg("logout endpoint call failed, clearing local session anyway")
		}
	}

	m.store.Clear()

	m.mu.Lock()
	m.ended = true
	m.mu.Unlock()
}

// Restore adopts a persisted session at process start: the stored identity
// and token are used optimistically, the coordinator is armed, and the
// token is validated in the background. A validation failure forces
// logout. Returns ErrNoSession when there is nothing to restore.
func (m *Manager) Restore(ctx context.Context) (*users.User, error) {
	user := m.store.Identity()
	tok := m.store.Token()
	if user == nil || tok == "" {
		return nil, errs.ErrNoSession
	}

	m.mu.Lock()
	m.ended = false
	m.mu.Unlock()

	m.coordinator.Schedule(tok)
	go m.validateSession()

	return user, nil
}

// ForceLogout clears all session state and fires the session-end hook.
// Idempotent within a session: refresh failure and a 401 retry exhausting
// can both land here, the hook fires once.
func (m *Manager) ForceLogout() {
	m.mu.Lock()
	if m.ended {
		m.mu.Unlock()
		return
	}
	m.ended = true
	m.mu.Unlock()

	m.coordinator.Logout()
	m.store.Clear()
	log.Info().Msg("session ended")

	if m.onSessionEnd != nil {
		m.onSessionEnd()
	}
}

func (m *Manager) beginSession(resp *api.AuthResponse) error {
	if resp.Token == "" || resp.User == nil {
		return errors.New("auth response missing token or user")
	}

	m.mu.Lock()
	m.ended = false
	m.mu.Unlock()

	m.store.SetSession(resp.Token, resp.RefreshToken, resp.User)
	m.coordinator.Schedule(resp.Token)
	return nil
}

// validateSession confirms a restored token against /auth/me. The identity
// is refreshed from the response; any failure invalidates the session.
func (m *Manager) validateSession() {
	ctx, cancel := context.WithTimeout(context.Background(), m.validateTimeout)
	defer cancel()

	user, err := m.client.CurrentUser(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("restored session failed validation")
		m.ForceLogout()
		return
	}
	m.store.SetIdentity(user)
}

func (m *Manager) refreshTokens(ctx context.Context, refreshToken string) (*refresh.TokenPair, error) {
	resp, err := m.auth.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return &refresh.TokenPair{AccessToken: resp.Token, RefreshToken: resp.RefreshToken}, nil
}
