package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fitdesk/fitdesk-cli/users"
	"github.com/rs/zerolog/log"
)

// SessionFileName is the file under the data folder holding persisted
// session state. Each field of the document is its own named slot.
const SessionFileName = "session.json"

type persistedState struct {
	AccessToken  string      `json:"accessToken,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	Identity     *users.User `json:"identity,omitempty"`
	ViewMode     string      `json:"viewMode,omitempty"`
}

// Store is the single in-memory source of truth for the current bearer
// token and identity, persisted to disk across process runs. All methods
// are safe for concurrent use. Persistence failures are logged and
// swallowed: a session that cannot be written outlives the process at
// worst, it never breaks the running one.
type Store struct {
	mu    sync.RWMutex
	path  string
	state persistedState
}

// NewStore loads persisted session state from dir, treating a missing,
// unreadable, or corrupt file as an empty session.
func NewStore(dir string) *Store {
	s := &Store{path: filepath.Join(dir, SessionFileName)}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(raw, &s.state); err != nil {
		log.Warn().Str("path", s.path).Msg("discarding corrupt session state")
		s.state = persistedState{}
	}
	return s
}

// Token returns the current access token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// SetToken replaces the access token. All subsequent requests use the new
// value immediately.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = token
	s.persistLocked()
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

func (s *Store) SetRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.RefreshToken = token
	s.persistLocked()
}

// Identity returns the persisted identity record, or nil.
func (s *Store) Identity() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Identity == nil {
		return nil
	}
	u := *s.state.Identity
	return &u
}

func (s *Store) SetIdentity(user *users.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.state.Identity = nil
	} else {
		u := *user
		s.state.Identity = &u
	}
	s.persistLocked()
}

// SetSession stores a full token pair and identity in one write.
func (s *Store) SetSession(accessToken, refreshToken string, user *users.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = accessToken
	s.state.RefreshToken = refreshToken
	if user == nil {
		s.state.Identity = nil
	} else {
		u := *user
		s.state.Identity = &u
	}
	s.persistLocked()
}

// ViewMode is a UI preference unrelated to authentication. It survives
// logout.
func (s *Store) ViewMode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ViewMode
}

func (s *Store) SetViewMode(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ViewMode = mode
	s.persistLocked()
}

// Clear removes tokens and identity, keeping UI preferences.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = ""
	s.state.RefreshToken = ""
	s.state.Identity = nil
	s.persistLocked()
}

func (s *Store) persistLocked() {
	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode session state")
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("failed to create session folder")
		return
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("failed to persist session state")
	}
}
