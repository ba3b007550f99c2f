// Package refresh owns the access-token refresh lifecycle: a one-shot
// timer armed ahead of token expiry, and a single-flight slot so a timer
// firing and a 401-triggered retry never produce two refresh calls.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	errs "github.com/fitdesk/fitdesk-cli/internal/errors"
	"github.com/fitdesk/fitdesk-cli/token"
)

// TokenPair is the outcome of a successful refresh call. RefreshToken is
// empty when the backend did not rotate it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RefreshFunc exchanges a refresh token for a new token pair. Implemented
// as a function type to avoid an import cycle between refresh and api.
type RefreshFunc func(ctx context.Context, refreshToken string) (*TokenPair, error)

// Store is the slice of the session store the coordinator needs.
type Store interface {
	RefreshToken() string
	SetToken(token string)
	SetRefreshToken(token string)
}

// Coordinator schedules automatic token refreshes and serializes concurrent
// refresh requests into one network call.
//
// Every session has a generation number; logout bumps it. A refresh
// operation records the generation it started under, and its result is
// discarded if the generation has moved by the time it settles, so a
// late-arriving refresh can never repopulate a logged-out session.
type Coordinator struct {
	mu         sync.Mutex
	store      Store
	refreshFn  RefreshFunc
	onTerminal func()
	buffer     time.Duration
	timeout    time.Duration
	timer      *time.Timer
	generation uint64
	group      singleflight.Group
}

// CoordinatorOption defines a function type to modify the Coordinator.
type CoordinatorOption func(*Coordinator)

// WithBuffer sets how long before expiry the scheduled refresh fires.
func WithBuffer(buffer time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.buffer = buffer
	}
}

// WithTimeout bounds the refresh network call so a hung request cannot
// indefinitely hold the single-flight slot.
func WithTimeout(timeout time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.timeout = timeout
	}
}

// NewCoordinator creates a Coordinator. onTerminalFailure is invoked at
// most once per session generation, when a refresh fails for good.
func NewCoordinator(store Store, refreshFn RefreshFunc, onTerminalFailure func(), options ...CoordinatorOption) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("[NewCoordinator] store is required")
	}
	if refreshFn == nil {
		return nil, errors.New("[NewCoordinator] refreshFn is required")
	}

	c := &Coordinator{
		store:      store,
		refreshFn:  refreshFn,
		onTerminal: onTerminalFailure,
		buffer:     token.DefaultRefreshBuffer,
		timeout:    15 * time.Second,
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// Schedule arms the refresh timer from the token's embedded expiry,
// cancelling any previously pending timer first. A token without a
// decodable expiry leaves the coordinator idle; expired-token recovery
// then relies on reactive 401 handling only.
func (c *Coordinator) Schedule(tokenStr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduleLocked(tokenStr)
}

func (c *Coordinator) scheduleLocked(tokenStr string) {
	c.stopTimerLocked()

	expiry, ok := token.ExpiryOf(tokenStr)
	if !ok {
		log.Debug().Msg("access token has no decodable expiry, automatic refresh disabled")
		return
	}

	delay := token.DelayUntilRefresh(expiry, c.buffer)
	gen := c.generation
	c.timer = time.AfterFunc(delay, func() {
		if !c.isCurrent(gen) {
			return
		}
		_, _ = c.RequestRefresh(context.Background())
	})
	log.Debug().Dur("delay", delay).Time("expiry", expiry).Msg("token refresh scheduled")
}

// RequestRefresh returns a fresh access token, or "" when no token could
// be obtained. Concurrent callers share one in-flight network call and
// observe the same outcome. Refresh failures never surface as an error;
// they escalate through the onTerminalFailure hook instead.
//
// The underlying call is shared between callers, so it runs under the
// coordinator's own timeout rather than any single caller's context; ctx
// only bounds how long this caller waits for the shared result. A non-nil
// error means exactly that the caller stopped waiting: the refresh itself
// keeps running and its outcome still applies to the store.
func (c *Coordinator) RequestRefresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	ch := c.group.DoChan("refresh", func() (interface{}, error) {
		return c.refresh(gen), nil
	})

	select {
	case res := <-ch:
		tok, _ := res.Val.(string)
		return tok, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Cancel stops any pending refresh timer without ending the session.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

// Logout ends the current session generation: the pending timer is
// cancelled and any in-flight refresh result will be discarded when it
// settles.
func (c *Coordinator) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.stopTimerLocked()
}

func (c *Coordinator) refresh(gen uint64) string {
	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		c.fail(gen, errs.ErrNoRefreshToken)
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	pair, err := c.refreshFn(ctx, refreshToken)
	if err != nil {
		c.fail(gen, err)
		return ""
	}
	if pair == nil || pair.AccessToken == "" {
		c.fail(gen, errors.New("refresh returned no access token"))
		return ""
	}

	if !c.apply(gen, pair) {
		return ""
	}
	return pair.AccessToken
}

// apply stores the refreshed pair and re-arms the timer, unless the
// session generation moved while the refresh was in flight.
func (c *Coordinator) apply(gen uint64, pair *TokenPair) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		log.Debug().Msg("discarding refresh result from a superseded session")
		return false
	}

	c.store.SetToken(pair.AccessToken)
	if pair.RefreshToken != "" {
		c.store.SetRefreshToken(pair.RefreshToken)
	}
	c.scheduleLocked(pair.AccessToken)
	return true
}

// fail ends the session generation and fires the terminal-failure hook,
// at most once per generation.
func (c *Coordinator) fail(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.generation++
	c.stopTimerLocked()
	c.mu.Unlock()

	log.Debug().Err(err).Msg("token refresh failed, forcing logout")
	if c.onTerminal != nil {
		c.onTerminal()
	}
}

func (c *Coordinator) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
