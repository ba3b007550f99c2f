// Package token derives refresh timing from access tokens. Tokens are
// treated as opaque bearer strings everywhere else in the client; this is
// the only place that looks inside one, and only at the exp claim. The
// signature is never verified; validation is the backend's job.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// DefaultRefreshBuffer is how long before expiry a refresh is attempted.
const DefaultRefreshBuffer = 60 * time.Second

// ExpiryOf decodes the exp claim of a JWT access token without verifying
// it. Returns ok=false for anything that cannot yield a numeric expiry: a
// malformed token, fewer than two segments, a claim set that is not JSON,
// or a missing/non-numeric exp claim. It never panics and never returns an
// error; callers that get ok=false fall back to reactive 401 handling.
func ExpiryOf(tokenStr string) (expiry time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// DelayUntilRefresh returns how long to wait before refreshing a token
// with the given expiry, refreshing buffer ahead of the deadline. Never
// negative: an already-due expiry yields zero (refresh immediately).
func DelayUntilRefresh(expiry time.Time, buffer time.Duration) time.Duration {
	delay := expiry.Sub(NowTimeFunc()) - buffer
	if delay < 0 {
		return 0
	}
	return delay
}
