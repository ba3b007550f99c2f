package config

import (
	"time"
)

const (
	refreshBufferVar  = "FITDESK_REFRESH_BUFFER"
	httpTimeoutVar    = "FITDESK_HTTP_TIMEOUT"
	refreshTimeoutVar = "FITDESK_REFRESH_TIMEOUT"
)

const (
	// Access tokens are refreshed this long before their expiry so clock
	// skew and network latency do not leave a window of expired requests.
	defaultRefreshBuffer  = 60 * time.Second
	defaultHTTPTimeout    = 30 * time.Second
	defaultRefreshTimeout = 15 * time.Second
)

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetRefreshBuffer() time.Duration {
	return getDuration(refreshBufferVar, defaultRefreshBuffer)
}

func (Session) GetHTTPTimeout() time.Duration {
	return getDuration(httpTimeoutVar, defaultHTTPTimeout)
}

func (Session) GetRefreshTimeout() time.Duration {
	return getDuration(refreshTimeoutVar, defaultRefreshTimeout)
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}
