// Package analytics wraps the dashboard aggregation endpoints.
package analytics

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/fitdesk/fitdesk-cli/api"
)

type Summary struct {
	ActiveClients   int     `json:"activeClients"`
	PendingCheckIns int     `json:"pendingCheckIns"`
	AdherencePct    float64 `json:"adherencePct"`
}

type ProgressPoint struct {
	Date         time.Time `json:"date"`
	WeightKg     float64   `json:"weightKg,omitempty"`
	AdherencePct float64   `json:"adherencePct,omitempty"`
}

type ClientProgress struct {
	ClientID string          `json:"clientId"`
	Points   []ProgressPoint `json:"points"`
}

type Service struct {
	api *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{api: client}
}

// Summary returns the coach dashboard aggregates.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	sum := &Summary{}
	if err := s.api.Get(ctx, "/analytics/summary", sum); err != nil {
		return nil, errors.Wrap(err, "[Summary] fetching dashboard summary")
	}
	return sum, nil
}

// Progress returns a client's progress series. rangeSpec is a backend
// range token such as "30d" or "12w".
func (s *Service) Progress(ctx context.Context, clientID, rangeSpec string) (*ClientProgress, error) {
	path := fmt.Sprintf("/analytics/clients/%s/progress", url.PathEscape(clientID))
	if rangeSpec != "" {
		path += "?range=" + url.QueryEscape(rangeSpec)
	}

	p := &ClientProgress{}
	if err := s.api.Get(ctx, path, p); err != nil {
		return nil, errors.Wrapf(err, "[Progress] fetching progress for client %s", clientID)
	}
	return p, nil
}
