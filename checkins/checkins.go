// Package checkins wraps the check-in endpoints: clients submit them,
// coaches review them.
package checkins

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/fitdesk/fitdesk-cli/api"
)

type CheckIn struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"clientId"`
	Date        time.Time  `json:"date"`
	WeightKg    float64    `json:"weightKg,omitempty"`
	EnergyLevel int        `json:"energyLevel,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	PhotoURL    string     `json:"photoUrl,omitempty"`
	Feedback    string     `json:"feedback,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
}

type SubmitParams struct {
	WeightKg    float64 `json:"weightKg,omitempty"`
	EnergyLevel int     `json:"energyLevel,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

type ListParams struct {
	Page     int
	PageSize int
	ClientID string
	Pending  bool
}

type ListResponse struct {
	Items    []CheckIn `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

type Service struct {
	api *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{api: client}
}

func (s *Service) Submit(ctx context.Context, params SubmitParams) (*CheckIn, error) {
	c := &CheckIn{}
	if err := s.api.Post(ctx, "/checkins", params, c); err != nil {
		return nil, errors.Wrap(err, "[Submit] submitting check-in")
	}
	return c, nil
}

// AttachPhoto uploads a progress photo for an existing check-in as
// multipart form data.
func (s *Service) AttachPhoto(ctx context.Context, checkInID, fileName string, photo io.Reader) (*CheckIn, error) {
	path := fmt.Sprintf("/checkins/%s/photo", url.PathEscape(checkInID))
	c := &CheckIn{}
	fields := map[string]string{"checkInId": checkInID}
	if err := s.api.Upload(ctx, path, fields, "photo", fileName, photo, c); err != nil {
		return nil, errors.Wrapf(err, "[AttachPhoto] uploading photo for check-in %s", checkInID)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, params ListParams) (*ListResponse, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	if params.ClientID != "" {
		q.Set("clientId", params.ClientID)
	}
	if params.Pending {
		q.Set("pending", "true")
	}

	path := "/checkins"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp := &ListResponse{}
	if err := s.api.Get(ctx, path, resp); err != nil {
		return nil, errors.Wrap(err, "[List] fetching check-ins")
	}
	return resp, nil
}

// Review records coach feedback on a check-in.
func (s *Service) Review(ctx context.Context, checkInID, feedback string) (*CheckIn, error) {
	path := fmt.Sprintf("/checkins/%s/review", url.PathEscape(checkInID))
	body := map[string]string{"feedback": feedback}
	c := &CheckIn{}
	if err := s.api.Patch(ctx, path, body, c); err != nil {
		return nil, errors.Wrapf(err, "[Review] reviewing check-in %s", checkInID)
	}
	return c, nil
}
