// Package coaching wraps the client-roster endpoints used by coaches.
package coaching

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/fitdesk/fitdesk-cli/api"
)

// StatusType is a roster entry's lifecycle state.
type StatusType string

const (
	StatusActive   StatusType = "active"
	StatusPending  StatusType = "pending"
	StatusArchived StatusType = "archived"
)

// Client is a coached client as the roster endpoints return it.
type Client struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Status        StatusType `json:"status"`
	JoinedAt      time.Time  `json:"joinedAt"`
	LastCheckInAt *time.Time `json:"lastCheckInAt,omitempty"`
}

type ListParams struct {
	Page     int
	PageSize int
	Query    string
	Status   StatusType
}

type ListResponse struct {
	Items    []Client `json:"items"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}

type Service struct {
	api *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{api: client}
}

// List returns a page of the coach's roster, optionally filtered by a
// search query and status.
func (s *Service) List(ctx context.Context, params ListParams) (*ListResponse, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	if params.Query != "" {
		q.Set("q", params.Query)
	}
	if params.Status != "" {
		q.Set("status", string(params.Status))
	}

	path := "/clients"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp := &ListResponse{}
	if err := s.api.Get(ctx, path, resp); err != nil {
		return nil, errors.Wrap(err, "[List] fetching client roster")
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, clientID string) (*Client, error) {
	c := &Client{}
	if err := s.api.Get(ctx, "/clients/"+url.PathEscape(clientID), c); err != nil {
		return nil, errors.Wrapf(err, "[Get] fetching client %s", clientID)
	}
	return c, nil
}

// Invite creates a pending roster entry and sends the onboarding email.
func (s *Service) Invite(ctx context.Context, email, firstName, lastName string) (*Client, error) {
	body := map[string]string{
		"email":     email,
		"firstName": firstName,
		"lastName":  lastName,
	}
	c := &Client{}
	if err := s.api.Post(ctx, "/clients/invite", body, c); err != nil {
		return nil, errors.Wrap(err, "[Invite] inviting client")
	}
	return c, nil
}

// Archive hides a client from the active roster without deleting history.
func (s *Service) Archive(ctx context.Context, clientID string) error {
	path := fmt.Sprintf("/clients/%s/archive", url.PathEscape(clientID))
	if err := s.api.Post(ctx, path, nil, nil); err != nil {
		return errors.Wrapf(err, "[Archive] archiving client %s", clientID)
	}
	return nil
}
