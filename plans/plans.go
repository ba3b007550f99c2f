// Package plans wraps the workout and diet plan endpoints.
package plans

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/fitdesk/fitdesk-cli/api"
)

// PlanType distinguishes workout plans from diet plans. Both share the
// day-structured layout; a day carries exercises, meals, or both.
type PlanType string

const (
	TypeWorkout PlanType = "workout"
	TypeDiet    PlanType = "diet"
)

type Exercise struct {
	Name  string `json:"name"`
	Sets  int    `json:"sets,omitempty"`
	Reps  int    `json:"reps,omitempty"`
	Notes string `json:"notes,omitempty"`
}

type Meal struct {
	Name     string `json:"name"`
	Calories int    `json:"calories,omitempty"`
	Protein  int    `json:"protein,omitempty"`
	Carbs    int    `json:"carbs,omitempty"`
	Fat      int    `json:"fat,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type Day struct {
	Label     string     `json:"label"`
	Exercises []Exercise `json:"exercises,omitempty"`
	Meals     []Meal     `json:"meals,omitempty"`
}

type Plan struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Type        PlanType  `json:"type"`
	Description string    `json:"description,omitempty"`
	Days        []Day     `json:"days"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

type ListParams struct {
	Page     int
	PageSize int
	Type     PlanType
}

type ListResponse struct {
	Items    []Plan `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type Service struct {
	api *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{api: client}
}

func (s *Service) List(ctx context.Context, params ListParams) (*ListResponse, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	if params.Type != "" {
		q.Set("type", string(params.Type))
	}

	path := "/plans"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp := &ListResponse{}
	if err := s.api.Get(ctx, path, resp); err != nil {
		return nil, errors.Wrap(err, "[List] fetching plans")
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, planID string) (*Plan, error) {
	p := &Plan{}
	if err := s.api.Get(ctx, "/plans/"+url.PathEscape(planID), p); err != nil {
		return nil, errors.Wrapf(err, "[Get] fetching plan %s", planID)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, plan Plan) (*Plan, error) {
	created := &Plan{}
	if err := s.api.Post(ctx, "/plans", plan, created); err != nil {
		return nil, errors.Wrap(err, "[Create] creating plan")
	}
	return created, nil
}

// Assign puts a plan on a client's schedule.
func (s *Service) Assign(ctx context.Context, planID, clientID string) error {
	path := fmt.Sprintf("/plans/%s/assign", url.PathEscape(planID))
	body := map[string]string{"clientId": clientID}
	if err := s.api.Post(ctx, path, body, nil); err != nil {
		return errors.Wrapf(err, "[Assign] assigning plan %s to client %s", planID, clientID)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, planID string) error {
	if err := s.api.Delete(ctx, "/plans/"+url.PathEscape(planID), nil); err != nil {
		return errors.Wrapf(err, "[Delete] deleting plan %s", planID)
	}
	return nil
}
