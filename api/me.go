package api

import (
	"context"

	"github.com/pkg/errors"

	"github.com/fitdesk/fitdesk-cli/users"
)

// meResponse is the profile-shaped payload of GET /auth/me. Display fields
// may arrive flat or nested under "profile" depending on backend version;
// both shapes normalize into the identity record.
type meResponse struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	Role        users.RoleType `json:"role"`
	DisplayName string         `json:"displayName"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	AvatarURL   string         `json:"avatarUrl"`
	Profile     *struct {
		DisplayName string `json:"displayName"`
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
		AvatarURL   string `json:"avatarUrl"`
	} `json:"profile"`
}

// CurrentUser fetches the authenticated identity through the wrapped
// client, so an expired token goes through the usual refresh-and-retry.
func (c *Client) CurrentUser(ctx context.Context) (*users.User, error) {
	var me meResponse
	if err := c.Get(ctx, "/auth/me", &me); err != nil {
		return nil, err
	}
	if me.ID == "" {
		return nil, errors.New("[CurrentUser] identity response missing id")
	}

	user := &users.User{
		ID:          me.ID,
		Email:       me.Email,
		Role:        me.Role,
		DisplayName: me.DisplayName,
		FirstName:   me.FirstName,
		LastName:    me.LastName,
		AvatarURL:   me.AvatarURL,
	}
	if p := me.Profile; p != nil {
		if user.DisplayName == "" {
			user.DisplayName = p.DisplayName
		}
		if user.FirstName == "" {
			user.FirstName = p.FirstName
		}
		if user.LastName == "" {
			user.LastName = p.LastName
		}
		if user.AvatarURL == "" {
			user.AvatarURL = p.AvatarURL
		}
	}
	return user, nil
}
