package users

import "strings"

// RoleType defines the access level of an authenticated user.
type RoleType string

const (
	RoleAdmin  RoleType = "admin"
	RoleCoach  RoleType = "coach"
	RoleClient RoleType = "client"
)

// User is the identity record for an authenticated account. It mirrors the
// shape returned by the auth endpoints and persisted in the session store.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Role        RoleType `json:"role"`
	DisplayName string   `json:"displayName,omitempty"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	AvatarURL   string   `json:"avatarUrl,omitempty"`
}

// Name returns the best available human-readable name for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Email
}

// IsCoach reports whether the user can manage a client roster.
func (u *User) IsCoach() bool {
	return u.Role == RoleCoach || u.Role == RoleAdmin
}
