package models

import (
	"time"

	"github.com/google/uuid"
)

type AccessLevel string

const (
	AccessNone  AccessLevel = "none"
	AccessRead  AccessLevel = "read"
	AccessWrite AccessLevel = "write"
	AccessAdmin AccessLevel = "admin"
)

func (l AccessLevel) Valid() bool {
	switch l {
	case AccessNone, AccessRead, AccessWrite, AccessAdmin:
		return true
	}
	return false
}

const (
	RoleAdmin      = "admin"
	RoleTeamMember = "team_member"
)

// UserProfile is the portal's own record of a user, keyed by the auth
// provider's user id. Permissions map project ids to access levels.
type UserProfile struct {
	ID          uuid.UUID              `json:"id"`
	Email       string                 `json:"email"`
	Role        string                 `json:"role"`
	Permissions map[string]AccessLevel `json:"permissions"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

type Invite struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	SecretHash string     `json:"-"`
	InvitedBy  uuid.UUID  `json:"invited_by"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type FormSubmission struct {
	ID         uuid.UUID      `json:"id"`
	FormType   string         `json:"form_type"`
	Payload    map[string]any `json:"payload"`
	NotifiedAt *time.Time     `json:"notified_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
