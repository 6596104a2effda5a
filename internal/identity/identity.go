// Package identity signs users in against the auth provider and resolves
// their portal role.
package identity

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"agency-portal/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and contain a letter and a digit")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInviteInvalid      = errors.New("invite link is invalid")
	ErrInviteUsed         = errors.New("invite link has already been used")
	ErrInviteExpired      = errors.New("invite link has expired")
)

const MinPasswordLength = 8

// Identity is the authenticated user as the portal sees it.
type Identity struct {
	ID          uuid.UUID                     `json:"id"`
	Email       string                        `json:"email"`
	Role        string                        `json:"role"`
	Permissions map[string]models.AccessLevel `json:"permissions,omitempty"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// AuthUser is the provider's view of a signed-in user.
type AuthUser struct {
	ID    uuid.UUID
	Email string
}

// Authenticator is the identity provider.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (AuthUser, Tokens, error)
	SignOut(ctx context.Context, accessToken string) error
}

// AdminAuthenticator manages provider accounts with elevated credentials.
type AdminAuthenticator interface {
	CreateUser(ctx context.Context, email, password string) (AuthUser, error)
	FindUserByEmail(ctx context.Context, email string) (AuthUser, error)
}

// ProfileStore returns models.ErrNotFound for unknown users.
type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	UpsertProfile(ctx context.Context, profile *models.UserProfile) error
}

var validate = validator.New()

func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return ErrWeakPassword
	}
	return nil
}

// MapProviderError turns auth provider failures into the errors callers
// show to users. Unrecognised failures are returned unchanged.
func MapProviderError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "email_exists"),
		strings.Contains(msg, "already registered"),
		strings.Contains(msg, "already been registered"),
		strings.Contains(msg, "user_already_exists"):
		return ErrEmailInUse
	case strings.Contains(msg, "weak_password"),
		strings.Contains(msg, "password should be"):
		return ErrWeakPassword
	case strings.Contains(msg, "invalid_credentials"),
		strings.Contains(msg, "invalid login credentials"),
		strings.Contains(msg, "invalid_grant"):
		return ErrInvalidCredentials
	}
	return err
}
