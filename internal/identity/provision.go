package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agency-portal/internal/models"
)

// ProvisionAdmin makes email an administrator. A new account is created
// with password; if the email is already registered the existing account
// is promoted and its password left alone. created reports which happened.
func ProvisionAdmin(ctx context.Context, admin AdminAuthenticator, profiles ProfileStore, email, password string) (id Identity, created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateEmail(email); err != nil {
		return Identity{}, false, err
	}
	if err := ValidatePassword(password); err != nil {
		return Identity{}, false, err
	}

	user, err := admin.CreateUser(ctx, email, password)
	switch mapped := MapProviderError(err); {
	case err == nil:
		created = true
	case errors.Is(mapped, ErrEmailInUse):
		user, err = admin.FindUserByEmail(ctx, email)
		if err != nil {
			return Identity{}, false, fmt.Errorf("failed to look up existing user: %w", err)
		}
	default:
		return Identity{}, false, mapped
	}

	profile, err := profiles.GetProfile(ctx, user.ID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		profile = &models.UserProfile{ID: user.ID, Permissions: map[string]models.AccessLevel{}}
	case err != nil:
		return Identity{}, false, fmt.Errorf("failed to load profile: %w", err)
	}
	profile.Email = email
	profile.Role = models.RoleAdmin
	if err := profiles.UpsertProfile(ctx, profile); err != nil {
		return Identity{}, false, fmt.Errorf("failed to save profile: %w", err)
	}

	return Identity{ID: user.ID, Email: email, Role: models.RoleAdmin, Permissions: profile.Permissions}, created, nil
}
