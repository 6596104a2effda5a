package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

type Service struct {
	auth     Authenticator
	profiles ProfileStore
	logger   *slog.Logger
}

func NewService(auth Authenticator, profiles ProfileStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{auth: auth, profiles: profiles, logger: logger}
}

// Login signs in with email and password and resolves the user's role.
// Every provider rejection is reported as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Identity, Tokens, error) {
	user, tokens, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Info("login rejected", slog.String("email", email), slog.String("error", err.Error()))
		return Identity{}, Tokens{}, ErrInvalidCredentials
	}

	id, err := s.Resolve(ctx, user.ID, user.Email)
	if err != nil {
		return Identity{}, Tokens{}, err
	}
	return id, tokens, nil
}

// Logout revokes the provider session. Revocation failures are logged and
// swallowed so that logging out always succeeds locally.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := s.auth.SignOut(ctx, accessToken); err != nil {
		s.logger.Warn("failed to revoke session", slog.String("error", err.Error()))
	}
	return nil
}

// Resolve loads the user's profile. Users without a profile are treated as
// team members with no project permissions.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID, email string) (Identity, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return Identity{ID: userID, Email: email, Role: models.RoleTeamMember}, nil
	}
	if err != nil {
		return Identity{}, fmt.Errorf("failed to load profile: %w", err)
	}

	role := profile.Role
	if role == "" {
		role = models.RoleTeamMember
	}
	if profile.Email != "" {
		email = profile.Email
	}
	return Identity{ID: userID, Email: email, Role: role, Permissions: profile.Permissions}, nil
}
