package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

type TeamStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	ListTeam(ctx context.Context) ([]models.UserProfile, error)
	UpdatePermissions(ctx context.Context, id uuid.UUID, perms map[string]models.AccessLevel) (*models.UserProfile, error)
}

type TeamService struct {
	store  TeamStore
	logger *slog.Logger
}

func NewTeamService(store TeamStore, logger *slog.Logger) *TeamService {
	return &TeamService{store: store, logger: logger}
}

// List returns the team members. Admin profiles never appear even if the
// store hands them back.
func (s *TeamService) List(ctx context.Context) ([]models.UserProfile, error) {
	profiles, err := s.store.ListTeam(ctx)
	if err != nil {
		return nil, err
	}
	members := profiles[:0]
	for _, p := range profiles {
		if p.Role == models.RoleTeamMember {
			members = append(members, p)
		}
	}
	return members, nil
}

// SetPermissions replaces a member's per-project access map. Keys must be
// project ids.
func (s *TeamService) SetPermissions(ctx context.Context, userID uuid.UUID, perms map[string]models.AccessLevel) (*models.UserProfile, error) {
	for projectID, level := range perms {
		if _, err := ParseID("project_id", projectID); err != nil {
			return nil, err
		}
		if !level.Valid() {
			return nil, ErrInvalidLevel
		}
	}
	if _, err := s.store.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	out, err := s.store.UpdatePermissions(ctx, userID, perms)
	if err != nil {
		return nil, err
	}
	s.logger.Info("permissions updated", "user_id", userID, "projects", len(perms))
	return out, nil
}
