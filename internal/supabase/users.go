package supabase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"agency-portal/internal/identity"
	"agency-portal/internal/models"
)

func (d *DatabaseClient) GetProfile(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := d.queryDoc(ctx, &out, `SELECT row_to_json(t) FROM users t WHERE t.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &out, nil
}

// UpsertProfile creates the profile or updates its email and role. Existing
// permissions are kept unless the profile carries some.
func (d *DatabaseClient) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	var perms any
	if p.Permissions != nil {
		param, err := jsonParam(p.Permissions)
		if err != nil {
			return err
		}
		perms = param
	}

	var out models.UserProfile
	err := d.queryDoc(ctx, &out, `
		INSERT INTO users AS t (id, email, role, permissions)
		VALUES ($1, $2, $3, COALESCE($4::jsonb, '{}'::jsonb))
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			permissions = CASE WHEN $4::jsonb IS NULL THEN t.permissions ELSE EXCLUDED.permissions END
		RETURNING row_to_json(t)
	`, p.ID, p.Email, p.Role, perms)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	*p = out
	return nil
}

// ListTeam returns the team member profiles ordered by email. Admins are
// not part of the team.
func (d *DatabaseClient) ListTeam(ctx context.Context) ([]models.UserProfile, error) {
	members, err := queryDocs[models.UserProfile](ctx, d.db, `SELECT row_to_json(t) FROM users t WHERE t.role = $1 ORDER BY t.email`, models.RoleTeamMember)
	if err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}
	return members, nil
}

func (d *DatabaseClient) UpdatePermissions(ctx context.Context, id uuid.UUID, perms map[string]models.AccessLevel) (*models.UserProfile, error) {
	param, err := jsonParam(perms)
	if err != nil {
		return nil, err
	}

	var out models.UserProfile
	err = d.queryDoc(ctx, &out, `
		UPDATE users AS t SET permissions = $2::jsonb WHERE t.id = $1 RETURNING row_to_json(t)
	`, id, param)
	if err != nil {
		return nil, fmt.Errorf("failed to update permissions: %w", err)
	}
	return &out, nil
}

// FindAuthUserByEmail reads the Supabase auth schema directly, so every
// account is reachable regardless of how many exist.
func (d *DatabaseClient) FindAuthUserByEmail(ctx context.Context, email string) (identity.AuthUser, error) {
	var u identity.AuthUser
	err := d.db.QueryRowContext(ctx, `SELECT id, email FROM auth.users WHERE lower(email) = lower($1) LIMIT 1`, email).Scan(&u.ID, &u.Email)
	if err != nil {
		return identity.AuthUser{}, mapError(err)
	}
	return u, nil
}
