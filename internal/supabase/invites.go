package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

func (d *DatabaseClient) CreateInvite(ctx context.Context, invite *models.Invite) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO invites (id, email, secret_hash, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, invite.ID, invite.Email, invite.SecretHash, invite.InvitedBy, invite.ExpiresAt).Scan(&invite.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", mapError(err))
	}
	return nil
}

func (d *DatabaseClient) GetInvite(ctx context.Context, id uuid.UUID) (*models.Invite, error) {
	var invite models.Invite
	err := d.db.QueryRowContext(ctx, `
		SELECT id, email, secret_hash, invited_by, expires_at, accepted_at, created_at
		FROM invites WHERE id = $1
	`, id).Scan(
		&invite.ID,
		&invite.Email,
		&invite.SecretHash,
		&invite.InvitedBy,
		&invite.ExpiresAt,
		&invite.AcceptedAt,
		&invite.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", mapError(err))
	}
	return &invite, nil
}

// ConsumeInvite marks the invite accepted. Only one caller can win; the
// rest get models.ErrNotFound.
func (d *DatabaseClient) ConsumeInvite(ctx context.Context, id uuid.UUID, at time.Time) error {
	return d.exec(ctx, `UPDATE invites SET accepted_at = $2 WHERE id = $1 AND accepted_at IS NULL`, id, at)
}

func (d *DatabaseClient) ReleaseInvite(ctx context.Context, id uuid.UUID) error {
	if _, err := d.db.ExecContext(ctx, `UPDATE invites SET accepted_at = NULL WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to release invite: %w", err)
	}
	return nil
}
