package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

func (d *DatabaseClient) CreateSubmission(ctx context.Context, s *models.FormSubmission) (*models.FormSubmission, error) {
	payload, err := jsonParam(s.Payload)
	if err != nil {
		return nil, err
	}

	var out models.FormSubmission
	err = d.queryDoc(ctx, &out, `
		INSERT INTO form_submissions AS t (id, form_type, payload)
		VALUES ($1, $2, $3::jsonb)
		RETURNING row_to_json(t)
	`, s.ID, s.FormType, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) GetSubmission(ctx context.Context, id uuid.UUID) (*models.FormSubmission, error) {
	var out models.FormSubmission
	if err := d.queryDoc(ctx, &out, `SELECT row_to_json(t) FROM form_submissions t WHERE t.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) MarkSubmissionNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := d.exec(ctx, `UPDATE form_submissions SET notified_at = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("failed to mark submission notified: %w", err)
	}
	return nil
}
