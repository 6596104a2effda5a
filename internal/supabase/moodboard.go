package supabase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

func (d *DatabaseClient) CreateMoodboardItem(ctx context.Context, item *models.MoodboardItem) (*models.MoodboardItem, error) {
	image, err := jsonParam(item.Image)
	if err != nil {
		return nil, err
	}

	var out models.MoodboardItem
	err = d.queryDoc(ctx, &out, `
		INSERT INTO moodboard_items AS t (id, project_id, image, caption, x, y, created_by)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7)
		RETURNING row_to_json(t)
	`, item.ID, item.ProjectID, image, item.Caption, item.X, item.Y, item.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create moodboard item: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) GetMoodboardItem(ctx context.Context, id uuid.UUID) (*models.MoodboardItem, error) {
	var out models.MoodboardItem
	if err := d.queryDoc(ctx, &out, `SELECT row_to_json(t) FROM moodboard_items t WHERE t.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get moodboard item: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) ListMoodboard(ctx context.Context, projectID uuid.UUID) ([]models.MoodboardItem, error) {
	items, err := queryDocs[models.MoodboardItem](ctx, d.db, `
		SELECT row_to_json(t) FROM moodboard_items t WHERE t.project_id = $1 ORDER BY t.created_at, t.id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moodboard: %w", err)
	}
	return items, nil
}

func (d *DatabaseClient) UpdateMoodboardPosition(ctx context.Context, id uuid.UUID, x, y float64) (*models.MoodboardItem, error) {
	var out models.MoodboardItem
	err := d.queryDoc(ctx, &out, `
		UPDATE moodboard_items AS t SET x = $2, y = $3 WHERE t.id = $1 RETURNING row_to_json(t)
	`, id, x, y)
	if err != nil {
		return nil, fmt.Errorf("failed to update moodboard position: %w", err)
	}
	return &out, nil
}
