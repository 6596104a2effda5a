package supabase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

func (d *DatabaseClient) CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	attachments, err := jsonParam(nonNil(c.Attachments))
	if err != nil {
		return nil, err
	}

	var out models.Comment
	err = d.queryDoc(ctx, &out, `
		INSERT INTO comments AS t (id, project_id, author_id, author_email, content, attachments)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		RETURNING row_to_json(t)
	`, c.ID, c.ProjectID, c.AuthorID, c.AuthorEmail, c.Content, attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) ListComments(ctx context.Context, projectID uuid.UUID) ([]models.Comment, error) {
	comments, err := queryDocs[models.Comment](ctx, d.db, `
		SELECT row_to_json(t) FROM comments t WHERE t.project_id = $1 ORDER BY t.created_at, t.id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
