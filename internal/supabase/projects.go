package supabase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

var ErrInvalidCursor = errors.New("invalid cursor")

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func (d *DatabaseClient) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	var out models.Project
	err := d.queryDoc(ctx, &out, `
		INSERT INTO projects AS t (id, client_id, title, description, status, deadline, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING row_to_json(t)
	`, p.ID, p.ClientID, p.Title, p.Description, string(p.Status), p.Deadline, p.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var out models.Project
	if err := d.queryDoc(ctx, &out, `SELECT row_to_json(t) FROM projects t WHERE t.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &out, nil
}

// ListProjectsPage returns one page of a client's projects, newest first.
// The returned cursor is empty on the last page.
func (d *DatabaseClient) ListProjectsPage(ctx context.Context, clientID uuid.UUID, cursor string, limit int) ([]models.Project, string, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	query := `
		SELECT row_to_json(t) FROM projects t
		WHERE t.client_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2`
	args := []any{clientID, limit + 1}

	if cursor != "" {
		at, id, err := DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		query = `
			SELECT row_to_json(t) FROM projects t
			WHERE t.client_id = $1 AND (t.created_at, t.id) < ($3, $4)
			ORDER BY t.created_at DESC, t.id DESC
			LIMIT $2`
		args = append(args, at, id)
	}

	projects, err := queryDocs[models.Project](ctx, d.db, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list projects: %w", err)
	}

	next := ""
	if len(projects) > limit {
		projects = projects[:limit]
		last := projects[limit-1]
		next = EncodeCursor(last.CreatedAt, last.ID)
	}
	return projects, next, nil
}

func (d *DatabaseClient) UpdateProject(ctx context.Context, id uuid.UUID, req models.UpdateProjectRequest) (*models.Project, error) {
	var out models.Project
	err := d.queryDoc(ctx, &out, `
		UPDATE projects AS t SET
			title = COALESCE($2, t.title),
			description = COALESCE($3, t.description),
			deadline = COALESCE($4, t.deadline)
		WHERE t.id = $1
		RETURNING row_to_json(t)
	`, id, req.Title, req.Description, req.Deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) (*models.Project, error) {
	var out models.Project
	err := d.queryDoc(ctx, &out, `
		UPDATE projects AS t SET status = $2 WHERE t.id = $1 RETURNING row_to_json(t)
	`, id, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}
	return &out, nil
}

// EncodeCursor builds the opaque "load more" token for a project row.
func EncodeCursor(createdAt time.Time, id uuid.UUID) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}
	ts, idStr, ok := strings.Cut(string(raw), "|")
	if !ok {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}
	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}
	return at, id, nil
}
