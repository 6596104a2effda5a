package supabase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

func (d *DatabaseClient) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	miniTasks, err := jsonParam(nonNil(task.MiniTasks))
	if err != nil {
		return nil, err
	}
	documents, err := jsonParam(nonNil(task.Documents))
	if err != nil {
		return nil, err
	}

	var out models.Task
	err = d.queryDoc(ctx, &out, `
		INSERT INTO tasks AS t (id, project_id, title, description, status, assignee_id, due_date, mini_tasks, documents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb)
		RETURNING row_to_json(t)
	`, task.ID, task.ProjectID, task.Title, task.Description, string(task.Status), task.AssigneeID, task.DueDate, miniTasks, documents)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var out models.Task
	if err := d.queryDoc(ctx, &out, `SELECT row_to_json(t) FROM tasks t WHERE t.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) ListTasks(ctx context.Context, projectID uuid.UUID) ([]models.Task, error) {
	tasks, err := queryDocs[models.Task](ctx, d.db, `
		SELECT row_to_json(t) FROM tasks t WHERE t.project_id = $1 ORDER BY t.created_at, t.id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask patches the non-nil fields. An empty assignee id unassigns.
func (d *DatabaseClient) UpdateTask(ctx context.Context, id uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	var out models.Task
	err := d.queryDoc(ctx, &out, `
		UPDATE tasks AS t SET
			title = COALESCE($2, t.title),
			description = COALESCE($3, t.description),
			assignee_id = CASE WHEN $4::text IS NULL THEN t.assignee_id ELSE NULLIF($4::text, '')::uuid END,
			due_date = COALESCE($5, t.due_date)
		WHERE t.id = $1
		RETURNING row_to_json(t)
	`, id, req.Title, req.Description, req.AssigneeID, req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	var out models.Task
	err := d.queryDoc(ctx, &out, `
		UPDATE tasks AS t SET status = $2 WHERE t.id = $1 RETURNING row_to_json(t)
	`, id, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := d.exec(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// SaveMiniTasks replaces the task's checklist. Concurrent edits are last
// write wins.
func (d *DatabaseClient) SaveMiniTasks(ctx context.Context, taskID uuid.UUID, miniTasks []models.MiniTask) (*models.Task, error) {
	param, err := jsonParam(nonNil(miniTasks))
	if err != nil {
		return nil, err
	}

	var out models.Task
	err = d.queryDoc(ctx, &out, `
		UPDATE tasks AS t SET mini_tasks = $2::jsonb WHERE t.id = $1 RETURNING row_to_json(t)
	`, taskID, param)
	if err != nil {
		return nil, fmt.Errorf("failed to save mini tasks: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) AppendTaskDocument(ctx context.Context, taskID uuid.UUID, doc models.Attachment) (*models.Task, error) {
	param, err := jsonParam([]models.Attachment{doc})
	if err != nil {
		return nil, err
	}

	var out models.Task
	err = d.queryDoc(ctx, &out, `
		UPDATE tasks AS t SET documents = t.documents || $2::jsonb WHERE t.id = $1 RETURNING row_to_json(t)
	`, taskID, param)
	if err != nil {
		return nil, fmt.Errorf("failed to attach document: %w", err)
	}
	return &out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
