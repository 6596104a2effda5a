package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

func (s *ProjectService) CreateTask(ctx context.Context, projectID uuid.UUID, req models.CreateTaskRequest) (*models.Task, error) {
	status := models.TaskStatus(req.Status)
	if status == "" {
		status = models.TaskTodo
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var assignee *uuid.UUID
	if req.AssigneeID != "" {
		id, err := ParseID("assignee_id", req.AssigneeID)
		if err != nil {
			return nil, err
		}
		assignee = &id
	}

	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		AssigneeID:  assignee,
		DueDate:     req.DueDate,
		MiniTasks:   []models.MiniTask{},
		Documents:   []models.Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.store.CreateTask(ctx, task)
}

func (s *ProjectService) ListTasks(ctx context.Context, projectID uuid.UUID) ([]models.Task, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListTasks(ctx, projectID)
}

func (s *ProjectService) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.store.GetTask(ctx, id)
}

func (s *ProjectService) UpdateTask(ctx context.Context, id uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	if req.AssigneeID != nil && *req.AssigneeID != "" {
		if _, err := ParseID("assignee_id", *req.AssigneeID); err != nil {
			return nil, err
		}
	}
	return s.store.UpdateTask(ctx, id, req)
}

func (s *ProjectService) UpdateTaskStatus(ctx context.Context, id uuid.UUID, raw string) (*models.Task, error) {
	status := models.TaskStatus(raw)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.store.UpdateTaskStatus(ctx, id, status)
}

// DeleteTask removes the task and then its uploaded files. File cleanup
// failures are logged, not returned.
func (s *ProjectService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	if len(task.Documents) > 0 {
		if err := s.files.Remove(ctx, taskPrefix(task)); err != nil {
			s.logger.Warn("failed to remove task files", "task_id", id, "error", err)
		}
	}
	return nil
}

func (s *ProjectService) AddMiniTask(ctx context.Context, taskID uuid.UUID, req models.CreateMiniTaskRequest) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	mini := append(task.MiniTasks, models.MiniTask{
		ID:    uuid.New(),
		Title: strings.TrimSpace(req.Title),
		Notes: req.Notes,
	})
	return s.store.SaveMiniTasks(ctx, taskID, mini)
}

// UpdateMiniTask toggles or edits one checklist entry.
func (s *ProjectService) UpdateMiniTask(ctx context.Context, taskID, miniTaskID uuid.UUID, req models.UpdateMiniTaskRequest) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	found := false
	mini := make([]models.MiniTask, len(task.MiniTasks))
	copy(mini, task.MiniTasks)
	for i := range mini {
		if mini[i].ID != miniTaskID {
			continue
		}
		found = true
		if req.Title != nil {
			mini[i].Title = strings.TrimSpace(*req.Title)
		}
		if req.Completed != nil {
			mini[i].Completed = *req.Completed
		}
		if req.Notes != nil {
			mini[i].Notes = *req.Notes
		}
	}
	if !found {
		return nil, ErrMiniTaskNotFound
	}
	return s.store.SaveMiniTasks(ctx, taskID, mini)
}

func (s *ProjectService) AttachDocument(ctx context.Context, taskID uuid.UUID, fh *multipart.FileHeader) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	doc, err := s.files.Save(ctx, taskPrefix(task), fh, false)
	if err != nil {
		return nil, err
	}
	out, err := s.store.AppendTaskDocument(ctx, taskID, doc)
	if err != nil {
		s.files.Discard(ctx, doc)
		return nil, err
	}
	return out, nil
}

// DocumentURL signs a download link for the task document at index.
func (s *ProjectService) DocumentURL(ctx context.Context, taskID uuid.UUID, index int) (string, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(task.Documents) {
		return "", models.ErrNotFound
	}
	return s.files.SignedURL(ctx, task.Documents[index].Path)
}

func taskPrefix(task *models.Task) string {
	return projectPrefix(task.ProjectID, "tasks/"+task.ID.String())
}
