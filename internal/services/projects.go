package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

type ProjectStore interface {
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)

	CreateProject(ctx context.Context, p *models.Project) (*models.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjectsPage(ctx context.Context, clientID uuid.UUID, cursor string, limit int) ([]models.Project, string, error)
	UpdateProject(ctx context.Context, id uuid.UUID, req models.UpdateProjectRequest) (*models.Project, error)
	UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) (*models.Project, error)

	CreateTask(ctx context.Context, t *models.Task) (*models.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context, projectID uuid.UUID) ([]models.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus) (*models.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	SaveMiniTasks(ctx context.Context, taskID uuid.UUID, miniTasks []models.MiniTask) (*models.Task, error)
	AppendTaskDocument(ctx context.Context, taskID uuid.UUID, doc models.Attachment) (*models.Task, error)

	CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error)
	ListComments(ctx context.Context, projectID uuid.UUID) ([]models.Comment, error)

	CreateMoodboardItem(ctx context.Context, item *models.MoodboardItem) (*models.MoodboardItem, error)
	GetMoodboardItem(ctx context.Context, id uuid.UUID) (*models.MoodboardItem, error)
	ListMoodboard(ctx context.Context, projectID uuid.UUID) ([]models.MoodboardItem, error)
	UpdateMoodboardPosition(ctx context.Context, id uuid.UUID, x, y float64) (*models.MoodboardItem, error)
}

// ProjectService manages projects under a client and everything that
// hangs off a project: tasks, checklists, comments and the moodboard.
type ProjectService struct {
	store  ProjectStore
	files  *AttachmentService
	logger *slog.Logger
}

func NewProjectService(store ProjectStore, files *AttachmentService, logger *slog.Logger) *ProjectService {
	return &ProjectService{store: store, files: files, logger: logger}
}

// Create adds a project to an existing client. A missing client yields
// models.ErrNotFound.
func (s *ProjectService) Create(ctx context.Context, clientID, createdBy uuid.UUID, req models.CreateProjectRequest) (*models.Project, error) {
	status := models.ProjectStatus(req.Status)
	if status == "" {
		status = models.ProjectSourcing
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &models.Project{
		ID:          uuid.New(),
		ClientID:    clientID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		Deadline:    req.Deadline,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	out, err := s.store.CreateProject(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project created", "project_id", out.ID, "client_id", clientID)
	return out, nil
}

// Get returns the project with its tasks.
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Tasks = tasks
	return p, nil
}

func (s *ProjectService) ListPage(ctx context.Context, clientID uuid.UUID, cursor string, limit int) (*models.ProjectPage, error) {
	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	projects, next, err := s.store.ListProjectsPage(ctx, clientID, cursor, limit)
	if err != nil {
		return nil, err
	}
	return &models.ProjectPage{Projects: projects, NextCursor: next}, nil
}

func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req models.UpdateProjectRequest) (*models.Project, error) {
	return s.store.UpdateProject(ctx, id, req)
}

func (s *ProjectService) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*models.Project, error) {
	status := models.ProjectStatus(raw)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.store.UpdateProjectStatus(ctx, id, status)
}

func projectPrefix(projectID uuid.UUID, area string) string {
	return fmt.Sprintf("projects/%s/%s", projectID, area)
}
