package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectSourcing    ProjectStatus = "Sourcing"
	ProjectInProgress  ProjectStatus = "In Progress"
	ProjectUnderReview ProjectStatus = "Under Review"
	ProjectCompleted   ProjectStatus = "Completed"
	ProjectOnHold      ProjectStatus = "On Hold"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectSourcing, ProjectInProgress, ProjectUnderReview, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

type Project struct {
	ID          uuid.UUID     `json:"id"`
	ClientID    uuid.UUID     `json:"client_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	CreatedBy   uuid.UUID     `json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Tasks       []Task        `json:"tasks,omitempty"`
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "Todo"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID    `json:"id"`
	ProjectID   uuid.UUID    `json:"project_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	AssigneeID  *uuid.UUID   `json:"assignee_id,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	MiniTasks   []MiniTask   `json:"mini_tasks"`
	Documents   []Attachment `json:"documents"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// MiniTask is a checklist entry embedded in its parent task.
type MiniTask struct {
	ID        uuid.UUID    `json:"id"`
	Title     string       `json:"title"`
	Completed bool         `json:"completed"`
	Notes     string       `json:"notes,omitempty"`
	Files     []Attachment `json:"files,omitempty"`
}

const (
	AttachmentImage    = "image"
	AttachmentDocument = "document"
)

type Attachment struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Kind        string `json:"kind"`
}

type Comment struct {
	ID          uuid.UUID    `json:"id"`
	ProjectID   uuid.UUID    `json:"project_id"`
	AuthorID    uuid.UUID    `json:"author_id"`
	AuthorEmail string       `json:"author_email"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"created_at"`
}

type MoodboardItem struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID uuid.UUID  `json:"project_id"`
	Image     Attachment `json:"image"`
	Caption   string     `json:"caption"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
