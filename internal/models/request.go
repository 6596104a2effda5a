package models

import "time"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@agency.com"`
	Password string `json:"password" binding:"required"`
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type AcceptInviteRequest struct {
	InviteID string `json:"invite_id" binding:"required"`
	Secret   string `json:"secret" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateClientRequest struct {
	Name        string `json:"name" binding:"required" example:"Acme"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
	// Status defaults to Active.
	Status string `json:"status" example:"Active"`
}

type UpdateClientRequest struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	Description *string `json:"description,omitempty"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

type CreateProjectRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status" example:"Sourcing"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

type UpdateProjectRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status" example:"Todo"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type CreateMiniTaskRequest struct {
	Title string `json:"title" binding:"required"`
	Notes string `json:"notes"`
}

type UpdateMiniTaskRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type MoodboardPositionRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

type PermissionsRequest struct {
	Permissions map[string]AccessLevel `json:"permissions" binding:"required"`
}

type InvoiceItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	Rate        float64 `json:"rate" binding:"gte=0"`
}

// CreateInvoiceRequest carries no totals; they are derived from the items.
type CreateInvoiceRequest struct {
	ClientID  string               `json:"client_id" binding:"required"`
	ProjectID string               `json:"project_id,omitempty"`
	Items     []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	TaxRate   float64              `json:"tax_rate" binding:"gte=0,lte=100" example:"10"`
	IssueDate *time.Time           `json:"issue_date,omitempty"`
	DueDate   time.Time            `json:"due_date" binding:"required"`
	Notes     string               `json:"notes"`
	Terms     string               `json:"terms"`
}
