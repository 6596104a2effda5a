package models

import "github.com/google/uuid"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

type IdentityResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type LoginResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresAt    int64            `json:"expires_at"`
	User         IdentityResponse `json:"user"`
}

type InviteResponse struct {
	Invite Invite `json:"invite"`
	Link   string `json:"link"`
}

type ClientListResponse struct {
	Clients []Client `json:"clients"`
}

type ProjectPage struct {
	Projects   []Project `json:"projects"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

type TaskListResponse struct {
	Tasks []Task `json:"tasks"`
}

type CommentListResponse struct {
	Comments []Comment `json:"comments"`
}

type MoodboardResponse struct {
	Items []MoodboardItem `json:"items"`
}

type TeamResponse struct {
	Members []UserProfile `json:"members"`
}

type InvoiceListResponse struct {
	Invoices []Invoice `json:"invoices"`
}

type FormSubmissionResponse struct {
	ID       uuid.UUID `json:"id"`
	FormType string    `json:"form_type"`
	Status   string    `json:"status"`
}
