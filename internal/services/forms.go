package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

type SubmissionStore interface {
	CreateSubmission(ctx context.Context, s *models.FormSubmission) (*models.FormSubmission, error)
}

// FormValidator is implemented by *forms.Validator.
type FormValidator interface {
	Validate(formType string, payload map[string]any) error
}

// FormService stores marketing form submissions. Notification happens
// asynchronously once the insert shows up on the change feed.
type FormService struct {
	store     SubmissionStore
	validator FormValidator
	logger    *slog.Logger
}

func NewFormService(store SubmissionStore, validator FormValidator, logger *slog.Logger) *FormService {
	return &FormService{store: store, validator: validator, logger: logger}
}

func (s *FormService) Submit(ctx context.Context, formType string, payload map[string]any) (*models.FormSubmission, error) {
	if err := s.validator.Validate(formType, payload); err != nil {
		return nil, err
	}

	out, err := s.store.CreateSubmission(ctx, &models.FormSubmission{
		ID:        uuid.New(),
		FormType:  formType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("form submitted", "form_type", formType, "submission_id", out.ID)
	return out, nil
}
