package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

var ErrEmptyComment = errors.New("comment needs text or an attachment")

// AddComment posts to the project's thread. fh is optional.
func (s *ProjectService) AddComment(ctx context.Context, projectID, authorID uuid.UUID, authorEmail, content string, fh *multipart.FileHeader) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" && fh == nil {
		return nil, ErrEmptyComment
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	attachments := []models.Attachment{}
	if fh != nil {
		att, err := s.files.Save(ctx, projectPrefix(projectID, "comments"), fh, false)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}

	comment, err := s.store.CreateComment(ctx, &models.Comment{
		ID:          uuid.New(),
		ProjectID:   projectID,
		AuthorID:    authorID,
		AuthorEmail: authorEmail,
		Content:     content,
		Attachments: attachments,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		for _, att := range attachments {
			s.files.Discard(ctx, att)
		}
		return nil, err
	}
	return comment, nil
}

func (s *ProjectService) ListComments(ctx context.Context, projectID uuid.UUID) ([]models.Comment, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, projectID)
}

// AddMoodboardImage pins an image to the project's moodboard at (x, y).
func (s *ProjectService) AddMoodboardImage(ctx context.Context, projectID, createdBy uuid.UUID, caption string, x, y float64, fh *multipart.FileHeader) (*models.MoodboardItem, error) {
	if fh == nil {
		return nil, ErrMissingFile
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	img, err := s.files.Save(ctx, projectPrefix(projectID, "moodboard"), fh, true)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item, err := s.store.CreateMoodboardItem(ctx, &models.MoodboardItem{
		ID:        uuid.New(),
		ProjectID: projectID,
		Image:     img,
		Caption:   strings.TrimSpace(caption),
		X:         x,
		Y:         y,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.files.Discard(ctx, img)
		return nil, err
	}
	return item, nil
}

func (s *ProjectService) ListMoodboard(ctx context.Context, projectID uuid.UUID) ([]models.MoodboardItem, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListMoodboard(ctx, projectID)
}

func (s *ProjectService) GetMoodboardItem(ctx context.Context, id uuid.UUID) (*models.MoodboardItem, error) {
	return s.store.GetMoodboardItem(ctx, id)
}

// MoveMoodboardItem persists a drop position. Last write wins.
func (s *ProjectService) MoveMoodboardItem(ctx context.Context, id uuid.UUID, x, y float64) (*models.MoodboardItem, error) {
	return s.store.UpdateMoodboardPosition(ctx, id, x, y)
}
