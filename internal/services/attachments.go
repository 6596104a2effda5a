package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

const MaxUploadSize = 25 << 20

// FileStore is implemented by supabase.StorageClient and objectstore.Client.
type FileStore interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader, size int64) (string, error)
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, path string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// AttachmentService uploads task documents, comment attachments and
// moodboard images.
type AttachmentService struct {
	store  FileStore
	logger *slog.Logger
}

func NewAttachmentService(store FileStore, logger *slog.Logger) *AttachmentService {
	return &AttachmentService{store: store, logger: logger}
}

// Save uploads fh under prefix. With imagesOnly set, anything that does not
// sniff as an image is rejected.
func (s *AttachmentService) Save(ctx context.Context, prefix string, fh *multipart.FileHeader, imagesOnly bool) (models.Attachment, error) {
	if fh == nil {
		return models.Attachment{}, ErrMissingFile
	}
	if fh.Size > MaxUploadSize {
		return models.Attachment{}, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return models.Attachment{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return models.Attachment{}, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	kind := models.AttachmentDocument
	if strings.HasPrefix(contentType, "image/") {
		kind = models.AttachmentImage
	} else if imagesOnly {
		return models.Attachment{}, ErrUnsupportedType
	}

	name := SafeFilename(fh.Filename)
	path := fmt.Sprintf("%s/%s-%s", strings.Trim(prefix, "/"), uuid.NewString()[:8], name)

	body := io.MultiReader(bytes.NewReader(head), f)
	url, err := s.store.Upload(ctx, path, contentType, body, fh.Size)
	if err != nil {
		return models.Attachment{}, err
	}

	s.logger.Info("stored attachment", "path", path, "size", fh.Size, "content_type", contentType)

	return models.Attachment{
		Name:        fh.Filename,
		Path:        path,
		URL:         url,
		ContentType: contentType,
		Size:        fh.Size,
		Kind:        kind,
	}, nil
}

// Discard deletes a file whose record could not be saved. Failures are
// logged and swallowed so the caller reports the original error.
func (s *AttachmentService) Discard(ctx context.Context, att models.Attachment) {
	if err := s.store.Delete(ctx, att.Path); err != nil {
		s.logger.Warn("failed to remove orphaned upload", "path", att.Path, "error", err)
	}
}

// SignedURL returns a short-lived download link for a stored file.
func (s *AttachmentService) SignedURL(ctx context.Context, path string) (string, error) {
	return s.store.SignedURL(ctx, path, 15*time.Minute)
}

// Remove deletes every stored file under prefix.
func (s *AttachmentService) Remove(ctx context.Context, prefix string) error {
	return s.store.DeletePrefix(ctx, prefix)
}

// SafeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-].
func SafeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "file"
	}
	return base
}
