package supabase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient stores attachments in a Supabase Storage bucket.
type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) *StorageClient {
	baseURL := strings.TrimRight(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// Upload writes the object at path and returns its public URL.
func (s *StorageClient) Upload(ctx context.Context, path, contentType string, r io.Reader, _ int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	upsert := true
	_, err := s.client.UploadFile(s.bucket, path, r, storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.PublicURL(path), nil
}

func (s *StorageClient) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, path)
}

func (s *StorageClient) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resp, err := s.client.CreateSignedUrl(s.bucket, path, int(ttl.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to sign url: %w", err)
	}
	if strings.HasPrefix(resp.SignedURL, "http") {
		return resp.SignedURL, nil
	}
	return s.baseURL + "/storage/v1" + resp.SignedURL, nil
}

func (s *StorageClient) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{path}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DeletePrefix removes every object under prefix, such as all files of a
// deleted task.
func (s *StorageClient) DeletePrefix(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) > 0 {
		paths := make([]string, len(files))
		for i, file := range files {
			paths[i] = strings.TrimSuffix(prefix, "/") + "/" + file.Name
		}
		if _, err = s.client.RemoveFile(s.bucket, paths); err != nil {
			return fmt.Errorf("failed to delete files: %w", err)
		}
	}

	return nil
}
