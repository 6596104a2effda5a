// Package objectstore keeps attachments in a self-hosted S3 compatible
// store (MinIO) for deployments that do not use Supabase Storage.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrDisabled is returned when no endpoint is configured.
var ErrDisabled = errors.New("object storage not configured")

type Config struct {
	Endpoint        string // e.g. "minio:9000"
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

type Client struct {
	mc      *minio.Client
	bucket  string
	baseURL string
	enabled bool
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return &Client{enabled: false}, nil
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return &Client{
		mc:      mc,
		bucket:  cfg.Bucket,
		baseURL: fmt.Sprintf("%s://%s", scheme, strings.TrimRight(cfg.Endpoint, "/")),
		enabled: true,
	}, nil
}

func (c *Client) Enabled() bool {
	return c.enabled
}

// EnsureBucket creates the bucket if it does not exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	if !c.enabled {
		return ErrDisabled
	}
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
}

// Upload stores the object and returns its URL. Pass size -1 when unknown.
func (c *Client) Upload(ctx context.Context, path, contentType string, r io.Reader, size int64) (string, error) {
	if !c.enabled {
		return "", ErrDisabled
	}
	_, err := c.mc.PutObject(ctx, c.bucket, path, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return c.ObjectURL(path), nil
}

func (c *Client) ObjectURL(path string) string {
	return c.baseURL + "/" + c.bucket + "/" + path
}

func (c *Client) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if !c.enabled {
		return "", ErrDisabled
	}
	u, err := c.mc.PresignedGetObject(ctx, c.bucket, path, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to sign url: %w", err)
	}
	return u.String(), nil
}

func (c *Client) Delete(ctx context.Context, path string) error {
	if !c.enabled {
		return ErrDisabled
	}
	return c.mc.RemoveObject(ctx, c.bucket, path, minio.RemoveObjectOptions{})
}

func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	if !c.enabled {
		return ErrDisabled
	}
	ch := c.mc.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	for obj := range ch {
		if obj.Err != nil {
			return obj.Err
		}
		if err := c.mc.RemoveObject(ctx, c.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	return nil
}
