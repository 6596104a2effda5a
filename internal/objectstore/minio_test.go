package objectstore_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-portal/internal/objectstore"
)

func TestNewClient_DisabledWithoutEndpoint(t *testing.T) {
	c, err := objectstore.NewClient(objectstore.Config{})
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	ctx := context.Background()
	_, err = c.Upload(ctx, "a.txt", "text/plain", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, objectstore.ErrDisabled)
	_, err = c.SignedURL(ctx, "a.txt", time.Minute)
	assert.ErrorIs(t, err, objectstore.ErrDisabled)
	assert.ErrorIs(t, c.Delete(ctx, "a.txt"), objectstore.ErrDisabled)
	assert.ErrorIs(t, c.EnsureBucket(ctx), objectstore.ErrDisabled)
}

func TestObjectURL(t *testing.T) {
	c, err := objectstore.NewClient(objectstore.Config{
		Endpoint: "localhost:9000",
		Bucket:   "portal-files",
	})
	require.NoError(t, err)

	assert.True(t, c.Enabled())
	assert.Equal(t, "http://localhost:9000/portal-files/tasks/t1/brief.pdf", c.ObjectURL("tasks/t1/brief.pdf"))
}
