package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-portal/internal/livesync"
	"agency-portal/internal/models"
	"agency-portal/internal/services"
)

func TestClientService_CreateDefaultsToActive(t *testing.T) {
	store := newMemStore()
	svc := services.NewClientService(store, nil, discardLogger())

	c, err := svc.Create(context.Background(), uuid.New(), models.CreateClientRequest{Name: " Acme ", Email: "ops@acme.test"})

	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, models.ClientActive, c.Status)
	assert.NotEqual(t, uuid.Nil, c.ID)
}

func TestClientService_RejectsUnknownStatus(t *testing.T) {
	svc := services.NewClientService(newMemStore(), nil, discardLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), models.CreateClientRequest{Name: "Acme", Email: "a@b.test", Status: "Archived"})
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	_, err = svc.List(ctx, "Archived")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, uuid.New(), "active")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)
}

func TestClientService_ListFilter(t *testing.T) {
	store := newMemStore()
	svc := services.NewClientService(store, nil, discardLogger())
	ctx := context.Background()
	owner := uuid.New()

	for _, tc := range []struct{ name, status string }{
		{"Acme", "Active"}, {"Globex", "On Hold"}, {"Initech", "Active"}, {"Umbrella", "Completed"},
	} {
		_, err := svc.Create(ctx, owner, models.CreateClientRequest{Name: tc.name, Email: "x@y.test", Status: tc.status})
		require.NoError(t, err)
	}

	active, err := svc.List(ctx, "Active")
	require.NoError(t, err)
	assert.Equal(t, []string{"Initech", "Acme"}, clientNames(active))

	all, err := svc.List(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, clientNames(all), clientNames(none))
}

// Acme is created Active, shows up under the Active filter, then moves to
// Completed and leaves the Active view.
func TestClientLifecycle_LiveViews(t *testing.T) {
	store := newMemStore()
	mgr := livesync.NewManager(store, discardLogger())
	store.mgr = mgr
	t.Cleanup(mgr.Close)

	svc := services.NewClientService(store, mgr, discardLogger())
	ctx := context.Background()

	active := watchClients(t, mgr, "Active")
	completed := watchClients(t, mgr, "Completed")

	acme, err := svc.Create(ctx, uuid.New(), models.CreateClientRequest{Name: "Acme", Email: "ops@acme.test"})
	require.NoError(t, err)

	waitClients(t, active, func(cs []models.Client) bool { return hasClient(cs, "Acme", "") })

	_, err = svc.UpdateStatus(ctx, acme.ID, "Completed")
	require.NoError(t, err)

	waitClients(t, active, func(cs []models.Client) bool { return !hasClient(cs, "Acme", "") })
	waitClients(t, completed, func(cs []models.Client) bool { return hasClient(cs, "Acme", "") })
}

func TestClientService_FailedCreateIsWithdrawn(t *testing.T) {
	store := newMemStore()
	store.failCreate = errors.New("connection reset")
	mgr := livesync.NewManager(store, discardLogger())
	store.mgr = mgr
	t.Cleanup(mgr.Close)

	svc := services.NewClientService(store, mgr, discardLogger())
	all := watchClients(t, mgr, "")

	_, err := svc.Create(context.Background(), uuid.New(), models.CreateClientRequest{Name: "Ghost", Email: "g@h.test"})
	require.Error(t, err)

	waitClients(t, all, func(cs []models.Client) bool { return !hasClient(cs, "Ghost", "") })
	assert.Equal(t, 0, mgr.PendingCount("clients"))
}

func watchClients(t *testing.T, mgr *livesync.Manager, status string) <-chan []models.Client {
	t.Helper()
	q := livesync.NewQuery("clients").OrderByDesc("created_at")
	if status != "" {
		q = q.Where("status", status)
	}
	ch := make(chan []models.Client, 64)
	unsub := livesync.Watch(mgr, context.Background(), q, func(cs []models.Client) { ch <- cs }, nil)
	t.Cleanup(unsub)
	return ch
}

func waitClients(t *testing.T, ch <-chan []models.Client, cond func([]models.Client) bool) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case cs := <-ch:
			if cond(cs) {
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for client snapshot")
		}
	}
}

func hasClient(cs []models.Client, name, sync string) bool {
	for _, c := range cs {
		if c.Name == name && (sync == "" || c.SyncState == sync) {
			return true
		}
	}
	return false
}

func clientNames(cs []models.Client) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}
