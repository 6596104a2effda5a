package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-portal/internal/config"
	"agency-portal/internal/livesync"
	"agency-portal/internal/models"
)

func TestProvision_MissingCredentials(t *testing.T) {
	cfg = &config.Config{}
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cmd := adminCmd()
	cmd.SetArgs([]string{"provision"})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_EMAIL and ADMIN_PASSWORD are required")
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestProvision_MissingSettings(t *testing.T) {
	cfg = &config.Config{}
	t.Setenv("ADMIN_EMAIL", "owner@agency.com")
	t.Setenv("ADMIN_PASSWORD", "s3cretpass")

	cmd := adminCmd()
	cmd.SetArgs([]string{"provision"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_SERVICE_ROLE_KEY")
}

func TestWatch_RejectsUnknownCollection(t *testing.T) {
	cfg = &config.Config{}

	cmd := watchCmd()
	cmd.SetArgs([]string{"projects"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown collection")
}

func TestWatch_StatusOnlyForClients(t *testing.T) {
	cfg = &config.Config{}

	cmd := watchCmd()
	cmd.SetArgs([]string{"invoices", "--status", "Active"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--status")
}

func TestWatch_RejectsUnknownStatus(t *testing.T) {
	cfg = &config.Config{}

	cmd := watchCmd()
	cmd.SetArgs([]string{"clients", "--status", "Archived"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown client status")
}

func TestResolveWatchTarget_ClientStatus(t *testing.T) {
	target, err := resolveWatchTarget("clients", "On Hold")
	require.NoError(t, err)
	assert.True(t, target.query.Matches(livesync.Document{"status": "On Hold"}))
	assert.False(t, target.query.Matches(livesync.Document{"status": "Active"}))

	target, err = resolveWatchTarget("clients", "all")
	require.NoError(t, err)
	assert.Empty(t, target.query.Filters)
}

func TestResolveWatchTarget_TeamExcludesAdmins(t *testing.T) {
	target, err := resolveWatchTarget("team", "")
	require.NoError(t, err)

	assert.True(t, target.query.Matches(livesync.Document{"email": "dev@agency.com", "role": models.RoleTeamMember}))
	assert.False(t, target.query.Matches(livesync.Document{"email": "owner@agency.com", "role": models.RoleAdmin}))
}

func TestWaitWatch_FeedFailure(t *testing.T) {
	feedErr := make(chan error, 1)
	feedErr <- errors.New("failed to listen on portal_changes: connection refused")

	err := waitWatch(context.Background(), make(chan struct{}), feedErr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "change feed stopped")
}

func TestWaitWatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	feedErr := make(chan error, 1)
	feedErr <- context.Canceled

	// Either ready case may win; both end the watch cleanly.
	assert.NoError(t, waitWatch(ctx, make(chan struct{}), feedErr))
}

func TestInvoiceRender_InvalidID(t *testing.T) {
	cfg = &config.Config{}

	cmd := invoiceCmd()
	cmd.SetArgs([]string{"render", "INV-1"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid invoice id")
}
