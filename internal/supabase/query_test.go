package supabase_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-portal/internal/livesync"
	"agency-portal/internal/supabase"
)

func TestBuildQuery_FiltersAndOrder(t *testing.T) {
	q := livesync.NewQuery("clients").Where("status", "Active").OrderByDesc("created_at").WithLimit(20)

	sql, args, err := supabase.BuildQuery(q)

	require.NoError(t, err)
	assert.Equal(t, "SELECT row_to_json(t) FROM clients t WHERE t.status = $1 ORDER BY t.created_at DESC, t.id DESC LIMIT $2", sql)
	assert.Equal(t, []any{"Active", 20}, args)
}

func TestBuildQuery_Defaults(t *testing.T) {
	sql, args, err := supabase.BuildQuery(livesync.NewQuery("invoices"))

	require.NoError(t, err)
	assert.Equal(t, "SELECT row_to_json(t) FROM invoices t ORDER BY t.created_at ASC, t.id ASC LIMIT $1", sql)
	assert.Equal(t, []any{500}, args)
}

func TestBuildQuery_MultipleFilters(t *testing.T) {
	q := livesync.NewQuery("tasks").Where("project_id", "p1").Where("status", "Todo")

	sql, args, err := supabase.BuildQuery(q)

	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE t.project_id = $1 AND t.status = $2")
	assert.Equal(t, []any{"p1", "Todo", 500}, args)
}

func TestBuildQuery_RejectsUnknownNames(t *testing.T) {
	_, _, err := supabase.BuildQuery(livesync.NewQuery("invites"))
	assert.Error(t, err)

	_, _, err = supabase.BuildQuery(livesync.NewQuery("clients").Where("name; DROP TABLE clients", "x"))
	assert.Error(t, err)

	_, _, err = supabase.BuildQuery(livesync.NewQuery("clients").OrderByDesc("secret"))
	assert.Error(t, err)
}

func TestCursor_RoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 4, 10, 11, 12, 345678000, time.UTC)
	id := uuid.New()

	gotAt, gotID, err := supabase.DecodeCursor(supabase.EncodeCursor(at, id))

	require.NoError(t, err)
	assert.True(t, at.Equal(gotAt))
	assert.Equal(t, id, gotID)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	for _, c := range []string{"%%%", "bm9waXBl", supabase.EncodeCursor(time.Now(), uuid.Nil)[:10]} {
		_, _, err := supabase.DecodeCursor(c)
		assert.ErrorIs(t, err, supabase.ErrInvalidCursor, c)
	}
}
