package supabase

import (
	"context"
	"fmt"
	"strings"

	"agency-portal/internal/livesync"
)

const maxQueryLimit = 500

type collectionSpec struct {
	table   string
	filters []string
	orders  []string
}

// syncedCollections are the tables live queries may read, with the
// columns they may filter and sort on.
var syncedCollections = map[string]collectionSpec{
	"clients": {
		table:   "clients",
		filters: []string{"id", "status", "owner_id", "email"},
		orders:  []string{"created_at", "updated_at", "name"},
	},
	"projects": {
		table:   "projects",
		filters: []string{"id", "client_id", "status", "created_by"},
		orders:  []string{"created_at", "updated_at", "deadline", "title"},
	},
	"tasks": {
		table:   "tasks",
		filters: []string{"id", "project_id", "status", "assignee_id"},
		orders:  []string{"created_at", "updated_at", "due_date"},
	},
	"comments": {
		table:   "comments",
		filters: []string{"project_id", "author_id"},
		orders:  []string{"created_at"},
	},
	"moodboard_items": {
		table:   "moodboard_items",
		filters: []string{"project_id"},
		orders:  []string{"created_at", "updated_at"},
	},
	"invoices": {
		table:   "invoices",
		filters: []string{"id", "client_id", "project_id", "status", "owner_id"},
		orders:  []string{"created_at", "due_date", "number"},
	},
	"users": {
		table:   "users",
		filters: []string{"id", "role", "email"},
		orders:  []string{"created_at", "email"},
	},
}

// Query implements livesync.Source.
func (d *DatabaseClient) Query(ctx context.Context, q livesync.Query) ([]livesync.Document, error) {
	query, args, err := BuildQuery(q)
	if err != nil {
		return nil, err
	}
	docs, err := queryDocs[livesync.Document](ctx, d.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.Collection, err)
	}
	return docs, nil
}

// BuildQuery turns a live query into SQL. Collection and column names are
// checked against syncedCollections; values are always bound parameters.
func BuildQuery(q livesync.Query) (string, []any, error) {
	coll, ok := syncedCollections[q.Collection]
	if !ok {
		return "", nil, fmt.Errorf("collection %q is not synced", q.Collection)
	}

	var b strings.Builder
	b.WriteString("SELECT row_to_json(t) FROM ")
	b.WriteString(coll.table)
	b.WriteString(" t")

	args := make([]any, 0, len(q.Filters)+1)
	for i, f := range q.Filters {
		if !contains(coll.filters, f.Field) {
			return "", nil, fmt.Errorf("cannot filter %s on %q", q.Collection, f.Field)
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, fmt.Sprint(f.Value))
		fmt.Fprintf(&b, "t.%s = $%d", f.Field, len(args))
	}

	order := q.OrderBy
	if order == "" {
		order = "created_at"
	}
	if !contains(coll.orders, order) {
		return "", nil, fmt.Errorf("cannot order %s by %q", q.Collection, order)
	}
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	fmt.Fprintf(&b, " ORDER BY t.%s %s, t.id %s", order, dir, dir)

	limit := q.Limit
	if limit <= 0 || limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	args = append(args, limit)
	fmt.Fprintf(&b, " LIMIT $%d", len(args))

	return b.String(), args, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
