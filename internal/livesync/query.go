// Package livesync keeps subscribers current with the contents of a
// collection query. Every change to a watched collection re-runs the query
// and delivers a full snapshot.
package livesync

import (
	"context"
	"fmt"
)

const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
	// OpResync asks every subscription to re-query, e.g. after the change
	// feed reconnected and may have missed events.
	OpResync = "RESYNC"
)

// Document is a stored record rendered as a JSON object.
type Document map[string]any

func (d Document) ID() string {
	if v, ok := d["id"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// ChangeEvent describes one row change. An empty Collection addresses
// every collection.
type ChangeEvent struct {
	Collection string `json:"collection"`
	Op         string `json:"op"`
	ID         string `json:"id"`
	ParentID   string `json:"parent_id,omitempty"`
}

type Filter struct {
	Field string
	Value any
}

// Query selects documents from one collection by field equality.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

func NewQuery(collection string) Query {
	return Query{Collection: collection}
}

func (q Query) Where(field string, value any) Query {
	filters := make([]Filter, len(q.Filters), len(q.Filters)+1)
	copy(filters, q.Filters)
	q.Filters = append(filters, Filter{Field: field, Value: value})
	return q
}

func (q Query) OrderByDesc(field string) Query {
	q.OrderBy = field
	q.Descending = true
	return q
}

func (q Query) OrderByAsc(field string) Query {
	q.OrderBy = field
	q.Descending = false
	return q
}

func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

// Matches reports whether doc satisfies every equality filter.
func (q Query) Matches(doc Document) bool {
	for _, f := range q.Filters {
		v, ok := doc[f.Field]
		if !ok {
			return false
		}
		if fmt.Sprint(v) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}

// Source runs a query against the backing store.
type Source interface {
	Query(ctx context.Context, q Query) ([]Document, error)
}
