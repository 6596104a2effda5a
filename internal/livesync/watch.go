package livesync

import (
	"context"
	"encoding/json"
	"fmt"
)

// Decode converts documents into typed records through their JSON form.
func Decode[T any](docs []Document) ([]T, error) {
	raw, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode documents: %w", err)
	}
	out := make([]T, 0, len(docs))
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return out, nil
}

// Watch is Subscribe with typed snapshots. Decode failures are reported to
// onError.
func Watch[T any](m *Manager, ctx context.Context, q Query, onData func([]T), onError func(error)) Unsubscribe {
	return m.Subscribe(ctx, q, func(docs []Document) {
		records, err := Decode[T](docs)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onData(records)
	}, onError)
}
