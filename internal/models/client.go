package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ClientStatus string

const (
	ClientActive    ClientStatus = "Active"
	ClientOnHold    ClientStatus = "On Hold"
	ClientCompleted ClientStatus = "Completed"
)

// StatusFilterAll disables status filtering on client listings.
const StatusFilterAll = "all"

func (s ClientStatus) Valid() bool {
	switch s {
	case ClientActive, ClientOnHold, ClientCompleted:
		return true
	}
	return false
}

type Client struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Description string       `json:"description"`
	Status      ClientStatus `json:"status"`
	OwnerID     uuid.UUID    `json:"owner_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	SyncState   string       `json:"_sync,omitempty"`
}

// FilterClientsByStatus returns the clients whose status equals filter, in
// their original order. "all" (or an empty filter) returns every client.
func FilterClientsByStatus(clients []Client, filter string) ([]Client, error) {
	if filter == "" || filter == StatusFilterAll {
		return clients, nil
	}
	status := ClientStatus(filter)
	if !status.Valid() {
		return nil, fmt.Errorf("unknown client status %q", filter)
	}

	filtered := make([]Client, 0, len(clients))
	for _, c := range clients {
		if c.Status == status {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}
