package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// Invoice carries derived totals. Subtotal, Tax and Total are always
// recomputed from Items and TaxRate before the invoice is stored.
type Invoice struct {
	ID        uuid.UUID     `json:"id"`
	Number    string        `json:"number"`
	ClientID  uuid.UUID     `json:"client_id"`
	ProjectID *uuid.UUID    `json:"project_id,omitempty"`
	Status    InvoiceStatus `json:"status"`
	Items     []InvoiceItem `json:"items"`
	TaxRate   float64       `json:"tax_rate"`
	Subtotal  float64       `json:"subtotal"`
	Tax       float64       `json:"tax"`
	Total     float64       `json:"total"`
	IssueDate time.Time     `json:"issue_date"`
	DueDate   time.Time     `json:"due_date"`
	Notes     string        `json:"notes"`
	Terms     string        `json:"terms"`
	OwnerID   uuid.UUID     `json:"owner_id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
