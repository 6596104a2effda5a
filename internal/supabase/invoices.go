package supabase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

// CreateInvoice stores inv as given; totals must already be computed.
// A taken invoice number yields an error matching models.ErrDuplicate.
func (d *DatabaseClient) CreateInvoice(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	items, err := jsonParam(nonNil(inv.Items))
	if err != nil {
		return nil, err
	}

	var out models.Invoice
	err = d.queryDoc(ctx, &out, `
		INSERT INTO invoices AS t (id, number, client_id, project_id, status, items, tax_rate,
			subtotal, tax, total, issue_date, due_date, notes, terms, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING row_to_json(t)
	`, inv.ID, inv.Number, inv.ClientID, inv.ProjectID, string(inv.Status), items, inv.TaxRate,
		inv.Subtotal, inv.Tax, inv.Total, inv.IssueDate, inv.DueDate, inv.Notes, inv.Terms, inv.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var out models.Invoice
	if err := d.queryDoc(ctx, &out, `SELECT row_to_json(t) FROM invoices t WHERE t.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &out, nil
}

// ListInvoices returns invoices newest first, optionally for one client.
func (d *DatabaseClient) ListInvoices(ctx context.Context, clientID *uuid.UUID) ([]models.Invoice, error) {
	query := `SELECT row_to_json(t) FROM invoices t ORDER BY t.created_at DESC, t.id DESC`
	var args []any
	if clientID != nil {
		query = `SELECT row_to_json(t) FROM invoices t WHERE t.client_id = $1 ORDER BY t.created_at DESC, t.id DESC`
		args = append(args, *clientID)
	}

	invoices, err := queryDocs[models.Invoice](ctx, d.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (d *DatabaseClient) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error) {
	var out models.Invoice
	err := d.queryDoc(ctx, &out, `
		UPDATE invoices AS t SET status = $2 WHERE t.id = $1 RETURNING row_to_json(t)
	`, id, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}
	return &out, nil
}
