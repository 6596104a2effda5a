package supabase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"agency-portal/internal/models"
)

func (d *DatabaseClient) CreateClient(ctx context.Context, c *models.Client) (*models.Client, error) {
	var out models.Client
	err := d.queryDoc(ctx, &out, `
		INSERT INTO clients AS t (id, name, email, phone, description, status, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING row_to_json(t)
	`, c.ID, c.Name, c.Email, c.Phone, c.Description, c.Status, c.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var out models.Client
	if err := d.queryDoc(ctx, &out, `SELECT row_to_json(t) FROM clients t WHERE t.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &out, nil
}

// ListClients returns clients newest first. An empty status lists all.
func (d *DatabaseClient) ListClients(ctx context.Context, status models.ClientStatus) ([]models.Client, error) {
	query := `SELECT row_to_json(t) FROM clients t ORDER BY t.created_at DESC, t.id DESC`
	args := []any{}
	if status != "" {
		query = `SELECT row_to_json(t) FROM clients t WHERE t.status = $1 ORDER BY t.created_at DESC, t.id DESC`
		args = append(args, string(status))
	}

	clients, err := queryDocs[models.Client](ctx, d.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (d *DatabaseClient) UpdateClient(ctx context.Context, id uuid.UUID, req models.UpdateClientRequest) (*models.Client, error) {
	var out models.Client
	err := d.queryDoc(ctx, &out, `
		UPDATE clients AS t SET
			name = COALESCE($2, t.name),
			email = COALESCE($3, t.email),
			phone = COALESCE($4, t.phone),
			description = COALESCE($5, t.description)
		WHERE t.id = $1
		RETURNING row_to_json(t)
	`, id, req.Name, req.Email, req.Phone, req.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return &out, nil
}

func (d *DatabaseClient) UpdateClientStatus(ctx context.Context, id uuid.UUID, status models.ClientStatus) (*models.Client, error) {
	var out models.Client
	err := d.queryDoc(ctx, &out, `
		UPDATE clients AS t SET status = $2 WHERE t.id = $1 RETURNING row_to_json(t)
	`, id, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to update client status: %w", err)
	}
	return &out, nil
}
