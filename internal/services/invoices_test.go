package services_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-portal/internal/invoice"
	"agency-portal/internal/models"
	"agency-portal/internal/pdf"
	"agency-portal/internal/services"
)

func seedClient(t *testing.T, store *memStore) *models.Client {
	t.Helper()
	c, err := store.CreateClient(context.Background(), &models.Client{
		ID:     uuid.New(),
		Name:   "Acme",
		Email:  "billing@acme.test",
		Status: models.ClientActive,
	})
	require.NoError(t, err)
	return c
}

func invoiceRequest(clientID uuid.UUID) models.CreateInvoiceRequest {
	return models.CreateInvoiceRequest{
		ClientID: clientID.String(),
		Items: []models.InvoiceItemRequest{
			{Description: "Design", Quantity: 2, Rate: 50},
			{Description: "Hosting", Quantity: 1, Rate: 100},
		},
		TaxRate: 10,
		DueDate: time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestInvoiceService_CreateComputesTotals(t *testing.T) {
	store := newMemStore()
	client := seedClient(t, store)
	svc := services.NewInvoiceService(store, pdf.Issuer{Name: "Agency"}, discardLogger())

	inv, err := svc.Create(context.Background(), uuid.New(), invoiceRequest(client.ID))

	require.NoError(t, err)
	assert.Equal(t, 200.0, inv.Subtotal)
	assert.Equal(t, 20.0, inv.Tax)
	assert.Equal(t, 220.0, inv.Total)
	assert.Equal(t, 100.0, inv.Items[0].Amount)
	assert.Equal(t, models.InvoiceDraft, inv.Status)
	assert.True(t, invoice.ValidNumber(inv.Number), inv.Number)
}

func TestInvoiceService_RegeneratesNumberOnCollision(t *testing.T) {
	store := newMemStore()
	client := seedClient(t, store)
	store.dupNumbers = 2
	svc := services.NewInvoiceService(store, pdf.Issuer{}, discardLogger())

	inv, err := svc.Create(context.Background(), uuid.New(), invoiceRequest(client.ID))

	require.NoError(t, err)
	assert.Equal(t, 3, store.invoiceWrites)
	assert.True(t, invoice.ValidNumber(inv.Number))
}

func TestInvoiceService_GivesUpAfterRepeatedCollisions(t *testing.T) {
	store := newMemStore()
	client := seedClient(t, store)
	store.dupNumbers = 100
	svc := services.NewInvoiceService(store, pdf.Issuer{}, discardLogger())

	_, err := svc.Create(context.Background(), uuid.New(), invoiceRequest(client.ID))

	assert.ErrorIs(t, err, services.ErrNumberExhausted)
	assert.Equal(t, 5, store.invoiceWrites)
}

func TestInvoiceService_CreateValidation(t *testing.T) {
	store := newMemStore()
	client := seedClient(t, store)
	svc := services.NewInvoiceService(store, pdf.Issuer{}, discardLogger())
	ctx := context.Background()

	req := invoiceRequest(client.ID)
	req.Items = nil
	_, err := svc.Create(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, invoice.ErrNoItems)

	req = invoiceRequest(client.ID)
	req.TaxRate = 120
	_, err = svc.Create(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, invoice.ErrInvalidTaxRate)

	req = invoiceRequest(client.ID)
	req.TaxRate = 7.125
	_, err = svc.Create(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, invoice.ErrInvalidTaxRate)

	req = invoiceRequest(uuid.New())
	_, err = svc.Create(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, models.ErrNotFound)

	req = invoiceRequest(client.ID)
	req.ClientID = "acme"
	_, err = svc.Create(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, services.ErrInvalidID)

	assert.Equal(t, 0, store.invoiceWrites)
}

func TestInvoiceService_Render(t *testing.T) {
	store := newMemStore()
	client := seedClient(t, store)
	svc := services.NewInvoiceService(store, pdf.Issuer{Name: "Agency", Currency: "$"}, discardLogger())
	ctx := context.Background()

	inv, err := svc.Create(ctx, uuid.New(), invoiceRequest(client.ID))
	require.NoError(t, err)

	data, filename, err := svc.Render(ctx, inv.ID)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, "invoice-"+inv.Number+".pdf", filename)

	_, _, err = svc.Render(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestInvoiceService_RederivesStoredTotals(t *testing.T) {
	store := newMemStore()
	client := seedClient(t, store)
	svc := services.NewInvoiceService(store, pdf.Issuer{Name: "Agency", Currency: "$"}, discardLogger())
	ctx := context.Background()

	inv, err := svc.Create(ctx, uuid.New(), invoiceRequest(client.ID))
	require.NoError(t, err)

	store.mu.Lock()
	drifted := store.invoices[inv.ID]
	drifted.Subtotal, drifted.Tax, drifted.Total = 1, 2, 999
	store.invoices[inv.ID] = drifted
	store.mu.Unlock()

	got, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.Subtotal)
	assert.Equal(t, 20.0, got.Tax)
	assert.Equal(t, 220.0, got.Total)

	listed, err := svc.List(ctx, &client.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 220.0, listed[0].Total)

	data, _, err := svc.Render(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestInvoiceService_ProjectMustBelongToClient(t *testing.T) {
	store := newMemStore()
	acme := seedClient(t, store)
	globex := seedClient(t, store)
	project := models.Project{ID: uuid.New(), ClientID: globex.ID, Title: "Rebrand"}
	store.projects = append(store.projects, project)
	svc := services.NewInvoiceService(store, pdf.Issuer{}, discardLogger())
	ctx := context.Background()

	req := invoiceRequest(acme.ID)
	req.ProjectID = project.ID.String()
	_, err := svc.Create(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, services.ErrProjectMismatch)
	assert.Equal(t, 0, store.invoiceWrites)

	req = invoiceRequest(globex.ID)
	req.ProjectID = project.ID.String()
	inv, err := svc.Create(ctx, uuid.New(), req)
	require.NoError(t, err)
	require.NotNil(t, inv.ProjectID)
	assert.Equal(t, project.ID, *inv.ProjectID)
}

func TestInvoiceService_UpdateStatus(t *testing.T) {
	store := newMemStore()
	client := seedClient(t, store)
	svc := services.NewInvoiceService(store, pdf.Issuer{}, discardLogger())
	ctx := context.Background()

	inv, err := svc.Create(ctx, uuid.New(), invoiceRequest(client.ID))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, inv.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, updated.Status)

	_, err = svc.UpdateStatus(ctx, inv.ID, "refunded")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)
}
