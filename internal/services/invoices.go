package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agency-portal/internal/invoice"
	"agency-portal/internal/metrics"
	"agency-portal/internal/models"
	"agency-portal/internal/pdf"
)

// maxNumberAttempts bounds regeneration after an invoice number collision.
const maxNumberAttempts = 5

type InvoiceStore interface {
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	CreateInvoice(ctx context.Context, inv *models.Invoice) (*models.Invoice, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, clientID *uuid.UUID) ([]models.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error)
}

type InvoiceService struct {
	store  InvoiceStore
	issuer pdf.Issuer
	logger *slog.Logger
	now    func() time.Time
}

func NewInvoiceService(store InvoiceStore, issuer pdf.Issuer, logger *slog.Logger) *InvoiceService {
	return &InvoiceService{
		store:  store,
		issuer: issuer,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates the items, derives the totals and stores a draft
// invoice under a fresh number. Caller supplied totals are never used.
func (s *InvoiceService) Create(ctx context.Context, ownerID uuid.UUID, req models.CreateInvoiceRequest) (*models.Invoice, error) {
	items := make([]models.InvoiceItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = models.InvoiceItem{Description: it.Description, Quantity: it.Quantity, Rate: it.Rate}
	}
	if err := invoice.Validate(items, req.TaxRate); err != nil {
		return nil, err
	}

	clientID, err := ParseID("client_id", req.ClientID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	var projectID *uuid.UUID
	if req.ProjectID != "" {
		id, err := ParseID("project_id", req.ProjectID)
		if err != nil {
			return nil, err
		}
		project, err := s.store.GetProject(ctx, id)
		if err != nil {
			return nil, err
		}
		if project.ClientID != clientID {
			return nil, ErrProjectMismatch
		}
		projectID = &id
	}

	now := s.now().UTC()
	issue := now
	if req.IssueDate != nil {
		issue = req.IssueDate.UTC()
	}

	inv := &models.Invoice{
		ClientID:  clientID,
		ProjectID: projectID,
		Status:    models.InvoiceDraft,
		Items:     items,
		TaxRate:   req.TaxRate,
		IssueDate: issue,
		DueDate:   req.DueDate.UTC(),
		Notes:     req.Notes,
		Terms:     req.Terms,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	invoice.Apply(inv)

	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		inv.ID = uuid.New()
		inv.Number = invoice.NewNumber(now)

		out, err := s.store.CreateInvoice(ctx, inv)
		if err == nil {
			s.logger.Info("invoice created", "invoice_id", out.ID, "number", out.Number, "total", out.Total)
			return out, nil
		}
		if !errors.Is(err, models.ErrDuplicate) {
			return nil, err
		}
		s.logger.Warn("invoice number collision, regenerating", "number", inv.Number, "attempt", attempt)
	}
	return nil, ErrNumberExhausted
}

// Get returns the invoice with its totals derived from the stored items and
// tax rate, so a drifted stored total is never shown.
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	invoice.Apply(inv)
	return inv, nil
}

func (s *InvoiceService) List(ctx context.Context, clientID *uuid.UUID) ([]models.Invoice, error) {
	invoices, err := s.store.ListInvoices(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoice.Apply(&invoices[i])
	}
	return invoices, nil
}

func (s *InvoiceService) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*models.Invoice, error) {
	status := models.InvoiceStatus(raw)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.store.UpdateInvoiceStatus(ctx, id, status)
}

// Render produces the PDF for an invoice and the filename to save it as.
func (s *InvoiceService) Render(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	client, err := s.store.GetClient(ctx, inv.ClientID)
	if err != nil {
		return nil, "", err
	}

	data, err := pdf.RenderInvoice(*inv, *client, s.issuer)
	if err != nil {
		return nil, "", err
	}
	metrics.InvoicesRendered.Inc()
	return data, pdf.Filename(inv.Number), nil
}
