package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"agency-portal/internal/livesync"
	"agency-portal/internal/models"
)

type ClientStore interface {
	CreateClient(ctx context.Context, c *models.Client) (*models.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context, status models.ClientStatus) ([]models.Client, error)
	UpdateClient(ctx context.Context, id uuid.UUID, req models.UpdateClientRequest) (*models.Client, error)
	UpdateClientStatus(ctx context.Context, id uuid.UUID, status models.ClientStatus) (*models.Client, error)
}

// Optimist registers locally created records with live subscriptions
// before the write is acknowledged. *livesync.Manager implements it.
type Optimist interface {
	Optimistic(collection string, doc livesync.Document) *livesync.Pending
}

type ClientService struct {
	store    ClientStore
	optimist Optimist
	logger   *slog.Logger
}

// NewClientService accepts a nil optimist, in which case creates are only
// visible once stored.
func NewClientService(store ClientStore, optimist Optimist, logger *slog.Logger) *ClientService {
	return &ClientService{store: store, optimist: optimist, logger: logger}
}

func (s *ClientService) Create(ctx context.Context, ownerID uuid.UUID, req models.CreateClientRequest) (*models.Client, error) {
	status := models.ClientStatus(req.Status)
	if status == "" {
		status = models.ClientActive
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	now := time.Now().UTC()
	c := &models.Client{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Phone:       req.Phone,
		Description: req.Description,
		Status:      status,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var pending *livesync.Pending
	if s.optimist != nil {
		doc, err := toDocument(c)
		if err != nil {
			return nil, err
		}
		pending = s.optimist.Optimistic("clients", doc)
	}

	out, err := s.store.CreateClient(ctx, c)
	if err != nil {
		if pending != nil {
			pending.Fail(err)
		}
		return nil, err
	}
	if pending != nil {
		pending.Confirm()
	}

	s.logger.Info("client created", "client_id", out.ID, "owner_id", ownerID)
	return out, nil
}

func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return s.store.GetClient(ctx, id)
}

// List returns clients newest first, narrowed by a status filter that may
// be empty or "all".
func (s *ClientService) List(ctx context.Context, filter string) ([]models.Client, error) {
	var status models.ClientStatus
	if filter != "" && filter != models.StatusFilterAll {
		status = models.ClientStatus(filter)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
	}
	return s.store.ListClients(ctx, status)
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req models.UpdateClientRequest) (*models.Client, error) {
	return s.store.UpdateClient(ctx, id, req)
}

func (s *ClientService) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*models.Client, error) {
	status := models.ClientStatus(raw)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	out, err := s.store.UpdateClientStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("client status changed", "client_id", id, "status", status)
	return out, nil
}

func toDocument(v any) (livesync.Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc livesync.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return doc, nil
}
