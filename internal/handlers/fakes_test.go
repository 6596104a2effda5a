package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agency-portal/internal/identity"
	"agency-portal/internal/livesync"
	"agency-portal/internal/middleware"
	"agency-portal/internal/models"
	"agency-portal/internal/services"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memStore backs the client, invoice and form services in handler tests.
type memStore struct {
	mu          sync.Mutex
	clients     map[uuid.UUID]*models.Client
	invoices    map[uuid.UUID]*models.Invoice
	submissions []*models.FormSubmission
	profiles    []models.UserProfile
	projects    []models.Project
	err         error
}

func newMemStore() *memStore {
	return &memStore{
		clients:  make(map[uuid.UUID]*models.Client),
		invoices: make(map[uuid.UUID]*models.Invoice),
	}
}

func (s *memStore) CreateClient(_ context.Context, c *models.Client) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	cp := *c
	s.clients[c.ID] = &cp
	return &cp, nil
}

func (s *memStore) GetClient(_ context.Context, id uuid.UUID) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) ListClients(_ context.Context, status models.ClientStatus) ([]models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []models.Client{}
	for _, c := range s.clients {
		if status == "" || c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *memStore) UpdateClient(_ context.Context, id uuid.UUID, req models.UpdateClientRequest) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) UpdateClientStatus(_ context.Context, id uuid.UUID, status models.ClientStatus) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c.Status = status
	cp := *c
	return &cp, nil
}

func (s *memStore) GetProject(context.Context, uuid.UUID) (*models.Project, error) {
	return nil, models.ErrNotFound
}

func (s *memStore) CreateInvoice(_ context.Context, inv *models.Invoice) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	inv.CreatedAt, inv.UpdatedAt = now, now
	cp := *inv
	s.invoices[inv.ID] = &cp
	return &cp, nil
}

func (s *memStore) GetInvoice(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (s *memStore) ListInvoices(_ context.Context, clientID *uuid.UUID) ([]models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Invoice{}
	for _, inv := range s.invoices {
		if clientID == nil || inv.ClientID == *clientID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (s *memStore) UpdateInvoiceStatus(_ context.Context, id uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	inv.Status = status
	cp := *inv
	return &cp, nil
}

func (s *memStore) CreateSubmission(_ context.Context, sub *models.FormSubmission) (*models.FormSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	cp := *sub
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	s.submissions = append(s.submissions, &cp)
	return &cp, nil
}

// Query serves the clients collection to live subscriptions.
func (s *memStore) Query(_ context.Context, q livesync.Query) ([]livesync.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var docs []livesync.Document
	switch q.Collection {
	case "clients":
		for _, c := range s.clients {
			docs = append(docs, livesync.Document{"id": c.ID.String(), "name": c.Name, "status": string(c.Status)})
		}
	case "users":
		for _, p := range s.profiles {
			docs = append(docs, livesync.Document{"id": p.ID.String(), "email": p.Email, "role": p.Role})
		}
	case "projects":
		for _, p := range s.projects {
			docs = append(docs, livesync.Document{"id": p.ID.String(), "client_id": p.ClientID.String(), "title": p.Title})
		}
	}
	out := []livesync.Document{}
	for _, doc := range docs {
		if q.Matches(doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// projectStore serves client project pages. Other ProjectStore methods are
// not used by the handlers under test and panic if called.
type projectStore struct {
	services.ProjectStore
	client   models.Client
	projects []models.Project
}

func (s *projectStore) GetClient(_ context.Context, id uuid.UUID) (*models.Client, error) {
	if id != s.client.ID {
		return nil, models.ErrNotFound
	}
	c := s.client
	return &c, nil
}

func (s *projectStore) ListProjectsPage(_ context.Context, clientID uuid.UUID, _ string, _ int) ([]models.Project, string, error) {
	out := []models.Project{}
	for _, p := range s.projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, "", nil
}

// as injects an identity the way AuthMiddleware would.
func as(id identity.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id.ID.String())
		c.Set(middleware.IdentityKey, id)
		c.Next()
	}
}

func admin() identity.Identity {
	return identity.Identity{ID: uuid.New(), Email: "owner@agency.com", Role: models.RoleAdmin}
}

func teamMember(perms map[string]models.AccessLevel) identity.Identity {
	return identity.Identity{ID: uuid.New(), Email: "dev@agency.com", Role: models.RoleTeamMember, Permissions: perms}
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}
