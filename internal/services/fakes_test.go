package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"agency-portal/internal/livesync"
	"agency-portal/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory stand-in for the database. Client writes are
// published to mgr when set, the way the change triggers do.
type memStore struct {
	mu        sync.Mutex
	clients   []models.Client
	projects  []models.Project
	tasks     map[uuid.UUID]models.Task
	comments  []models.Comment
	moodboard map[uuid.UUID]models.MoodboardItem
	invoices  map[uuid.UUID]models.Invoice
	numbers   map[string]bool
	profiles  map[uuid.UUID]models.UserProfile
	forms     []models.FormSubmission

	failCreate    error
	failAttach    error
	dupNumbers    int
	invoiceWrites int
	mgr           *livesync.Manager
}

func newMemStore() *memStore {
	return &memStore{
		tasks:     make(map[uuid.UUID]models.Task),
		moodboard: make(map[uuid.UUID]models.MoodboardItem),
		invoices:  make(map[uuid.UUID]models.Invoice),
		numbers:   make(map[string]bool),
		profiles:  make(map[uuid.UUID]models.UserProfile),
	}
}

func (s *memStore) publish(collection, op string, id uuid.UUID) {
	if s.mgr != nil {
		s.mgr.Publish(livesync.ChangeEvent{Collection: collection, Op: op, ID: id.String()})
	}
}

// Query serves the clients collection to a livesync.Manager, newest first.
func (s *memStore) Query(_ context.Context, q livesync.Query) ([]livesync.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []livesync.Document{}
	for i := len(s.clients) - 1; i >= 0; i-- {
		b, _ := json.Marshal(s.clients[i])
		var doc livesync.Document
		_ = json.Unmarshal(b, &doc)
		if q.Matches(doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *memStore) CreateClient(_ context.Context, c *models.Client) (*models.Client, error) {
	s.mu.Lock()
	if s.failCreate != nil {
		s.mu.Unlock()
		return nil, s.failCreate
	}
	s.clients = append(s.clients, *c)
	s.mu.Unlock()
	s.publish("clients", livesync.OpInsert, c.ID)
	out := *c
	return &out, nil
}

func (s *memStore) GetClient(_ context.Context, id uuid.UUID) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memStore) ListClients(_ context.Context, status models.ClientStatus) ([]models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Client{}
	for i := len(s.clients) - 1; i >= 0; i-- {
		if status == "" || s.clients[i].Status == status {
			out = append(out, s.clients[i])
		}
	}
	return out, nil
}

func (s *memStore) updateClient(id uuid.UUID, fn func(*models.Client)) (*models.Client, error) {
	s.mu.Lock()
	var out *models.Client
	for i := range s.clients {
		if s.clients[i].ID == id {
			fn(&s.clients[i])
			s.clients[i].UpdatedAt = time.Now()
			c := s.clients[i]
			out = &c
		}
	}
	s.mu.Unlock()
	if out == nil {
		return nil, models.ErrNotFound
	}
	s.publish("clients", livesync.OpUpdate, id)
	return out, nil
}

func (s *memStore) UpdateClient(_ context.Context, id uuid.UUID, req models.UpdateClientRequest) (*models.Client, error) {
	return s.updateClient(id, func(c *models.Client) {
		if req.Name != nil {
			c.Name = *req.Name
		}
		if req.Email != nil {
			c.Email = *req.Email
		}
	})
}

func (s *memStore) UpdateClientStatus(_ context.Context, id uuid.UUID, status models.ClientStatus) (*models.Client, error) {
	return s.updateClient(id, func(c *models.Client) { c.Status = status })
}

func (s *memStore) CreateProject(_ context.Context, p *models.Project) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append(s.projects, *p)
	out := *p
	return &out, nil
}

func (s *memStore) GetProject(_ context.Context, id uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memStore) ListProjectsPage(_ context.Context, clientID uuid.UUID, _ string, limit int) ([]models.Project, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Project{}
	for i := len(s.projects) - 1; i >= 0; i-- {
		if s.projects[i].ClientID == clientID {
			out = append(out, s.projects[i])
		}
	}
	if limit > 0 && len(out) > limit {
		return out[:limit], "more", nil
	}
	return out, "", nil
}

func (s *memStore) UpdateProject(ctx context.Context, id uuid.UUID, req models.UpdateProjectRequest) (*models.Project, error) {
	return s.GetProject(ctx, id)
}

func (s *memStore) UpdateProjectStatus(_ context.Context, id uuid.UUID, status models.ProjectStatus) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i].Status = status
			out := s.projects[i]
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memStore) CreateTask(_ context.Context, t *models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = *t
	out := *t
	return &out, nil
}

func (s *memStore) GetTask(_ context.Context, id uuid.UUID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (s *memStore) ListTasks(_ context.Context, projectID uuid.UUID) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Task{}
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) UpdateTask(ctx context.Context, id uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	return s.GetTask(ctx, id)
}

func (s *memStore) UpdateTaskStatus(_ context.Context, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	t.Status = status
	s.tasks[id] = t
	return &t, nil
}

func (s *memStore) DeleteTask(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memStore) SaveMiniTasks(_ context.Context, taskID uuid.UUID, mini []models.MiniTask) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, models.ErrNotFound
	}
	t.MiniTasks = mini
	s.tasks[taskID] = t
	return &t, nil
}

func (s *memStore) AppendTaskDocument(_ context.Context, taskID uuid.UUID, doc models.Attachment) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAttach != nil {
		return nil, s.failAttach
	}
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, models.ErrNotFound
	}
	t.Documents = append(t.Documents, doc)
	s.tasks[taskID] = t
	return &t, nil
}

func (s *memStore) CreateComment(_ context.Context, c *models.Comment) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAttach != nil {
		return nil, s.failAttach
	}
	s.comments = append(s.comments, *c)
	out := *c
	return &out, nil
}

func (s *memStore) ListComments(_ context.Context, projectID uuid.UUID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Comment{}
	for _, c := range s.comments {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) CreateMoodboardItem(_ context.Context, item *models.MoodboardItem) (*models.MoodboardItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAttach != nil {
		return nil, s.failAttach
	}
	s.moodboard[item.ID] = *item
	out := *item
	return &out, nil
}

func (s *memStore) GetMoodboardItem(_ context.Context, id uuid.UUID) (*models.MoodboardItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.moodboard[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &item, nil
}

func (s *memStore) ListMoodboard(_ context.Context, projectID uuid.UUID) ([]models.MoodboardItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.MoodboardItem{}
	for _, item := range s.moodboard {
		if item.ProjectID == projectID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *memStore) UpdateMoodboardPosition(_ context.Context, id uuid.UUID, x, y float64) (*models.MoodboardItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.moodboard[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	item.X, item.Y = x, y
	s.moodboard[id] = item
	return &item, nil
}

// CreateInvoice reports the first dupNumbers attempts as number collisions.
func (s *memStore) CreateInvoice(_ context.Context, inv *models.Invoice) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoiceWrites++
	if s.dupNumbers > 0 {
		s.dupNumbers--
		return nil, models.ErrDuplicate
	}
	if s.numbers[inv.Number] {
		return nil, models.ErrDuplicate
	}
	s.numbers[inv.Number] = true
	s.invoices[inv.ID] = *inv
	out := *inv
	return &out, nil
}

func (s *memStore) GetInvoice(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &inv, nil
}

func (s *memStore) ListInvoices(_ context.Context, clientID *uuid.UUID) ([]models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Invoice{}
	for _, inv := range s.invoices {
		if clientID == nil || inv.ClientID == *clientID {
			out = append(out, inv)
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
	s.invoices[id] = inv
	return &inv, nil
}

func (s *memStore) GetProfile(_ context.Context, id uuid.UUID) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s *memStore) ListTeam(_ context.Context) ([]models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.UserProfile{}
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (s *memStore) UpdatePermissions(_ context.Context, id uuid.UUID, perms map[string]models.AccessLevel) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	p.Permissions = perms
	s.profiles[id] = p
	return &p, nil
}

func (s *memStore) CreateSubmission(_ context.Context, sub *models.FormSubmission) (*models.FormSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms = append(s.forms, *sub)
	out := *sub
	return &out, nil
}

// memFiles is an in-memory FileStore.
type memFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemFiles() *memFiles {
	return &memFiles{objects: make(map[string][]byte)}
}

func (f *memFiles) Upload(_ context.Context, path, _ string, r io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.objects[path] = data
	f.mu.Unlock()
	return "https://files.test/" + path, nil
}

func (f *memFiles) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://files.test/" + path + "?token=signed", nil
}

func (f *memFiles) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	delete(f.objects, path)
	f.mu.Unlock()
	return nil
}

func (f *memFiles) DeletePrefix(_ context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(f.objects, k)
		}
	}
	return nil
}

// fileHeader builds a multipart upload the way gin hands it to handlers.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func (f *memFiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
