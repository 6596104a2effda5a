package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-portal/internal/handlers"
	"agency-portal/internal/models"
	"agency-portal/internal/services"
)

func clientsRouter(store *memStore) *gin.Engine {
	h := handlers.NewClientsHandler(services.NewClientService(store, nil, discardLogger), discardLogger)
	router := newEngine(as(admin()))
	router.GET("/clients", h.ListClients)
	router.POST("/clients", h.CreateClient)
	router.GET("/clients/:client_id", h.GetClient)
	router.PATCH("/clients/:client_id/status", h.UpdateClientStatus)
	return router
}

func TestCreateClient_DefaultsToActive(t *testing.T) {
	store := newMemStore()
	router := clientsRouter(store)

	req, _ := http.NewRequest("POST", "/clients", strings.NewReader(`{"name":"Acme","email":"hello@acme.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var got models.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, models.ClientActive, got.Status)
	assert.Len(t, store.clients, 1)
}

func TestListClients_StatusFilter(t *testing.T) {
	store := newMemStore()
	for name, status := range map[string]models.ClientStatus{
		"Acme":     models.ClientActive,
		"Globex":   models.ClientOnHold,
		"Umbrella": models.ClientCompleted,
	} {
		id := uuid.New()
		store.clients[id] = &models.Client{ID: id, Name: name, Status: status}
	}
	router := clientsRouter(store)

	tests := []struct {
		query string
		code  int
		count int
	}{
		{"", http.StatusOK, 3},
		{"?status=all", http.StatusOK, 3},
		{"?status=On%20Hold", http.StatusOK, 1},
		{"?status=Archived", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/clients"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.code, w.Code)
			if tt.code != http.StatusOK {
				return
			}
			var resp models.ClientListResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Len(t, resp.Clients, tt.count)
		})
	}
}

func TestGetClient_NotFound(t *testing.T) {
	router := clientsRouter(newMemStore())

	req, _ := http.NewRequest("GET", "/clients/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetClient_MalformedID(t *testing.T) {
	router := clientsRouter(newMemStore())

	req, _ := http.NewRequest("GET", "/clients/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListClients_StoreFailureIsGeneric(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("pq: relation \"clients\" does not exist")
	router := clientsRouter(store)

	req, _ := http.NewRequest("GET", "/clients", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "failed to load", resp.Message)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestUpdateClientStatus(t *testing.T) {
	store := newMemStore()
	id := uuid.New()
	store.clients[id] = &models.Client{ID: id, Name: "Acme", Status: models.ClientActive}
	router := clientsRouter(store)

	req, _ := http.NewRequest("PATCH", "/clients/"+id.String()+"/status", strings.NewReader(`{"status":"Completed"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ClientCompleted, store.clients[id].Status)

	req, _ = http.NewRequest("PATCH", "/clients/"+id.String()+"/status", strings.NewReader(`{"status":"Archived"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
