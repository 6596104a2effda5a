package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"agency-portal/internal/models"
	"agency-portal/internal/services"
)

type ClientsHandler struct {
	clients *services.ClientService
	logger  *slog.Logger
}

func NewClientsHandler(clients *services.ClientService, logger *slog.Logger) *ClientsHandler {
	return &ClientsHandler{clients: clients, logger: logger}
}

// ListClients godoc
// @Summary     List clients
// @Description Newest first. status may be all, Active, On Hold or Completed.
// @Tags        clients
// @Security    BearerAuth
// @Produce     json
// @Param       status query string false "Status filter"
// @Success     200 {object} models.ClientListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /clients [get]
func (h *ClientsHandler) ListClients(c *gin.Context) {
	clients, err := h.clients.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return
	}
	c.JSON(http.StatusOK, models.ClientListResponse{Clients: clients})
}

// CreateClient godoc
// @Summary     Create a client
// @Tags        clients
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request body models.CreateClientRequest true "Client"
// @Success     201 {object} models.Client
// @Failure     400 {object} models.ErrorResponse
// @Router      /clients [post]
func (h *ClientsHandler) CreateClient(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req models.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.clients.Create(c.Request.Context(), id.ID, req)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClient godoc
// @Summary     Get a client
// @Tags        clients
// @Security    BearerAuth
// @Produce     json
// @Param       client_id path string true "Client ID"
// @Success     200 {object} models.Client
// @Failure     404 {object} models.ErrorResponse
// @Router      /clients/{client_id} [get]
func (h *ClientsHandler) GetClient(c *gin.Context) {
	clientID, ok := pathID(c, "client_id")
	if !ok {
		return
	}
	client, err := h.clients.Get(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClient godoc
// @Summary     Update a client
// @Tags        clients
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       client_id path string true "Client ID"
// @Param       request body models.UpdateClientRequest true "Fields to change"
// @Success     200 {object} models.Client
// @Router      /clients/{client_id} [put]
func (h *ClientsHandler) UpdateClient(c *gin.Context) {
	clientID, ok := pathID(c, "client_id")
	if !ok {
		return
	}
	var req models.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	client, err := h.clients.Update(c.Request.Context(), clientID, req)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClientStatus godoc
// @Summary     Change a client's status
// @Tags        clients
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       client_id path string true "Client ID"
// @Param       request body models.StatusUpdateRequest true "New status"
// @Success     200 {object} models.Client
// @Router      /clients/{client_id}/status [patch]
func (h *ClientsHandler) UpdateClientStatus(c *gin.Context) {
	clientID, ok := pathID(c, "client_id")
	if !ok {
		return
	}
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	client, err := h.clients.UpdateStatus(c.Request.Context(), clientID, req.Status)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, client)
}
