package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agency-portal/internal/models"
	"agency-portal/internal/services"
)

type InvoicesHandler struct {
	invoices *services.InvoiceService
	logger   *slog.Logger
}

func NewInvoicesHandler(invoices *services.InvoiceService, logger *slog.Logger) *InvoicesHandler {
	return &InvoicesHandler{invoices: invoices, logger: logger}
}

// ListInvoices godoc
// @Summary     List invoices
// @Tags        invoices
// @Security    BearerAuth
// @Produce     json
// @Param       client_id query string false "Only this client's invoices"
// @Success     200 {object} models.InvoiceListResponse
// @Router      /invoices [get]
func (h *InvoicesHandler) ListInvoices(c *gin.Context) {
	var clientID *uuid.UUID
	if raw := c.Query("client_id"); raw != "" {
		id, err := services.ParseID("client_id", raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		clientID = &id
	}

	invoices, err := h.invoices.List(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return
	}
	c.JSON(http.StatusOK, models.InvoiceListResponse{Invoices: invoices})
}

// CreateInvoice godoc
// @Summary     Create an invoice
// @Description Totals are computed from the line items and tax rate; any totals sent are ignored.
// @Tags        invoices
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request body models.CreateInvoiceRequest true "Invoice"
// @Success     201 {object} models.Invoice
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /invoices [post]
func (h *InvoicesHandler) CreateInvoice(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req models.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	inv, err := h.invoices.Create(c.Request.Context(), id.ID, req)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// GetInvoice godoc
// @Summary     Get an invoice
// @Tags        invoices
// @Security    BearerAuth
// @Produce     json
// @Param       invoice_id path string true "Invoice ID"
// @Success     200 {object} models.Invoice
// @Failure     404 {object} models.ErrorResponse
// @Router      /invoices/{invoice_id} [get]
func (h *InvoicesHandler) GetInvoice(c *gin.Context) {
	invoiceID, ok := pathID(c, "invoice_id")
	if !ok {
		return
	}
	inv, err := h.invoices.Get(c.Request.Context(), invoiceID)
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// UpdateInvoiceStatus godoc
// @Summary     Change an invoice's status
// @Tags        invoices
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       invoice_id path string true "Invoice ID"
// @Param       request body models.StatusUpdateRequest true "draft, sent, paid or overdue"
// @Success     200 {object} models.Invoice
// @Router      /invoices/{invoice_id}/status [patch]
func (h *InvoicesHandler) UpdateInvoiceStatus(c *gin.Context) {
	invoiceID, ok := pathID(c, "invoice_id")
	if !ok {
		return
	}
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	inv, err := h.invoices.UpdateStatus(c.Request.Context(), invoiceID, req.Status)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// DownloadInvoicePDF godoc
// @Summary     Download an invoice as PDF
// @Tags        invoices
// @Security    BearerAuth
// @Produce     application/pdf
// @Param       invoice_id path string true "Invoice ID"
// @Success     200 {file} file
// @Failure     404 {object} models.ErrorResponse
// @Router      /invoices/{invoice_id}/pdf [get]
func (h *InvoicesHandler) DownloadInvoicePDF(c *gin.Context) {
	invoiceID, ok := pathID(c, "invoice_id")
	if !ok {
		return
	}
	data, filename, err := h.invoices.Render(c.Request.Context(), invoiceID)
	if err != nil {
		respondError(c, h.logger, err, "failed to generate invoice")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
