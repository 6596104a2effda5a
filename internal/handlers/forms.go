package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"agency-portal/internal/models"
	"agency-portal/internal/services"
)

type FormsHandler struct {
	forms  *services.FormService
	logger *slog.Logger
}

func NewFormsHandler(forms *services.FormService, logger *slog.Logger) *FormsHandler {
	return &FormsHandler{forms: forms, logger: logger}
}

// SubmitForm godoc
// @Summary     Submit a marketing form
// @Description Public intake for hype-audit, quote-request and contact forms. The agency is emailed asynchronously.
// @Tags        forms
// @Accept      json
// @Produce     json
// @Param       form_type path string true "hype-audit, quote-request or contact"
// @Param       request body object true "Form fields"
// @Success     202 {object} models.FormSubmissionResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /forms/{form_type} [post]
func (h *FormsHandler) SubmitForm(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}

	sub, err := h.forms.Submit(c.Request.Context(), c.Param("form_type"), payload)
	if err != nil {
		respondError(c, h.logger, err, "failed to submit, please try again")
		return
	}
	c.JSON(http.StatusAccepted, models.FormSubmissionResponse{
		ID:       sub.ID,
		FormType: sub.FormType,
		Status:   "received",
	})
}
