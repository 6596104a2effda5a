package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agency-portal/internal/forms"
	"agency-portal/internal/identity"
	"agency-portal/internal/invoice"
	"agency-portal/internal/middleware"
	"agency-portal/internal/models"
	"agency-portal/internal/services"
	"agency-portal/internal/supabase"
)

// User-facing fallbacks. The underlying error is logged, never returned.
const (
	msgLoadFailed = "failed to load"
	msgSaveFailed = "failed to save, please try again"
)

// respondError maps service errors to HTTP answers. Anything unrecognised
// becomes a 500 carrying only the fallback message.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var verr *forms.ValidationError
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, services.ErrMiniTaskNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
	case errors.Is(err, models.ErrDuplicate):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "already exists"})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid submission", "problems": verr.Problems})
	case errors.Is(err, forms.ErrUnknownForm):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "unknown form", Message: err.Error()})
	case errors.Is(err, services.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidID),
		errors.Is(err, services.ErrInvalidLevel),
		errors.Is(err, services.ErrMissingFile),
		errors.Is(err, services.ErrEmptyComment),
		errors.Is(err, services.ErrProjectMismatch),
		errors.Is(err, supabase.ErrInvalidCursor),
		errors.Is(err, invoice.ErrNoItems),
		errors.Is(err, invoice.ErrInvalidItem),
		errors.Is(err, invoice.ErrInvalidTaxRate),
		errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
	case errors.Is(err, identity.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
	case errors.Is(err, identity.ErrEmailInUse):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "conflict", Message: err.Error()})
	case errors.Is(err, identity.ErrInviteInvalid):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found", Message: err.Error()})
	case errors.Is(err, identity.ErrInviteUsed), errors.Is(err, identity.ErrInviteExpired):
		c.JSON(http.StatusGone, models.ErrorResponse{Error: "gone", Message: err.Error()})
	default:
		logger.Error(fallback,
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Message: fallback})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
}

// pathID parses a uuid path parameter, answering 400 when it is malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func currentIdentity(c *gin.Context) (identity.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: "authentication required"})
	}
	return id, ok
}
