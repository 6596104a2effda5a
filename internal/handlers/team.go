package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"agency-portal/internal/models"
	"agency-portal/internal/services"
)

type TeamHandler struct {
	team   *services.TeamService
	logger *slog.Logger
}

func NewTeamHandler(team *services.TeamService, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{team: team, logger: logger}
}

// ListTeam godoc
// @Summary     List team members
// @Tags        team
// @Security    BearerAuth
// @Produce     json
// @Success     200 {object} models.TeamResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /team [get]
func (h *TeamHandler) ListTeam(c *gin.Context) {
	members, err := h.team.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return
	}
	c.JSON(http.StatusOK, models.TeamResponse{Members: members})
}

// UpdatePermissions godoc
// @Summary     Set a member's per-project access
// @Description Replaces the whole map of project id to none, read, write or admin.
// @Tags        team
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       user_id path string true "User ID"
// @Param       request body models.PermissionsRequest true "Permissions"
// @Success     200 {object} models.UserProfile
// @Failure     400 {object} models.ErrorResponse
// @Router      /team/{user_id}/permissions [put]
func (h *TeamHandler) UpdatePermissions(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	var req models.PermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	profile, err := h.team.SetPermissions(c.Request.Context(), userID, req.Permissions)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, profile)
}
