package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agency-portal/internal/identity"
	"agency-portal/internal/middleware"
	"agency-portal/internal/models"
)

type LoginService interface {
	Login(ctx context.Context, email, password string) (identity.Identity, identity.Tokens, error)
	Logout(ctx context.Context, accessToken string) error
}

type InviteService interface {
	Invite(ctx context.Context, email string, invitedBy uuid.UUID) (*models.Invite, string, error)
	Accept(ctx context.Context, inviteID uuid.UUID, secret, password string) (identity.Identity, error)
}

type AuthHandler struct {
	auth    LoginService
	inviter InviteService
	logger  *slog.Logger
}

func NewAuthHandler(auth LoginService, inviter InviteService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, inviter: inviter, logger: logger}
}

// Login godoc
// @Summary     Sign in
// @Description Signs in with email and password. Failures never say which of the two was wrong.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.LoginRequest true "Credentials"
// @Success     200 {object} models.LoginResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     429 {object} models.ErrorResponse
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id, tokens, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err, "failed to sign in, please try again")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
		User:         identityResponse(id),
	})
}

// Logout godoc
// @Summary     Sign out
// @Tags        auth
// @Security    BearerAuth
// @Success     204
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.AccessTokenKey)
	_ = h.auth.Logout(c.Request.Context(), token)
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary     Current identity
// @Tags        auth
// @Security    BearerAuth
// @Produce     json
// @Success     200 {object} models.IdentityResponse
// @Router      /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, identityResponse(id))
}

// CreateInvite godoc
// @Summary     Invite a team member
// @Description Emails a one-time link that lets the recipient set a password and join as a team member.
// @Tags        auth
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request body models.InviteRequest true "Invitee"
// @Success     201 {object} models.InviteResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /auth/invites [post]
func (h *AuthHandler) CreateInvite(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req models.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	invite, link, err := h.inviter.Invite(c.Request.Context(), req.Email, id.ID)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, models.InviteResponse{Invite: *invite, Link: link})
}

// AcceptInvite godoc
// @Summary     Accept an invite
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.AcceptInviteRequest true "Invite and new password"
// @Success     201 {object} models.IdentityResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     410 {object} models.ErrorResponse
// @Router      /auth/invites/accept [post]
func (h *AuthHandler) AcceptInvite(c *gin.Context) {
	var req models.AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	inviteID, err := uuid.Parse(req.InviteID)
	if err != nil {
		respondError(c, h.logger, identity.ErrInviteInvalid, msgSaveFailed)
		return
	}

	id, err := h.inviter.Accept(c.Request.Context(), inviteID, req.Secret, req.Password)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, identityResponse(id))
}

func identityResponse(id identity.Identity) models.IdentityResponse {
	return models.IdentityResponse{ID: id.ID, Email: id.Email, Role: id.Role}
}
