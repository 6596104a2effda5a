package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agency-portal/internal/authz"
	"agency-portal/internal/models"
	"agency-portal/internal/services"
)

// ListComments godoc
// @Summary     List a project's comments
// @Tags        comments
// @Security    BearerAuth
// @Produce     json
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.CommentListResponse
// @Router      /projects/{project_id}/comments [get]
func (h *ProjectsHandler) ListComments(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok || !h.authorize(c, projectID, authz.ActionRead) {
		return
	}
	comments, err := h.projects.ListComments(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return
	}
	c.JSON(http.StatusOK, models.CommentListResponse{Comments: comments})
}

// AddComment godoc
// @Summary     Comment on a project
// @Description Multipart form with a content field and an optional file.
// @Tags        comments
// @Security    BearerAuth
// @Accept      multipart/form-data
// @Produce     json
// @Param       project_id path string true "Project ID"
// @Param       content formData string false "Comment text"
// @Param       file formData file false "Attachment"
// @Success     201 {object} models.Comment
// @Router      /projects/{project_id}/comments [post]
func (h *ProjectsHandler) AddComment(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id")
	if !ok || !h.authorize(c, projectID, authz.ActionRead) {
		return
	}

	fh := optionalFile(c, "file")
	comment, err := h.projects.AddComment(c.Request.Context(), projectID, id.ID, id.Email, c.PostForm("content"), fh)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListMoodboard godoc
// @Summary     List a project's moodboard
// @Tags        moodboard
// @Security    BearerAuth
// @Produce     json
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.MoodboardResponse
// @Router      /projects/{project_id}/moodboard [get]
func (h *ProjectsHandler) ListMoodboard(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok || !h.authorize(c, projectID, authz.ActionRead) {
		return
	}
	items, err := h.projects.ListMoodboard(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return
	}
	c.JSON(http.StatusOK, models.MoodboardResponse{Items: items})
}

// AddMoodboardImage godoc
// @Summary     Pin an image to the moodboard
// @Tags        moodboard
// @Security    BearerAuth
// @Accept      multipart/form-data
// @Produce     json
// @Param       project_id path string true "Project ID"
// @Param       file formData file true "Image"
// @Param       caption formData string false "Caption"
// @Param       x formData number false "Drop position x"
// @Param       y formData number false "Drop position y"
// @Success     201 {object} models.MoodboardItem
// @Failure     415 {object} models.ErrorResponse
// @Router      /projects/{project_id}/moodboard [post]
func (h *ProjectsHandler) AddMoodboardImage(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id")
	if !ok || !h.authorize(c, projectID, authz.ActionWrite) {
		return
	}

	x, errX := formFloat(c, "x")
	y, errY := formFloat(c, "y")
	if errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: "x and y must be numbers"})
		return
	}

	fh := optionalFile(c, "file")
	if fh == nil {
		respondError(c, h.logger, services.ErrMissingFile, msgSaveFailed)
		return
	}

	item, err := h.projects.AddMoodboardImage(c.Request.Context(), projectID, id.ID, c.PostForm("caption"), x, y, fh)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// MoveMoodboardItem godoc
// @Summary     Persist a moodboard drop position
// @Tags        moodboard
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       item_id path string true "Moodboard item ID"
// @Param       request body models.MoodboardPositionRequest true "Position"
// @Success     200 {object} models.MoodboardItem
// @Router      /moodboard/{item_id}/position [patch]
func (h *ProjectsHandler) MoveMoodboardItem(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	item, err := h.projects.GetMoodboardItem(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return
	}
	if !h.authorize(c, item.ProjectID, authz.ActionWrite) {
		return
	}

	var req models.MoodboardPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.projects.MoveMoodboardItem(c.Request.Context(), itemID, *req.X, *req.Y)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, out)
}

func optionalFile(c *gin.Context, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}

func formFloat(c *gin.Context, field string) (float64, error) {
	raw := c.PostForm(field)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
