package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agency-portal/internal/authz"
	"agency-portal/internal/identity"
	"agency-portal/internal/models"
	"agency-portal/internal/services"
)

// ProjectsHandler serves projects and everything nested under them: tasks,
// checklists, documents, comments and the moodboard. Project-scoped routes
// are checked against the caller's per-project access level.
type ProjectsHandler struct {
	projects *services.ProjectService
	enforcer *authz.Enforcer
	logger   *slog.Logger
}

func NewProjectsHandler(projects *services.ProjectService, enforcer *authz.Enforcer, logger *slog.Logger) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, enforcer: enforcer, logger: logger}
}

// authorize answers 403 and returns false unless the caller may perform act
// on the project.
func (h *ProjectsHandler) authorize(c *gin.Context, projectID uuid.UUID, act authz.Action) bool {
	id, ok := currentIdentity(c)
	if !ok {
		return false
	}
	allowed, err := h.enforcer.CanProject(id, projectID.String(), act)
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "forbidden", Message: "you do not have " + string(act) + " access to this project"})
		return false
	}
	return true
}

// ListClientProjects godoc
// @Summary     List a client's projects
// @Description Newest first, one page at a time. Pass next_cursor back as cursor to load more.
// @Tags        projects
// @Security    BearerAuth
// @Produce     json
// @Param       client_id path string true "Client ID"
// @Param       limit query int false "Page size (max 100)"
// @Param       cursor query string false "Cursor from the previous page"
// @Success     200 {object} models.ProjectPage
// @Router      /clients/{client_id}/projects [get]
func (h *ProjectsHandler) ListClientProjects(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "client_id")
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	page, err := h.projects.ListPage(c.Request.Context(), clientID, c.Query("cursor"), limit)
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return
	}
	// The cursor still follows the unfiltered page, so hidden projects
	// never cut a listing short.
	page.Projects = visibleProjects(id, page.Projects)
	c.JSON(http.StatusOK, page)
}

// visibleProjects drops the projects the caller has no access to.
func visibleProjects(id identity.Identity, projects []models.Project) []models.Project {
	if id.IsAdmin() {
		return projects
	}
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if authz.LevelFor(id, p.ID.String()) != models.AccessNone {
			out = append(out, p)
		}
	}
	return out
}

// CreateProject godoc
// @Summary     Create a project for a client
// @Tags        projects
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       client_id path string true "Client ID"
// @Param       request body models.CreateProjectRequest true "Project"
// @Success     201 {object} models.Project
// @Failure     404 {object} models.ErrorResponse
// @Router      /clients/{client_id}/projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "client_id")
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	project, err := h.projects.Create(c.Request.Context(), clientID, id.ID, req)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// GetProject godoc
// @Summary     Get a project with its tasks
// @Tags        projects
// @Security    BearerAuth
// @Produce     json
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.Project
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [get]
func (h *ProjectsHandler) GetProject(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok || !h.authorize(c, projectID, authz.ActionRead) {
		return
	}
	project, err := h.projects.Get(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateProject godoc
// @Summary     Update a project
// @Tags        projects
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       project_id path string true "Project ID"
// @Param       request body models.UpdateProjectRequest true "Fields to change"
// @Success     200 {object} models.Project
// @Router      /projects/{project_id} [put]
func (h *ProjectsHandler) UpdateProject(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok || !h.authorize(c, projectID, authz.ActionWrite) {
		return
	}
	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	project, err := h.projects.Update(c.Request.Context(), projectID, req)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateProjectStatus godoc
// @Summary     Change a project's status
// @Tags        projects
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       project_id path string true "Project ID"
// @Param       request body models.StatusUpdateRequest true "New status"
// @Success     200 {object} models.Project
// @Router      /projects/{project_id}/status [patch]
func (h *ProjectsHandler) UpdateProjectStatus(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok || !h.authorize(c, projectID, authz.ActionWrite) {
		return
	}
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	project, err := h.projects.UpdateStatus(c.Request.Context(), projectID, req.Status)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, project)
}
