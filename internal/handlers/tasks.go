package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agency-portal/internal/authz"
	"agency-portal/internal/models"
	"agency-portal/internal/services"
)

// taskAccess loads the task named in the path and checks act against its
// project.
func (h *ProjectsHandler) taskAccess(c *gin.Context, act authz.Action) (*models.Task, bool) {
	taskID, ok := pathID(c, "task_id")
	if !ok {
		return nil, false
	}
	task, err := h.projects.GetTask(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return nil, false
	}
	if !h.authorize(c, task.ProjectID, act) {
		return nil, false
	}
	return task, true
}

// ListTasks godoc
// @Summary     List a project's tasks
// @Tags        tasks
// @Security    BearerAuth
// @Produce     json
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.TaskListResponse
// @Router      /projects/{project_id}/tasks [get]
func (h *ProjectsHandler) ListTasks(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok || !h.authorize(c, projectID, authz.ActionRead) {
		return
	}
	tasks, err := h.projects.ListTasks(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return
	}
	c.JSON(http.StatusOK, models.TaskListResponse{Tasks: tasks})
}

// CreateTask godoc
// @Summary     Add a task to a project
// @Tags        tasks
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       project_id path string true "Project ID"
// @Param       request body models.CreateTaskRequest true "Task"
// @Success     201 {object} models.Task
// @Router      /projects/{project_id}/tasks [post]
func (h *ProjectsHandler) CreateTask(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok || !h.authorize(c, projectID, authz.ActionWrite) {
		return
	}
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.projects.CreateTask(c.Request.Context(), projectID, req)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask godoc
// @Summary     Update a task
// @Tags        tasks
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       task_id path string true "Task ID"
// @Param       request body models.UpdateTaskRequest true "Fields to change"
// @Success     200 {object} models.Task
// @Router      /tasks/{task_id} [put]
func (h *ProjectsHandler) UpdateTask(c *gin.Context) {
	task, ok := h.taskAccess(c, authz.ActionWrite)
	if !ok {
		return
	}
	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.projects.UpdateTask(c.Request.Context(), task.ID, req)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateTaskStatus godoc
// @Summary     Move a task between columns
// @Tags        tasks
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       task_id path string true "Task ID"
// @Param       request body models.StatusUpdateRequest true "New status"
// @Success     200 {object} models.Task
// @Router      /tasks/{task_id}/status [patch]
func (h *ProjectsHandler) UpdateTaskStatus(c *gin.Context) {
	task, ok := h.taskAccess(c, authz.ActionWrite)
	if !ok {
		return
	}
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.projects.UpdateTaskStatus(c.Request.Context(), task.ID, req.Status)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DeleteTask godoc
// @Summary     Delete a task and its documents
// @Tags        tasks
// @Security    BearerAuth
// @Param       task_id path string true "Task ID"
// @Success     204
// @Router      /tasks/{task_id} [delete]
func (h *ProjectsHandler) DeleteTask(c *gin.Context) {
	task, ok := h.taskAccess(c, authz.ActionDelete)
	if !ok {
		return
	}
	if err := h.projects.DeleteTask(c.Request.Context(), task.ID); err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddMiniTask godoc
// @Summary     Add a checklist item to a task
// @Tags        tasks
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       task_id path string true "Task ID"
// @Param       request body models.CreateMiniTaskRequest true "Checklist item"
// @Success     201 {object} models.Task
// @Router      /tasks/{task_id}/minitasks [post]
func (h *ProjectsHandler) AddMiniTask(c *gin.Context) {
	task, ok := h.taskAccess(c, authz.ActionWrite)
	if !ok {
		return
	}
	var req models.CreateMiniTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.projects.AddMiniTask(c.Request.Context(), task.ID, req)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// UpdateMiniTask godoc
// @Summary     Toggle or edit a checklist item
// @Tags        tasks
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       task_id path string true "Task ID"
// @Param       mini_task_id path string true "Checklist item ID"
// @Param       request body models.UpdateMiniTaskRequest true "Fields to change"
// @Success     200 {object} models.Task
// @Router      /tasks/{task_id}/minitasks/{mini_task_id} [patch]
func (h *ProjectsHandler) UpdateMiniTask(c *gin.Context) {
	task, ok := h.taskAccess(c, authz.ActionWrite)
	if !ok {
		return
	}
	miniID, ok := pathID(c, "mini_task_id")
	if !ok {
		return
	}
	var req models.UpdateMiniTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.projects.UpdateMiniTask(c.Request.Context(), task.ID, miniID, req)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UploadTaskDocument godoc
// @Summary     Attach a document to a task
// @Tags        tasks
// @Security    BearerAuth
// @Accept      multipart/form-data
// @Produce     json
// @Param       task_id path string true "Task ID"
// @Param       file formData file true "Document"
// @Success     201 {object} models.Task
// @Failure     413 {object} models.ErrorResponse
// @Router      /tasks/{task_id}/documents [post]
func (h *ProjectsHandler) UploadTaskDocument(c *gin.Context) {
	task, ok := h.taskAccess(c, authz.ActionWrite)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, h.logger, services.ErrMissingFile, msgSaveFailed)
		return
	}
	out, err := h.projects.AttachDocument(c.Request.Context(), task.ID, fh)
	if err != nil {
		respondError(c, h.logger, err, msgSaveFailed)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// TaskDocumentURL godoc
// @Summary     Get a short-lived download link for a task document
// @Tags        tasks
// @Security    BearerAuth
// @Produce     json
// @Param       task_id path string true "Task ID"
// @Param       index path int true "Document position"
// @Success     200 {object} map[string]string
// @Router      /tasks/{task_id}/documents/{index}/url [get]
func (h *ProjectsHandler) TaskDocumentURL(c *gin.Context) {
	task, ok := h.taskAccess(c, authz.ActionRead)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: "invalid index"})
		return
	}
	url, err := h.projects.DocumentURL(c.Request.Context(), task.ID, index)
	if err != nil {
		respondError(c, h.logger, err, msgLoadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
