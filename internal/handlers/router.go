package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"agency-portal/internal/authz"
	"agency-portal/internal/config"
	"agency-portal/internal/middleware"
)

// Routes holds every handler the API serves.
type Routes struct {
	Health   *HealthHandler
	Auth     *AuthHandler
	Clients  *ClientsHandler
	Projects *ProjectsHandler
	Team     *TeamHandler
	Invoices *InvoicesHandler
	Forms    *FormsHandler
	Stream   *StreamHandler
}

// NewRouter builds the gin engine. Everything under /api/v1 requires a
// bearer token except login, invite acceptance and form intake.
func NewRouter(cfg *config.Config, resolver middleware.IdentityResolver, enforcer *authz.Enforcer, r Routes) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigin))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", r.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api/v1")
	public.GET("/health", r.Health.Health)
	public.POST("/auth/login", middleware.RateLimitMiddleware(cfg.LoginRateLimit, cfg.LoginRateLimit), r.Auth.Login)
	public.POST("/auth/invites/accept", middleware.RateLimitMiddleware(cfg.LoginRateLimit, cfg.LoginRateLimit), r.Auth.AcceptInvite)
	public.POST("/forms/:form_type", middleware.RateLimitMiddleware(30, 10), r.Forms.SubmitForm)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg, resolver))

	api.POST("/auth/logout", r.Auth.Logout)
	api.GET("/auth/me", r.Auth.Me)
	api.POST("/auth/invites", middleware.RequireAdmin(), r.Auth.CreateInvite)

	clientsRead := middleware.RequireAccess(enforcer, authz.ResourceClients, authz.ActionRead)
	clientsWrite := middleware.RequireAccess(enforcer, authz.ResourceClients, authz.ActionWrite)
	api.GET("/clients", clientsRead, r.Clients.ListClients)
	api.POST("/clients", clientsWrite, r.Clients.CreateClient)
	api.GET("/clients/:client_id", clientsRead, r.Clients.GetClient)
	api.PUT("/clients/:client_id", clientsWrite, r.Clients.UpdateClient)
	api.PATCH("/clients/:client_id/status", clientsWrite, r.Clients.UpdateClientStatus)

	// Project routes check per-project access inside the handlers.
	api.GET("/clients/:client_id/projects", clientsRead, r.Projects.ListClientProjects)
	api.POST("/clients/:client_id/projects", middleware.RequireAccess(enforcer, authz.ResourceProjects, authz.ActionWrite), r.Projects.CreateProject)
	api.GET("/projects/:project_id", r.Projects.GetProject)
	api.PUT("/projects/:project_id", r.Projects.UpdateProject)
	api.PATCH("/projects/:project_id/status", r.Projects.UpdateProjectStatus)

	api.GET("/projects/:project_id/tasks", r.Projects.ListTasks)
	api.POST("/projects/:project_id/tasks", r.Projects.CreateTask)
	api.PUT("/tasks/:task_id", r.Projects.UpdateTask)
	api.DELETE("/tasks/:task_id", r.Projects.DeleteTask)
	api.PATCH("/tasks/:task_id/status", r.Projects.UpdateTaskStatus)
	api.POST("/tasks/:task_id/minitasks", r.Projects.AddMiniTask)
	api.PATCH("/tasks/:task_id/minitasks/:mini_task_id", r.Projects.UpdateMiniTask)
	api.POST("/tasks/:task_id/documents", r.Projects.UploadTaskDocument)
	api.GET("/tasks/:task_id/documents/:index/url", r.Projects.TaskDocumentURL)

	api.GET("/projects/:project_id/comments", r.Projects.ListComments)
	api.POST("/projects/:project_id/comments", r.Projects.AddComment)
	api.GET("/projects/:project_id/moodboard", r.Projects.ListMoodboard)
	api.POST("/projects/:project_id/moodboard", r.Projects.AddMoodboardImage)
	api.PATCH("/moodboard/:item_id/position", r.Projects.MoveMoodboardItem)

	api.GET("/team", middleware.RequireAccess(enforcer, authz.ResourceTeam, authz.ActionRead), r.Team.ListTeam)
	api.PUT("/team/:user_id/permissions", middleware.RequireAccess(enforcer, authz.ResourceTeam, authz.ActionWrite), r.Team.UpdatePermissions)

	invoicesRead := middleware.RequireAccess(enforcer, authz.ResourceInvoices, authz.ActionRead)
	invoicesWrite := middleware.RequireAccess(enforcer, authz.ResourceInvoices, authz.ActionWrite)
	api.GET("/invoices", invoicesRead, r.Invoices.ListInvoices)
	api.POST("/invoices", invoicesWrite, r.Invoices.CreateInvoice)
	api.GET("/invoices/:invoice_id", invoicesRead, r.Invoices.GetInvoice)
	api.PATCH("/invoices/:invoice_id/status", invoicesWrite, r.Invoices.UpdateInvoiceStatus)
	api.GET("/invoices/:invoice_id/pdf", invoicesRead, r.Invoices.DownloadInvoicePDF)

	// EventSource cannot send headers, so only streams take ?access_token=.
	stream := router.Group("/api/v1/stream")
	stream.Use(middleware.StreamAuthMiddleware(cfg, resolver))
	stream.GET("/clients", clientsRead, r.Stream.StreamClients)
	stream.GET("/clients/:client_id/projects", clientsRead, r.Stream.StreamClientProjects)
	stream.GET("/team", middleware.RequireAccess(enforcer, authz.ResourceTeam, authz.ActionRead), r.Stream.StreamTeam)
	stream.GET("/invoices", invoicesRead, r.Stream.StreamInvoices)

	return router
}
