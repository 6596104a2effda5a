// @title           Agency Portal API
// @version         1.0.0
// @description     Client portal backend for a marketing agency: clients, projects, tasks, moodboards, invoices and live updates over server-sent events.

// @contact.name   API Support
// @contact.email  support@example.com

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the Supabase access token.

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"agency-portal/docs"
	"agency-portal/internal/authz"
	"agency-portal/internal/config"
	"agency-portal/internal/database"
	"agency-portal/internal/forms"
	"agency-portal/internal/handlers"
	"agency-portal/internal/identity"
	"agency-portal/internal/livesync"
	"agency-portal/internal/logger"
	"agency-portal/internal/notify"
	"agency-portal/internal/objectstore"
	"agency-portal/internal/pdf"
	"agency-portal/internal/services"
	"agency-portal/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if baseURL, err := url.Parse(cfg.BaseURL); err == nil && baseURL.Host != "" {
		docs.SwaggerInfo.Host = baseURL.Host
		if baseURL.Scheme == "https" {
			docs.SwaggerInfo.Schemes = []string{"https", "http"}
		} else {
			docs.SwaggerInfo.Schemes = []string{"http", "https"}
		}
	}

	if cfg.SupabaseServiceRoleKey == "" {
		appLogger.Warn("SUPABASE_SERVICE_ROLE_KEY not set, invites will fail")
	}

	migrator, err := database.NewMigrator(cfg.DatabaseURL, appLogger)
	if err != nil {
		fatal(appLogger, "failed to initialize migrator", err)
	}
	if err := migrator.Run(); err != nil {
		fatal(appLogger, "migration failed", err)
	}
	migrator.Close()
	appLogger.Info("migrations completed")

	db, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		fatal(appLogger, "failed to connect to database", err)
	}
	defer db.Close()

	sb, err := supabase.NewClient(cfg)
	if err != nil {
		fatal(appLogger, "failed to initialize supabase client", err)
	}

	files, err := newFileStore(cfg)
	if err != nil {
		fatal(appLogger, "failed to initialize file storage", err)
	}

	live := livesync.NewManager(db, appLogger)
	defer live.Close()

	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, appLogger)
	dispatcher, err := notify.NewDispatcher(db, mailer, cfg.NotifyTo, cfg.EmailWorkers, appLogger,
		notify.WithAgencyName(cfg.AgencyName))
	if err != nil {
		fatal(appLogger, "failed to initialize notifications", err)
	}
	defer dispatcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	changes := supabase.NewRealtimeClient(cfg.DatabaseURL, appLogger)
	changes.AddSink(live)
	changes.AddSink(dispatcher)
	go func() {
		if err := changes.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("change feed stopped", slog.String("error", err.Error()))
		}
	}()

	authClient := supabase.NewAuthClient(sb).WithUserLookup(db)
	identities := identity.NewService(authClient, db, appLogger)
	inviter := identity.NewInviter(db, authClient, db, dispatcher, cfg.BaseURL, appLogger)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		fatal(appLogger, "failed to initialize authorization", err)
	}
	validator, err := forms.NewValidator()
	if err != nil {
		fatal(appLogger, "failed to load form schemas", err)
	}

	attachments := services.NewAttachmentService(files, appLogger)
	issuer := pdf.Issuer{
		Name:     cfg.AgencyName,
		Address:  cfg.AgencyAddress,
		Email:    cfg.AgencyEmail,
		Phone:    cfg.AgencyPhone,
		Website:  cfg.AgencyWebsite,
		Currency: cfg.AgencyCurrency,
	}

	router := handlers.NewRouter(cfg, identities, enforcer, handlers.Routes{
		Health:   handlers.NewHealthHandler(db),
		Auth:     handlers.NewAuthHandler(identities, inviter, appLogger),
		Clients:  handlers.NewClientsHandler(services.NewClientService(db, live, appLogger), appLogger),
		Projects: handlers.NewProjectsHandler(services.NewProjectService(db, attachments, appLogger), enforcer, appLogger),
		Team:     handlers.NewTeamHandler(services.NewTeamService(db, appLogger), appLogger),
		Invoices: handlers.NewInvoicesHandler(services.NewInvoiceService(db, issuer, appLogger), appLogger),
		Forms:    handlers.NewFormsHandler(services.NewFormService(db, validator, appLogger), appLogger),
		Stream:   handlers.NewStreamHandler(live, appLogger),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("server starting", slog.String("port", cfg.Port), slog.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(appLogger, "failed to start server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down")

	// Open event streams only end when their subscriptions do.
	live.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

// newFileStore picks the attachment backend named by STORAGE_DRIVER.
func newFileStore(cfg *config.Config) (services.FileStore, error) {
	if cfg.StorageDriver != "minio" {
		return supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.SupabaseStorageBucket), nil
	}

	store, err := objectstore.NewClient(objectstore.Config{
		Endpoint:        cfg.MinioEndpoint,
		AccessKeyID:     cfg.MinioAccessKey,
		SecretAccessKey: cfg.MinioSecretKey,
		Bucket:          cfg.MinioBucket,
		UseSSL:          cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func fatal(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
