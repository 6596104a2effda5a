package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-portal/internal/config"
)

func setRequired(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("SUPABASE_PUBLISHABLE_KEY", "anon")
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/portal")
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "https://abc.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "supabase", cfg.StorageDriver)
	assert.Equal(t, "portal-files", cfg.SupabaseStorageBucket)
	assert.Equal(t, 10, cfg.LoginRateLimit)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("NOTIFY_TO", "ops@agency.com, sales@agency.com ,")
	t.Setenv("EMAIL_WORKERS", "8")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"ops@agency.com", "sales@agency.com"}, cfg.NotifyTo)
	assert.Equal(t, 8, cfg.EmailWorkers)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{
		SupabaseURL:            "https://abc.supabase.co",
		SupabasePublishableKey: "anon",
		SupabaseJWTSecret:      "secret",
		DatabaseURL:            "postgres://localhost/portal",
		StorageDriver:          "supabase",
	}
	assert.NoError(t, cfg.Validate())

	cfg.StorageDriver = "minio"
	assert.Error(t, cfg.Validate())
	cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey = "localhost:9000", "a", "b"
	assert.NoError(t, cfg.Validate())

	cfg.StorageDriver = "s3"
	assert.Error(t, cfg.Validate())

	cfg.StorageDriver = "supabase"
	cfg.SupabaseJWTSecret = ""
	assert.EqualError(t, cfg.Validate(), "SUPABASE_JWT_SECRET is required")
}

func TestRequire(t *testing.T) {
	cfg := &config.Config{SupabaseURL: "https://abc.supabase.co"}

	assert.NoError(t, cfg.Require("SUPABASE_URL"))
	err := cfg.Require("SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY", "DATABASE_URL")
	assert.EqualError(t, err, "missing required settings: SUPABASE_SERVICE_ROLE_KEY, DATABASE_URL")
}
