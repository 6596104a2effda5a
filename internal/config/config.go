package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Object storage: "supabase" or "minio"
	StorageDriver  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Email
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	NotifyTo     []string
	EmailWorkers int

	// Invoice issuer
	AgencyName     string
	AgencyAddress  string
	AgencyEmail    string
	AgencyPhone    string
	AgencyWebsite  string
	AgencyCurrency string

	// Server
	Port           string
	Environment    string
	BaseURL        string
	CORSOrigin     string
	LoginRateLimit int
	LogLevel       string
	LogFormat      string
}

var defaults = map[string]any{
	"SUPABASE_STORAGE_BUCKET": "portal-files",
	"STORAGE_DRIVER":          "supabase",
	"MINIO_BUCKET":            "portal-files",
	"SMTP_PORT":               "587",
	"EMAIL_WORKERS":           4,
	"AGENCY_NAME":             "Agency",
	"AGENCY_CURRENCY":         "$",
	"PORT":                    "8080",
	"ENVIRONMENT":             "development",
	"BASE_URL":                "http://localhost:8080",
	"CORS_ORIGIN":             "*",
	"LOGIN_RATE_LIMIT":        10,
	"LOG_LEVEL":               "INFO",
	"LOG_FORMAT":              "text",
}

// Load reads the configuration and validates what the API server needs.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Read loads settings from an optional .env file in the working directory
// and the environment, without validating them. Environment variables win.
func Read() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}
	v.AutomaticEnv()

	return &Config{
		SupabaseURL:            strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		SupabasePublishableKey: v.GetString("SUPABASE_PUBLISHABLE_KEY"),
		SupabaseServiceRoleKey: v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseJWTSecret:      v.GetString("SUPABASE_JWT_SECRET"),
		SupabaseStorageBucket:  v.GetString("SUPABASE_STORAGE_BUCKET"),

		DatabaseURL: v.GetString("DATABASE_URL"),

		StorageDriver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		MinioEndpoint:  v.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: v.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: v.GetString("MINIO_SECRET_KEY"),
		MinioBucket:    v.GetString("MINIO_BUCKET"),
		MinioUseSSL:    v.GetBool("MINIO_USE_SSL"),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetString("SMTP_PORT"),
		SMTPUsername: v.GetString("SMTP_USERNAME"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		SMTPFrom:     v.GetString("SMTP_FROM"),
		NotifyTo:     splitList(v.GetString("NOTIFY_TO")),
		EmailWorkers: v.GetInt("EMAIL_WORKERS"),

		AgencyName:     v.GetString("AGENCY_NAME"),
		AgencyAddress:  v.GetString("AGENCY_ADDRESS"),
		AgencyEmail:    v.GetString("AGENCY_EMAIL"),
		AgencyPhone:    v.GetString("AGENCY_PHONE"),
		AgencyWebsite:  v.GetString("AGENCY_WEBSITE"),
		AgencyCurrency: v.GetString("AGENCY_CURRENCY"),

		Port:           v.GetString("PORT"),
		Environment:    v.GetString("ENVIRONMENT"),
		BaseURL:        strings.TrimRight(v.GetString("BASE_URL"), "/"),
		CORSOrigin:     v.GetString("CORS_ORIGIN"),
		LoginRateLimit: v.GetInt("LOGIN_RATE_LIMIT"),
		LogLevel:       strings.ToUpper(v.GetString("LOG_LEVEL")),
		LogFormat:      strings.ToLower(v.GetString("LOG_FORMAT")),
	}, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.StorageDriver {
	case "supabase":
	case "minio":
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

// Require checks that the named settings are present. It is used by
// commands that need only part of the configuration.
func (c *Config) Require(keys ...string) error {
	values := map[string]string{
		"SUPABASE_URL":              c.SupabaseURL,
		"SUPABASE_PUBLISHABLE_KEY":  c.SupabasePublishableKey,
		"SUPABASE_SERVICE_ROLE_KEY": c.SupabaseServiceRoleKey,
		"SUPABASE_JWT_SECRET":       c.SupabaseJWTSecret,
		"DATABASE_URL":              c.DatabaseURL,
	}
	var missing []string
	for _, key := range keys {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
