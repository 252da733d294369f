// Package config loads application configuration from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Blob store backends selectable with BLOB_BACKEND.
const (
	BackendDrive = "drive"
	BackendMinio = "minio"
)

// Config holds all runtime configuration for the gateway.
type Config struct {
	Port      string
	AppEnv    string
	LogLevel  slog.Level
	LogFormat string

	// Upload gateway
	UploadDir      string
	UploadMaxBytes int64
	BlobBackend    string

	// Google Drive
	DriveCredentialsFile string
	DriveFolderID        string

	// Object storage (S3-compatible, used when BLOB_BACKEND=minio)
	StorageEndpoint   string
	StorageAccessKey  string
	StorageSecretKey  string
	StorageBucket     string
	StorageUseSSL     bool
	StoragePublicBase string // browser-accessible base URL, e.g. "http://localhost:9000/registry"

	// Record store
	AirtableAPIKey string
	AirtableBaseID string
	AirtableAPIURL string

	HTTPClientTimeout time.Duration

	// Admin session. An empty AdminPassword leaves every caller an admin.
	AdminPassword string
	JWTSecret     string

	// Upload ledger; empty disables it.
	DatabaseURL string
}

// DefaultJWTSecret is the placeholder used when JWT_SECRET is unset.
const DefaultJWTSecret = "change_me_in_production"

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, reading from environment")
	}

	return &Config{
		Port:      getEnv("PORT", "3001"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  parseLevel(getEnv("LOG_LEVEL", "info")),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		UploadMaxBytes: getEnvInt64("UPLOAD_MAX_BYTES", 10*1024*1024),
		BlobBackend:    strings.ToLower(getEnv("BLOB_BACKEND", BackendDrive)),

		DriveCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", "service-account.json"),
		DriveFolderID:        getEnv("DRIVE_FOLDER_ID", ""),

		StorageEndpoint:   getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey:  getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
		StorageSecretKey:  getEnv("STORAGE_SECRET_KEY", "minioadmin"),
		StorageBucket:     getEnv("STORAGE_BUCKET", "registry"),
		StorageUseSSL:     getEnv("STORAGE_USE_SSL", "false") == "true",
		StoragePublicBase: getEnv("STORAGE_PUBLIC_BASE", "http://localhost:9000/registry"),

		AirtableAPIKey: getEnv("AIRTABLE_API_KEY", ""),
		AirtableBaseID: getEnv("AIRTABLE_BASE_ID", ""),
		AirtableAPIURL: getEnv("AIRTABLE_API_URL", "https://api.airtable.com/v0"),

		HTTPClientTimeout: getEnvDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second),

		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		JWTSecret:     getEnv("JWT_SECRET", DefaultJWTSecret),

		DatabaseURL: getEnv("DATABASE_URL", ""),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AirtableConfigured reports whether both record store credentials are set.
func (c *Config) AirtableConfigured() bool {
	return c.AirtableAPIKey != "" && c.AirtableBaseID != ""
}

// AdminAuthEnabled reports whether admin-only operations require a token.
func (c *Config) AdminAuthEnabled() bool {
	return c.AdminPassword != ""
}

// JWTSecretIsDefault reports whether no real signing secret was configured.
func (c *Config) JWTSecretIsDefault() bool {
	return c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret
}

// LedgerEnabled reports whether uploads are recorded in PostgreSQL.
func (c *Config) LedgerEnabled() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer in environment, using default", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return d
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
