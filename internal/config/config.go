package config

import (
	"os"
	"time"

	"digital-garden/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string
	LogLevel           string
	SupabaseURL        string
	SupabaseKey        string
	GoogleBooksAPIKey  string
	LegacySnapshotPath string
	SyncTimeout        time.Duration
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:         getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		SupabaseURL:        getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:        getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		GoogleBooksAPIKey:  getEnvOrDefault("GOOGLE_BOOKS_API_KEY", ""),
		LegacySnapshotPath: getEnvOrDefault("LEGACY_SNAPSHOT_PATH", "./digital-garden-storage.json"),
		SyncTimeout:        getEnvDurationOrDefault("SYNC_TIMEOUT", 4*time.Second),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetGoogleBooksAPIKey returns the Google Books API key. Empty is fine for
// the unauthenticated quota.
func (c *AppConfig) GetGoogleBooksAPIKey() string {
	return c.GoogleBooksAPIKey
}

// GetLegacySnapshotPath returns the path of the legacy guest snapshot file
func (c *AppConfig) GetLegacySnapshotPath() string {
	return c.LegacySnapshotPath
}

// GetSyncTimeout returns the deadline applied to a full cloud reconcile
func (c *AppConfig) GetSyncTimeout() time.Duration {
	return c.SyncTimeout
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
