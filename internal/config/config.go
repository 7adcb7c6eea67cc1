package config

import (
	"os"
	"strconv"
	"time"

	"resume-redactor/internal/domain"
)

const (
	defaultMaxFileSize    = 50 * 1024 * 1024
	defaultSummaryTimeout = 60 * time.Second
	defaultExcerptLimit   = 5000
	defaultGeminiModel    = "gemini-1.5-flash"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort  string
	UploadPath  string
	MaxFileSize int64
	LogLevel    string

	// JWTSecret enables bearer auth on the API when set.
	JWTSecret string

	SupabaseURL    string
	SupabaseKey    string
	RedactedBucket string

	GoogleProject         string
	GoogleLocation        string
	GeminiModel           string
	GoogleCredentialsFile string
	SummaryTimeout        time.Duration
	ExcerptLimit          int

	DetectorRulesFile string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:  getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		UploadPath:  getEnvOrDefault("UPLOAD_PATH", "./uploads"),
		MaxFileSize: getEnvInt64OrDefault("MAX_FILE_SIZE", defaultMaxFileSize),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		JWTSecret:   getEnvOrDefault("JWT_SECRET", ""),

		SupabaseURL:    getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:    getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		RedactedBucket: getEnvOrDefault("REDACTED_BUCKET", ""),

		GoogleProject:         getEnvOrDefault("GOOGLE_CLOUD_PROJECT", ""),
		GoogleLocation:        getEnvOrDefault("GOOGLE_CLOUD_LOCATION", "us-central1"),
		GeminiModel:           getEnvOrDefault("GEMINI_MODEL", defaultGeminiModel),
		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_APPLICATION_CREDENTIALS", ""),
		SummaryTimeout:        getEnvDurationOrDefault("SUMMARY_TIMEOUT", defaultSummaryTimeout),
		ExcerptLimit:          int(getEnvInt64OrDefault("RESUME_EXCERPT_LIMIT", defaultExcerptLimit)),

		DetectorRulesFile: getEnvOrDefault("DETECTOR_RULES_FILE", ""),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetUploadPath returns the upload directory path
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetJWTSecret returns the JWT secret key
func (c *AppConfig) GetJWTSecret() string {
	return c.JWTSecret
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetRedactedBucket returns the Storage bucket for redacted output
func (c *AppConfig) GetRedactedBucket() string {
	return c.RedactedBucket
}

func (c *AppConfig) GetGoogleProject() string {
	return c.GoogleProject
}

func (c *AppConfig) GetGoogleLocation() string {
	return c.GoogleLocation
}

func (c *AppConfig) GetGeminiModel() string {
	return c.GeminiModel
}

func (c *AppConfig) GetGoogleCredentialsFile() string {
	return c.GoogleCredentialsFile
}

// GetSummaryTimeout bounds a single text-generation call
func (c *AppConfig) GetSummaryTimeout() time.Duration {
	return c.SummaryTimeout
}

// GetExcerptLimit returns the resume excerpt size in characters
func (c *AppConfig) GetExcerptLimit() int {
	return c.ExcerptLimit
}

func (c *AppConfig) GetDetectorRulesFile() string {
	return c.DetectorRulesFile
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("90s") or plain seconds ("90").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
