// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables; the struct tag on
// each section is its variable prefix.
type Config struct {
	Server   ServerConfig    `envconfig:"SERVER"`
	Upload   UploadConfig    `envconfig:"UPLOAD"`
	Facet    FacetConfig     `envconfig:"FACET"`
	Rate     RateLimitConfig `envconfig:"RATE_LIMIT"`
	Security SecurityConfig  `envconfig:"SECURITY"`
	Logging  LoggingConfig   `envconfig:"LOG"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `split_words:"true" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `split_words:"true" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `split_words:"true" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `split_words:"true" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `split_words:"true" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `split_words:"true" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `split_words:"true" default:"60s"`
}

// UploadConfig holds file ingestion settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 100MB)
	MaxFileSize int64 `split_words:"true" default:"104857600"`

	// MaxConcurrent is the maximum number of parallel loads (default: 5)
	MaxConcurrent int `split_words:"true" default:"5"`

	// MaxWaitTime is how long to wait for a load slot (default: 30s)
	MaxWaitTime time.Duration `split_words:"true" default:"30s"`

	// Timeout is the maximum duration for a single load (default: 5m)
	Timeout time.Duration `split_words:"true" default:"5m"`
}

// FacetConfig holds dataset and session settings.
type FacetConfig struct {
	// SampleSize is the number of generated records a new session starts with (default: 1000)
	SampleSize int `split_words:"true" default:"1000"`

	// MaxSampleSize caps the record count a sample regeneration may ask for (default: 1000000)
	MaxSampleSize int `split_words:"true" default:"1000000"`

	// PageSize is the number of rows per table page (default: 100)
	PageSize int `split_words:"true" default:"100"`

	// IndexThreshold is the row count above which the bitmap index is used; 0 disables it (default: 50000)
	IndexThreshold int `split_words:"true" default:"50000"`

	// SchemaFile is an optional YAML file describing the filter dimensions
	SchemaFile string `split_words:"true"`

	// SessionTTL is how long an unused session lives (default: 1h)
	SessionTTL time.Duration `split_words:"true" default:"1h"`

	// ReapInterval is how often idle sessions are checked (default: 5m)
	ReapInterval time.Duration `split_words:"true" default:"5m"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `split_words:"true" default:"true"`

	// RequestsPerMinute is the sustained rate per IP (default: 300)
	RequestsPerMinute int `split_words:"true" default:"300"`

	// Burst is how many requests an IP may make at once (default: 50)
	Burst int `split_words:"true" default:"50"`
}

// SecurityConfig holds security-related settings.
// Each key also reads its unprefixed name, e.g. API_KEYS for SECURITY_API_KEYS.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key authentication on /api routes (default: false)
	RequireAPIKey bool `envconfig:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `envconfig:"API_KEYS"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `split_words:"true" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
