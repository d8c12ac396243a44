// Package config provides centralized configuration management for the
// server. It loads configuration from environment variables with defaults
// and validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Analysis  AnalysisConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Retention RetentionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including the wait for
	// in-flight analyses (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings. Without a URL the
// server runs without ingest and profiles.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// AnalysisConfig holds document analysis settings.
type AnalysisConfig struct {
	// MaxDocumentSize is the maximum accepted body size in bytes (default: 50MB)
	MaxDocumentSize int64 `env:"ANALYSIS_MAX_DOCUMENT_SIZE" default:"52428800"`

	// MaxConcurrent is the maximum number of parallel analyses (default: 8)
	MaxConcurrent int `env:"ANALYSIS_MAX_CONCURRENT" default:"8"`

	// MaxWaitTime is how long to wait for an analysis slot (default: 10s)
	MaxWaitTime time.Duration `env:"ANALYSIS_MAX_WAIT_TIME" default:"10s"`

	// Workers bounds goroutines per analysis; 0 means GOMAXPROCS
	Workers int `env:"ANALYSIS_WORKERS" default:"0"`

	// ParallelThreshold is the row count that enables parallel classification (default: 2000)
	ParallelThreshold int `env:"ANALYSIS_PARALLEL_THRESHOLD" default:"2000"`

	// MaxInteger is the largest magnitude typed as int; 0 means int64
	MaxInteger uint64 `env:"ANALYSIS_MAX_INTEGER" default:"0"`

	// MaxJSONDepth caps JSON schema inference nesting (default: 10000)
	MaxJSONDepth int `env:"ANALYSIS_MAX_JSON_DEPTH" default:"10000"`

	// Timeout is the maximum duration of a single analysis (default: 2m)
	Timeout time.Duration `env:"ANALYSIS_TIMEOUT" default:"2m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// AnalysisLimit is requests per minute for document endpoints (default: 30)
	AnalysisLimit int `env:"RATE_LIMIT_ANALYSIS" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// APIKeys is a comma-separated list of accepted X-API-Key values
	APIKeys []string `env:"API_KEYS"`

	// RequireAPIKey rejects /api requests without a valid key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// CORSOrigins is a comma-separated list of allowed origins; empty disables CORS
	CORSOrigins []string `env:"CORS_ORIGINS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// RetentionConfig holds profile retention settings.
type RetentionConfig struct {
	// ProfileDays is days to keep sniff profiles (default: 30)
	ProfileDays int `env:"RETENTION_PROFILE_DAYS" default:"30"`

	// CheckInterval is how often to prune profiles (default: 24h)
	CheckInterval time.Duration `env:"RETENTION_CHECK_INTERVAL" default:"24h"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
