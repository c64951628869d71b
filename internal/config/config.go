// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables and an optional INI file,
// applies defaults, and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// Every setting can be configured via environment variables; most can also be
// set in the INI file named by CONFIG_FILE.
type Config struct {
	Server    ServerConfig
	Workspace WorkspaceConfig
	Compare   CompareConfig
	Store     StoreConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" ini:"Server.host" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8030)
	Port int `env:"SERVER_PORT" ini:"Server.port" default:"8030"`

	// BaseURL prefixes result URLs returned to clients. Empty means relative URLs.
	BaseURL string `env:"SERVER_BASE_URL" ini:"Server.base_url"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 2m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"2m"`
}

// WorkspaceConfig holds session workspace settings.
type WorkspaceConfig struct {
	// Root is the directory holding per-session folders, served under /static (default: ./static)
	Root string `env:"WORKSPACE_ROOT" ini:"Workspace.root" default:"static"`

	// SessionTTL is how long a session folder survives before the sweeper removes it (default: 24h)
	SessionTTL time.Duration `env:"WORKSPACE_SESSION_TTL" ini:"Workspace.session_ttl" default:"24h"`

	// SweepInterval is how often the sweeper runs (default: 1h)
	SweepInterval time.Duration `env:"WORKSPACE_SWEEP_INTERVAL" default:"1h"`
}

// CompareConfig holds comparison engine settings.
type CompareConfig struct {
	// MaxConcurrent is the maximum number of comparisons running at once (default: 4)
	MaxConcurrent int `env:"COMPARE_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a comparison slot (default: 30s)
	MaxWaitTime time.Duration `env:"COMPARE_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single comparison (default: 2m)
	Timeout time.Duration `env:"COMPARE_TIMEOUT" default:"2m"`

	// PixelThreshold is the grayscale difference that marks a pixel as changed (default: 30)
	PixelThreshold int `env:"COMPARE_PIXEL_THRESHOLD" ini:"Compare.pixel_threshold" default:"30"`

	// MaxFileSize caps the size of any input document in bytes (default: 100MB)
	MaxFileSize int64 `env:"COMPARE_MAX_FILE_SIZE" default:"104857600"`
}

// StoreConfig holds comparison history storage settings.
type StoreConfig struct {
	// DatabaseURL selects the PostgreSQL store when set.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// BadgerPath is the directory of the embedded store used when DatabaseURL is empty (default: ./data/history)
	BadgerPath string `env:"STORE_BADGER_PATH" ini:"Store.badger_path" default:"data/history"`

	// MaxConns is the maximum number of PostgreSQL connections (default: 8)
	MaxConns int `env:"DB_MAX_CONNS" default:"8"`

	// HistoryLimit is the maximum number of records returned by the history endpoint (default: 100)
	HistoryLimit int `env:"STORE_HISTORY_LIMIT" default:"100"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key checks on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`

	// AllowedOrigins is a comma-separated list of CORS origins (default: *)
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Enabled turns logging on or off entirely (default: on)
	Enabled bool `env:"LOG_ENABLED" ini:"Logging.logging_enabled" default:"on"`

	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" ini:"Logging.level" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" ini:"Logging.format" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
