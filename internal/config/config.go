// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Public origin of the site (e.g., https://envis.co.uk).
	// Used for checkout redirect URLs, canonical links and the sitemap.
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	SiteName string `env:"SITE_NAME" envDefault:"Envis"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Payment provider mirror tables. Defaults to DatabaseURL.
	MirrorDatabaseURL string `env:"MIRROR_DATABASE_URL"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Admin gate
	AdminPassword    string        `env:"ADMIN_PASSWORD,required"`
	AdminTokenSecret string        `env:"ADMIN_TOKEN_SECRET"`
	AdminTokenTTL    time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`

	// Stripe
	StripeSecretKey      string `env:"STRIPE_SECRET_KEY"`
	StripePublishableKey string `env:"STRIPE_PUBLISHABLE_KEY"`
	StripeWebhookSecret  string `env:"STRIPE_WEBHOOK_SECRET"`

	// Catalog mirror refresh. A zero interval disables periodic syncs.
	CatalogSyncInterval    time.Duration `env:"CATALOG_SYNC_INTERVAL" envDefault:"15m"`
	CatalogRefreshCooldown time.Duration `env:"CATALOG_REFRESH_COOLDOWN" envDefault:"1m"`

	// Built client bundle (index.html + assets)
	StaticDir string `env:"STATIC_DIR" envDefault:"dist/public"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting (per client IP)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"1"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// PaymentsEnabled reports whether a Stripe secret key is configured.
func (c *Config) PaymentsEnabled() bool {
	return c.StripeSecretKey != ""
}

// GetMirrorDatabaseURL returns the mirror DSN, falling back to DatabaseURL.
func (c *Config) GetMirrorDatabaseURL() string {
	if c.MirrorDatabaseURL != "" {
		return c.MirrorDatabaseURL
	}
	return c.DatabaseURL
}

// GetAdminTokenSecret returns the key used to sign admin tokens.
// When no explicit secret is set the key is derived from the admin password,
// so rotating the password invalidates every issued token.
func (c *Config) GetAdminTokenSecret() []byte {
	if c.AdminTokenSecret != "" {
		return []byte(c.AdminTokenSecret)
	}
	sum := sha256.Sum256([]byte("envis-admin-token:" + c.AdminPassword))
	return sum[:]
}

// GetBaseURL returns BaseURL without a trailing slash.
func (c *Config) GetBaseURL() string {
	return strings.TrimSuffix(c.BaseURL, "/")
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.AdminTokenTTL <= 0 {
		return nil, fmt.Errorf("failed to parse config: ADMIN_TOKEN_TTL must be positive")
	}
	return cfg, nil
}

// CLIConfig is the subset of settings used by the envisctl operator tool.
type CLIConfig struct {
	DatabaseURL       string `env:"DATABASE_URL,required"`
	MirrorDatabaseURL string `env:"MIRROR_DATABASE_URL"`
	// RedisURL is optional; when set, catalog syncs drop the cached listing.
	RedisURL        string `env:"REDIS_URL"`
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string `env:"LOG_FORMAT" envDefault:"text"`
}

// GetMirrorDatabaseURL returns the mirror DSN, falling back to DatabaseURL.
func (c *CLIConfig) GetMirrorDatabaseURL() string {
	if c.MirrorDatabaseURL != "" {
		return c.MirrorDatabaseURL
	}
	return c.DatabaseURL
}

// NewLogger builds the CLI logger and installs it as the default logger.
func (c *CLIConfig) NewLogger() *slog.Logger {
	logger := newLogger(os.Stderr, c.LogLevel, c.LogFormat)
	slog.SetDefault(logger)
	return logger
}

// LoadCLI parses the operator tool's environment.
func LoadCLI() (*CLIConfig, error) {
	cfg := &CLIConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
