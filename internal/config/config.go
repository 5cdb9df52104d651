// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AuthConfig holds authentication and identity provider configuration.
type AuthConfig struct {
	JWTSecret            string   `yaml:"jwt_secret"`             // HS256 shared secret for locally issued session tokens
	TokenLifetimeMinutes int      `yaml:"token_lifetime_minutes"` // session token validity (default 30)
	IssuerURL            string   `yaml:"issuer_url"`             // optional OIDC issuer URL
	JWKSURL              string   `yaml:"jwks_url"`               // override JWKS URL (if no .well-known discovery)
	Audience             string   `yaml:"audience"`               // required JWT audience claim for OIDC tokens
	AllowedIssuers       []string `yaml:"allowed_issuers"`        // accepted issuers (defaults to [IssuerURL])
}

// OIDCEnabled returns true when an external identity provider is configured.
func (a *AuthConfig) OIDCEnabled() bool {
	return a.IssuerURL != "" || a.JWKSURL != ""
}

// TokenLifetime returns the session token validity as a duration.
func (a *AuthConfig) TokenLifetime() time.Duration {
	if a.TokenLifetimeMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(a.TokenLifetimeMinutes) * time.Minute
}

// Config holds the configuration for the registry server.
type Config struct {
	DBPath     string `yaml:"db_path"`     // path to the SQLite registry file
	ListenAddr string `yaml:"listen_addr"` // HTTP listen address (default ":8080")
	LogLevel   string `yaml:"log_level"`   // log level: debug, info, warn, error (default "info")
	Env        string `yaml:"env"`         // environment: "development" (default) or "production"

	// AdminPassword is the credential of the seeded registry admin. Required
	// on first startup; ignored once the admin principal exists.
	AdminPassword string `yaml:"admin_password"`

	// AccessKeyLifespanDays is the validity window of newly issued access
	// keys (default 365).
	AccessKeyLifespanDays int `yaml:"access_key_lifespan_days"`

	// Rate limiting
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`   // sustained requests per second (default 100)
	RateLimitBurst int     `yaml:"rate_limit_burst"` // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"` // allowed origins (default: ["*"])

	// Auth holds token and identity provider configuration.
	Auth AuthConfig `yaml:"auth"`

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string `yaml:"-"`
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// AccessKeyLifespan returns the issued-key validity as a duration.
func (c *Config) AccessKeyLifespan() time.Duration {
	days := c.AccessKeyLifespanDays
	if days <= 0 {
		days = 365
	}
	return time.Duration(days) * 24 * time.Hour
}

// Load builds the configuration: an optional YAML file first, then
// environment variables on top. Defaults are applied last and insecure
// defaults are fatal in production mode.
func Load(filePath string) (*Config, error) {
	cfg := &Config{}
	if filePath != "" {
		if err := loadFile(cfg, filePath); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	return finish(cfg)
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	applyEnv(cfg)
	return finish(cfg)
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables on top of cfg. Environment
// variables take precedence over file values.
func applyEnv(cfg *Config) {
	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setStr(&cfg.DBPath, "DB_PATH")
	setStr(&cfg.ListenAddr, "LISTEN_ADDR")
	setStr(&cfg.LogLevel, "LOG_LEVEL")
	setStr(&cfg.Env, "ENV")
	setStr(&cfg.AdminPassword, "ADMIN_PASSWORD")
	setStr(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setStr(&cfg.Auth.IssuerURL, "AUTH_ISSUER_URL")
	setStr(&cfg.Auth.JWKSURL, "AUTH_JWKS_URL")
	setStr(&cfg.Auth.Audience, "AUTH_AUDIENCE")

	if v := os.Getenv("ACCESS_KEY_LIFESPAN_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AccessKeyLifespanDays = n
		}
	}
	if v := os.Getenv("TOKEN_LIFETIME_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Auth.TokenLifetimeMinutes = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = compactNonEmpty(strings.Split(v, ","))
	}
	if v := os.Getenv("AUTH_ALLOWED_ISSUERS"); v != "" {
		cfg.Auth.AllowedIssuers = compactNonEmpty(strings.Split(v, ","))
	}
}

func finish(cfg *Config) (*Config, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = "platform_registry.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-secret-change-in-production"
		cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set — using insecure default. Set JWT_SECRET in production!")
	}
	if cfg.AdminPassword == "" {
		cfg.Warnings = append(cfg.Warnings, "ADMIN_PASSWORD not set — the registry admin will not be seeded on an empty database")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if cfg.Auth.JWTSecret == "dev-secret-change-in-production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(v string) string {
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
