// Package config loads server configuration from TOML files, a .env file and
// LEDGER_* environment variables, in that order of precedence (last wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the ledger server
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Auth        AuthConfig      `toml:"auth"`
	Ledger      LedgerConfig    `toml:"ledger"`
	RateLimit   RateLimitConfig `toml:"rate_limit"`
	Logging     LoggingConfig   `toml:"logging"`
	Tracing     TracingConfig   `toml:"tracing"`
}

// ServerConfig holds listener addresses
type ServerConfig struct {
	GRPCAddress    string `toml:"grpc_address"`
	MetricsAddress string `toml:"metrics_address"` // empty disables the /metrics endpoint
}

// StorageConfig selects and configures the ledger repository
type StorageConfig struct {
	Driver   string         `toml:"driver"` // "postgres" or "bolt"
	Postgres PostgresConfig `toml:"postgres"`
	Bolt     BoltConfig     `toml:"bolt"`
}

// PostgresConfig holds the Postgres connection settings
type PostgresConfig struct {
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"`
	ConnectRetry string `toml:"connect_retry"` // total time to keep retrying the first connection
}

// GetConnectRetry parses and returns the connect retry window
func (c *PostgresConfig) GetConnectRetry() time.Duration {
	d, err := time.ParseDuration(c.ConnectRetry)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// BoltConfig holds the embedded store settings
type BoltConfig struct {
	Path string `toml:"path"`
}

// AuthConfig holds token verification settings
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	Issuer      string `toml:"issuer"`
	TokenExpiry string `toml:"token_expiry"`
}

// GetTokenExpiry parses and returns the token expiry duration
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LedgerConfig holds service-level ledger settings
type LedgerConfig struct {
	ProjectionMonths    int `toml:"projection_months"`
	MaxProjectionMonths int `toml:"max_projection_months"` // largest horizon a summary request may ask for
	MaxWriteAttempts    int `toml:"max_write_attempts"`    // read-recompute-write attempts before giving up on conflicts
}

// RateLimitConfig holds the per-server request limiter settings
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"` // 0 disables limiting
	Burst             int     `toml:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Endpoint    string `toml:"endpoint"` // OTLP/HTTP endpoint, empty keeps spans in-process
	ServiceName string `toml:"service_name"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			GRPCAddress:    ":8080",
			MetricsAddress: ":9090",
		},
		Storage: StorageConfig{
			Driver: "postgres",
			Postgres: PostgresConfig{
				DSN:          "host=localhost port=5432 user=postgres password=postgres dbname=wealthflow sslmode=disable",
				MaxOpenConns: 10,
				ConnectRetry: "10s",
			},
			Bolt: BoltConfig{Path: "data/ledger.db"},
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			Issuer:      "wealthflow-ledger",
			TokenExpiry: "24h",
		},
		Ledger: LedgerConfig{
			ProjectionMonths:    5,
			MaxProjectionMonths: 120,
			MaxWriteAttempts:    3,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			ServiceName: "wealthflow-ledger",
		},
	}
}

// LoadConfig loads configuration from files with .env and environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// A missing .env file is not an error
	_ = godotenv.Load()

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("LEDGER_ENV"); v != "" {
		config.Environment = v
	}
	if v := os.Getenv("LEDGER_GRPC_ADDRESS"); v != "" {
		config.Server.GRPCAddress = v
	}
	if v := os.Getenv("LEDGER_METRICS_ADDRESS"); v != "" {
		config.Server.MetricsAddress = v
	}
	if v := os.Getenv("LEDGER_STORAGE_DRIVER"); v != "" {
		config.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("LEDGER_DB_CONN_STR"); v != "" {
		config.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("LEDGER_BOLT_PATH"); v != "" {
		config.Storage.Bolt.Path = v
	}
	if v := os.Getenv("LEDGER_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("LEDGER_PROJECTION_MONTHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Ledger.ProjectionMonths = n
		}
	}
	if v := os.Getenv("LEDGER_MAX_PROJECTION_MONTHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Ledger.MaxProjectionMonths = n
		}
	}
	if v := os.Getenv("LEDGER_MAX_WRITE_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Ledger.MaxWriteAttempts = n
		}
	}
	if v := os.Getenv("LEDGER_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("LEDGER_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
	if v := os.Getenv("LEDGER_OTEL_ENDPOINT"); v != "" {
		config.Tracing.Endpoint = v
	}
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "bolt":
	default:
		return fmt.Errorf("unsupported storage driver %q (want postgres or bolt)", c.Storage.Driver)
	}
	if c.Ledger.MaxWriteAttempts < 1 {
		return fmt.Errorf("ledger.max_write_attempts must be at least 1, got %d", c.Ledger.MaxWriteAttempts)
	}
	if c.Ledger.ProjectionMonths < 1 {
		return fmt.Errorf("ledger.projection_months must be at least 1, got %d", c.Ledger.ProjectionMonths)
	}
	if c.Ledger.MaxProjectionMonths < c.Ledger.ProjectionMonths {
		return fmt.Errorf("ledger.max_projection_months (%d) must not be below ledger.projection_months (%d)",
			c.Ledger.MaxProjectionMonths, c.Ledger.ProjectionMonths)
	}
	if c.IsProduction() && c.Auth.JWTSecret == NewDefaultConfig().Auth.JWTSecret {
		return fmt.Errorf("auth.jwt_secret must be changed in production")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
