// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// DatabaseURL is the Postgres DSN for the session store; empty until DB is wired.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// BeaconNamespaceUUID is the single deployment-wide namespace UUID carried in every
	// beacon payload. All encoders and scanners in one deployment must share this value.
	BeaconNamespaceUUID string `mapstructure:"BEACON_NAMESPACE_UUID"`
	// TokenLength is the number of characters in a session token (default 13).
	TokenLength int `mapstructure:"TOKEN_LENGTH"`
	// TokenMinEntropyBits is the security floor for token entropy (default 60).
	// Startup fails when TOKEN_LENGTH over the fixed alphabet cannot clear it.
	TokenMinEntropyBits float64 `mapstructure:"TOKEN_MIN_ENTROPY_BITS"`
	// DuplicateWindowSeconds is the client-side cool-down after a check-in attempt
	// for the same session and subject (default 30).
	DuplicateWindowSeconds int `mapstructure:"DUPLICATE_WINDOW_SECONDS"`
	// SessionDefaultTTL is the session lifetime used when a create request carries
	// no explicit TTL (e.g. "1h").
	SessionDefaultTTL string `mapstructure:"SESSION_DEFAULT_TTL"`
	// StoreTimeout is the per-call bound on a resolve or record store operation (e.g. "2s").
	// Operations that exceed it are treated as transient failures and retried by the caller.
	StoreTimeout string `mapstructure:"STORE_TIMEOUT"`
	// OTLPEndpoint is the OTLP gRPC endpoint for metrics (e.g. http://localhost:4317).
	// Empty disables telemetry export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// defaultNamespaceUUID is used when BEACON_NAMESPACE_UUID is unset. Deployments that
// run more than one instance of the system should override it so their beacons do not mix.
const defaultNamespaceUUID = "c9d3f8a2-5b1e-4e7a-9f64-2d08c1a4b7e3"

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("BEACON_NAMESPACE_UUID", defaultNamespaceUUID)
	v.SetDefault("TOKEN_LENGTH", 13)
	v.SetDefault("TOKEN_MIN_ENTROPY_BITS", 60.0)
	v.SetDefault("DUPLICATE_WINDOW_SECONDS", 30)
	v.SetDefault("SESSION_DEFAULT_TTL", "1h")
	v.SetDefault("STORE_TIMEOUT", "2s")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if _, err := uuid.Parse(cfg.BeaconNamespaceUUID); err != nil {
		return nil, fmt.Errorf("config: BEACON_NAMESPACE_UUID is not a valid UUID: %w", err)
	}
	if cfg.TokenLength <= 0 {
		return nil, errors.New("config: TOKEN_LENGTH must be positive")
	}
	if cfg.TokenMinEntropyBits <= 0 {
		return nil, errors.New("config: TOKEN_MIN_ENTROPY_BITS must be positive")
	}
	if cfg.DuplicateWindowSeconds < 0 {
		return nil, errors.New("config: DUPLICATE_WINDOW_SECONDS must not be negative")
	}

	return &cfg, nil
}

// NamespaceUUID returns the parsed namespace UUID. Load validated it, so this never fails.
func (c *Config) NamespaceUUID() uuid.UUID {
	return uuid.MustParse(c.BeaconNamespaceUUID)
}

// DuplicateWindow returns the client-side cool-down as a duration.
func (c *Config) DuplicateWindow() time.Duration {
	return time.Duration(c.DuplicateWindowSeconds) * time.Second
}

// DefaultTTL parses SessionDefaultTTL as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) DefaultTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionDefaultTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// StoreCallTimeout parses StoreTimeout as a time.Duration. Returns 2s if unset or invalid.
func (c *Config) StoreCallTimeout() time.Duration {
	d, err := time.ParseDuration(c.StoreTimeout)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}
