// Package config loads service configuration from the environment.
// A local .env file is honoured when present so the service can run
// outside of the deployment platform without exporting variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the identity service.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	SMTP      SMTPConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shutdown  ShutdownConfig
}

type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

type LoggingConfig struct {
	Level string
}

type DatabaseConfig struct {
	URL string
}

// AuthConfig controls token shape and credential lifetimes.
type AuthConfig struct {
	TokenLength  int
	SessionTTL   int // seconds
	ResetLinkTTL int // seconds
	ResetURLBase string
	BcryptCost   int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

type ShutdownConfig struct {
	TimeoutSeconds    int
	DrainDelaySeconds int
}

// Load reads configuration from the environment, applying defaults for
// everything except the database URL.
func Load() *Config {
	// Best-effort: absence of a .env file is not an error.
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "identity-service"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("SERVICE_ENV", "development"),
			Port:    getEnv("SERVICE_PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			TokenLength:  getEnvInt("AUTH_TOKEN_LENGTH", 32),
			SessionTTL:   getEnvInt("AUTH_SESSION_TTL_SECONDS", 3600),
			ResetLinkTTL: getEnvInt("AUTH_RESET_LINK_TTL_SECONDS", 1800),
			ResetURLBase: getEnv("AUTH_RESET_URL_BASE", "http://localhost:8080/reset"),
			BcryptCost:   getEnvInt("AUTH_BCRYPT_COST", 0),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PROFILING_ENDPOINT", "http://localhost:4040"),
		},
		Shutdown: ShutdownConfig{
			TimeoutSeconds:    getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 15),
			DrainDelaySeconds: getEnvInt("READINESS_DRAIN_DELAY_SECONDS", 0),
		},
	}
}

// Validate checks that required settings are present and sane.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Auth.TokenLength <= 0 {
		return fmt.Errorf("AUTH_TOKEN_LENGTH must be positive, got %d", c.Auth.TokenLength)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("AUTH_SESSION_TTL_SECONDS must be positive, got %d", c.Auth.SessionTTL)
	}
	if c.Auth.ResetLinkTTL <= 0 {
		return fmt.Errorf("AUTH_RESET_LINK_TTL_SECONDS must be positive, got %d", c.Auth.ResetLinkTTL)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be in [0,1], got %f", c.Tracing.SampleRate)
	}
	return nil
}

// GetSessionTTLDuration returns the session lifetime as a duration.
func (c *Config) GetSessionTTLDuration() time.Duration {
	return time.Duration(c.Auth.SessionTTL) * time.Second
}

// GetResetLinkTTLDuration returns the reset-link lifetime as a duration.
func (c *Config) GetResetLinkTTLDuration() time.Duration {
	return time.Duration(c.Auth.ResetLinkTTL) * time.Second
}

// GetShutdownTimeoutDuration returns the graceful-shutdown timeout.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.Shutdown.TimeoutSeconds) * time.Second
}

// GetReadinessDrainDelayDuration returns how long to keep serving after
// readiness starts failing, so load balancers can drain.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return time.Duration(c.Shutdown.DrainDelaySeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
