package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "identity-service", cfg.Service.Name)
	assert.Equal(t, "8080", cfg.Service.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 32, cfg.Auth.TokenLength)
	assert.Equal(t, 3600, cfg.Auth.SessionTTL)
	assert.Equal(t, 1800, cfg.Auth.ResetLinkTTL)
	assert.Equal(t, time.Hour, cfg.GetSessionTTLDuration())
	assert.Equal(t, 30*time.Minute, cfg.GetResetLinkTTLDuration())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVICE_PORT", "9090")
	t.Setenv("AUTH_TOKEN_LENGTH", "16")
	t.Setenv("AUTH_SESSION_TTL_SECONDS", "120")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Service.Port)
	assert.Equal(t, 16, cfg.Auth.TokenLength)
	assert.Equal(t, 2*time.Minute, cfg.GetSessionTTLDuration())
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("AUTH_TOKEN_LENGTH", "not-a-number")
	t.Setenv("TRACING_SAMPLE_RATE", "lots")

	cfg := Load()

	assert.Equal(t, 32, cfg.Auth.TokenLength)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRate)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Load()
		cfg.Database.URL = "postgres://localhost:5432/identity"
		return cfg
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Database.URL = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Auth.TokenLength = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Auth.SessionTTL = -1
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Tracing.SampleRate = 1.5
	assert.Error(t, cfg.Validate())
}
