package config

import (
	"bytes"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Setenv("APP_ENVIRONMENT", "sandbox")
	t.Setenv("APP_SERVICE_NAME", "svc-web-shell")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BACKEND_URL", "http://erp-api:8001")
	t.Setenv("VIEWS_IDLE_TTL", "90s")

	cfg, err := Init(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sandbox", cfg.App.Env.Name)
	assert.Equal(t, "svc-web-shell", cfg.App.ServiceName)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "http://erp-api:8001", cfg.Backend.BackendBaseURL())
	assert.Equal(t, 90*time.Second, cfg.Views.IdleTTL)
}

func TestInit_DefaultValues(t *testing.T) {
	cfg, err := Init(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "svc-web-shell", cfg.App.ServiceName)
	assert.Equal(t, "HAÜSA ERP", cfg.App.ProductName)

	assert.Equal(t, "0.0.0.0", cfg.PublicHTTPServer.Host)
	assert.Equal(t, uint(3000), cfg.PublicHTTPServer.Port)
	assert.Equal(t, uint(3001), cfg.AdminHTTPServer.Port)

	assert.Equal(t, 5*time.Minute, cfg.Views.IdleTTL)
	assert.Equal(t, 30*time.Second, cfg.Views.SweepInterval)

	assert.True(t, cfg.ReadinessCircuitBreaker.Enabled)
	assert.Equal(t, uint(3), cfg.ReadinessCircuitBreaker.FailureThreshold)

	assert.Equal(t, []string{"/static/"}, cfg.ThrottledRateLimiting.SkipPaths)
	assert.Equal(t, 5, cfg.Compression.Level)
}

func TestInit_BackendURLHasNoDefault(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("REACT_APP_BACKEND_URL", "")

	cfg, err := Init(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Empty(t, cfg.Backend.BackendBaseURL())
}

func TestInit_LegacyBackendURL(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("REACT_APP_BACKEND_URL", "http://legacy:8001")

	cfg, err := Init(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "http://legacy:8001", cfg.Backend.BackendBaseURL())
}

func TestInit_EnvFile(t *testing.T) {
	// Registers cleanup, then clears so the env file can provide the value.
	t.Setenv("BACKEND_URL", "")
	require.NoError(t, os.Unsetenv("BACKEND_URL"))

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BACKEND_URL=http://from-file:8001\n"), 0o600))

	cfg, err := Init(envFile)
	require.NoError(t, err)
	require.Equal(t, "http://from-file:8001", cfg.Backend.BaseURL)
}

func TestInit_InvalidConfiguration(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{
			name:  "compression level out of range",
			key:   "COMPRESSION_LEVEL",
			value: "12",
		},
		{
			name:  "zero idle ttl",
			key:   "VIEWS_IDLE_TTL",
			value: "0s",
		},
		{
			name:  "unparsable duration",
			key:   "VIEWS_SWEEP_INTERVAL",
			value: "soon",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Init(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
		})
	}
}

func TestGetEnvironment(t *testing.T) {
	cases := []struct {
		name     string
		env      string
		expected int
	}{
		{name: "production", env: "production", expected: Production},
		{name: "prod shorthand", env: "prod", expected: Production},
		{name: "staging", env: "staging", expected: Staging},
		{name: "stg shorthand", env: "stg", expected: Staging},
		{name: "sandbox", env: "sandbox", expected: Sandbox},
		{name: "sbx shorthand", env: "sbx", expected: Sandbox},
		{name: "development default", env: "development", expected: Development},
		{name: "unknown defaults to development", env: "unknown", expected: Development},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &ServiceConfig{
				App: App{Env: Environment{Name: tc.env}},
			}

			assert.Equal(t, tc.expected, cfg.GetEnvironment())
			assert.Equal(t, tc.expected == Production, cfg.IsProduction())
		})
	}
}

func TestLoader_DumpConfig(t *testing.T) {
	var out bytes.Buffer

	cfg := &ServiceConfig{Backend: Backend{BaseURL: "http://erp-api:8001", LegacyBaseURL: "http://hidden"}}
	NewLoader(cfg, &out).DumpConfig()

	require.Contains(t, out.String(), "=== Configuration Dump ===")
	require.Contains(t, out.String(), `"base_url": "http://erp-api:8001"`)
	require.NotContains(t, out.String(), "http://hidden")
}

func TestLoader_ReloadKeepsBackendURL(t *testing.T) {
	cfg := &ServiceConfig{
		Backend:     Backend{BaseURL: "http://erp-api:8001"},
		Views:       Views{IdleTTL: time.Minute, SweepInterval: time.Second, MaxMounted: 1},
		Compression: Compression{Level: 5},
	}

	loader := NewLoader(cfg, &bytes.Buffer{})
	t.Setenv("BACKEND_URL", "http://changed:9999")

	loader.handleSignal(syscall.SIGHUP)

	require.NoError(t, <-loader.reloadErrors)
	require.Equal(t, "http://erp-api:8001", cfg.Backend.BaseURL)
}
