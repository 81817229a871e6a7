package config

import (
	"fmt"
	"time"
)

// Compile time variables are set by -ldflags.
var (
	ServiceVersion string
	CommitSHA      string
)

const (
	Development = 1 << iota
	Sandbox
	Staging
	Production
)

type (
	ServiceConfig struct {
		App                     App                     `json:"app"`
		Backend                 Backend                 `json:"backend"`
		PublicHTTPServer        PublicHTTPServer        `json:"public_http_server"`
		AdminHTTPServer         AdminHTTPServer         `json:"admin_http_server"`
		Views                   Views                   `json:"views"`
		ReadinessCircuitBreaker ReadinessCircuitBreaker `json:"readiness_circuit_breaker"`
		ProbeWait               ProbeWait               `json:"probe_wait"`
		ThrottledRateLimiting   ThrottledRateLimiting   `json:"throttled_rate_limiting"`
		Compression             Compression             `json:"compression"`
		Logging                 Logging                 `json:"logging"`
		Telemetry               Telemetry               `json:"telemetry"`
	}

	App struct {
		ServiceName string      `envconfig:"APP_SERVICE_NAME" default:"svc-web-shell" json:"service_name"`
		ProductName string      `envconfig:"APP_PRODUCT_NAME" default:"HAÜSA ERP" json:"product_name"`
		Env         Environment `json:"environment"`
	}

	Environment struct {
		Name string `envconfig:"APP_ENVIRONMENT" default:"development" json:"env"`
	}

	// Backend points at the external ERP API. BaseURL has no default.
	Backend struct {
		BaseURL       string `envconfig:"BACKEND_URL" json:"base_url"`
		LegacyBaseURL string `envconfig:"REACT_APP_BACKEND_URL" json:"-"`
	}

	PublicHTTPServer struct {
		Host            string        `envconfig:"HTTP_SERVER_HOST" default:"0.0.0.0" json:"host"`
		Port            uint          `envconfig:"HTTP_SERVER_PORT" default:"3000" json:"port"`
		ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s" json:"read_timeout"`
		WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s" json:"write_timeout"`
		IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s" json:"idle_timeout"`
		ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"30s" json:"shutdown_timeout"`
		RequestTimeout  time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"10s" json:"request_timeout"`
		AllowedOrigins  []string      `envconfig:"HTTP_CORS_ALLOWED_ORIGINS" default:"*" json:"allowed_origins"`
	}

	AdminHTTPServer struct {
		Enabled         bool          `envconfig:"ADMIN_HTTP_SERVER_ENABLED" default:"true" json:"enabled"`
		Host            string        `envconfig:"ADMIN_HTTP_SERVER_HOST" default:"127.0.0.1" json:"host"`
		Port            uint          `envconfig:"ADMIN_HTTP_SERVER_PORT" default:"3001" json:"port"`
		ReadTimeout     time.Duration `envconfig:"ADMIN_HTTP_READ_TIMEOUT" default:"15s" json:"read_timeout"`
		WriteTimeout    time.Duration `envconfig:"ADMIN_HTTP_WRITE_TIMEOUT" default:"15s" json:"write_timeout"`
		IdleTimeout     time.Duration `envconfig:"ADMIN_HTTP_IDLE_TIMEOUT" default:"60s" json:"idle_timeout"`
		ShutdownTimeout time.Duration `envconfig:"ADMIN_HTTP_SHUTDOWN_TIMEOUT" default:"30s" json:"shutdown_timeout"`
	}

	// Views bounds the lifetime of mounted dashboard views.
	Views struct {
		IdleTTL       time.Duration `envconfig:"VIEWS_IDLE_TTL" default:"5m" json:"idle_ttl"`
		SweepInterval time.Duration `envconfig:"VIEWS_SWEEP_INTERVAL" default:"30s" json:"sweep_interval"`
		MaxMounted    uint          `envconfig:"VIEWS_MAX_MOUNTED" default:"10000" json:"max_mounted"`
	}

	ReadinessCircuitBreaker struct {
		Enabled          bool          `envconfig:"READINESS_CB_ENABLED" default:"true" json:"enabled"`
		MaxRequests      uint          `envconfig:"READINESS_CB_MAX_REQUESTS" default:"1" json:"max_requests"`
		Interval         time.Duration `envconfig:"READINESS_CB_INTERVAL" default:"60s" json:"interval"`
		Timeout          time.Duration `envconfig:"READINESS_CB_TIMEOUT" default:"30s" json:"timeout"`
		FailureThreshold uint          `envconfig:"READINESS_CB_FAILURE_THRESHOLD" default:"3" json:"failure_threshold"`
		ProbeTimeout     time.Duration `envconfig:"READINESS_PROBE_TIMEOUT" default:"2s" json:"probe_timeout"`
	}

	// ProbeWait drives the CLI "probe --wait" loop only.
	ProbeWait struct {
		InitialInterval time.Duration `envconfig:"PROBE_WAIT_INITIAL_INTERVAL" default:"500ms" json:"initial_interval"`
		Multiplier      float64       `envconfig:"PROBE_WAIT_MULTIPLIER" default:"1.5" json:"multiplier"`
		MaxInterval     time.Duration `envconfig:"PROBE_WAIT_MAX_INTERVAL" default:"10s" json:"max_interval"`
		MaxElapsedTime  time.Duration `envconfig:"PROBE_WAIT_MAX_ELAPSED" default:"2m" json:"max_elapsed_time"`
	}

	ThrottledRateLimiting struct {
		Enabled           bool     `envconfig:"RATE_LIMITING_ENABLED" default:"true" json:"enabled"`
		RequestsPerSecond uint     `envconfig:"RATE_LIMITING_REQUESTS_PER_SECOND" default:"20" json:"requests_per_second"`
		BurstSize         uint     `envconfig:"RATE_LIMITING_BURST_SIZE" default:"40" json:"burst_size"`
		MaxKeys           uint     `envconfig:"RATE_LIMITING_MAX_KEYS" default:"65536" json:"max_keys"`
		SkipPaths         []string `envconfig:"RATE_LIMITING_SKIP_PATHS" default:"/static/" json:"skip_paths"`
	}

	Compression struct {
		Enabled bool `envconfig:"COMPRESSION_ENABLED" default:"true" json:"enabled"`

		// Level is 1 (fastest) to 9 (smallest).
		Level int `envconfig:"COMPRESSION_LEVEL" default:"5" json:"level"`

		// MinSize in bytes below which responses are sent as-is.
		MinSize      int      `envconfig:"COMPRESSION_MIN_SIZE" default:"1024" json:"min_size"`
		ContentTypes []string `envconfig:"COMPRESSION_CONTENT_TYPES" json:"content_types"`
		SkipPaths    []string `envconfig:"COMPRESSION_SKIP_PATHS" default:"/api/views/" json:"skip_paths"`
	}

	Logging struct {
		Level     string    `envconfig:"LOG_LEVEL" default:"info" json:"level"`
		Format    string    `envconfig:"LOG_FORMAT" default:"json" json:"format"`
		AccessLog AccessLog `json:"access_log"`
		File      LogFile   `json:"file"`
	}

	AccessLog struct {
		Enabled            bool `envconfig:"ACCESS_LOG_ENABLED" default:"true" json:"enabled"`
		LogHealthChecks    bool `envconfig:"ACCESS_LOG_HEALTH_CHECKS" default:"false" json:"log_health_checks"`
		IncludeQueryParams bool `envconfig:"ACCESS_LOG_INCLUDE_QUERY_PARAMS" default:"true" json:"include_query_params"`
	}

	LogFile struct {
		Path       string `envconfig:"LOG_FILE_PATH" default:"" json:"path,omitempty"`
		MaxSizeMB  int    `envconfig:"LOG_FILE_MAX_SIZE_MB" default:"100" json:"max_size_mb"`
		MaxBackups int    `envconfig:"LOG_FILE_MAX_BACKUPS" default:"5" json:"max_backups"`
		MaxAgeDays int    `envconfig:"LOG_FILE_MAX_AGE_DAYS" default:"30" json:"max_age_days"`
		Compress   bool   `envconfig:"LOG_FILE_COMPRESS" default:"true" json:"compress"`
	}

	Telemetry struct {
		ExporterType string `envconfig:"OTEL_EXPORTER" default:"grpc" json:"exporter_type"`

		OtelGRPCHost       string `envconfig:"OTEL_HOST" json:"otel_grpc_host"`
		OtelGRPCPort       string `envconfig:"OTEL_PORT" default:"4317" json:"otel_grpc_port"`
		OtelProductCluster string `envconfig:"OTEL_PRODUCT_CLUSTER" json:"otel_product_cluster"`

		Metrics Metrics `json:"metrics"`
		Traces  Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled   bool   `envconfig:"METRICS_ENABLED" default:"true" json:"enabled"`
		Namespace string `envconfig:"METRICS_NAMESPACE" default:"erp_shell" json:"namespace"`
	}

	Traces struct {
		Enabled      bool    `envconfig:"TRACES_ENABLED" default:"false" json:"enabled"`
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1.0" json:"sampler_ratio"`
	}
)

func (c *ServiceConfig) GetEnvironment() int {
	switch c.App.Env.Name {
	case "production", "prod":
		return Production
	case "staging", "stg":
		return Staging
	case "sandbox", "sbx":
		return Sandbox
	default:
		return Development
	}
}

func (c *ServiceConfig) IsProduction() bool {
	return c.GetEnvironment() == Production
}

// BackendBaseURL resolves the backend address, preferring BACKEND_URL over
// the legacy REACT_APP_BACKEND_URL name.
func (b Backend) BackendBaseURL() string {
	if b.BaseURL != "" {
		return b.BaseURL
	}

	return b.LegacyBaseURL
}

func (c *ServiceConfig) Validate() error {
	if err := c.Compression.Validate(); err != nil {
		return err
	}

	if c.Views.IdleTTL <= 0 {
		return fmt.Errorf("views idle ttl must be positive, got %s", c.Views.IdleTTL)
	}

	if c.Views.SweepInterval <= 0 {
		return fmt.Errorf("views sweep interval must be positive, got %s", c.Views.SweepInterval)
	}

	if c.Views.MaxMounted == 0 {
		return fmt.Errorf("views max mounted must be positive")
	}

	return nil
}

func (c *Compression) Validate() error {
	if c.Level < 1 || c.Level > 9 {
		return fmt.Errorf("compression level must be between 1 and 9, got %d", c.Level)
	}

	if c.MinSize < 0 {
		return fmt.Errorf("compression min_size must be non-negative, got %d", c.MinSize)
	}

	return nil
}
