package runtime

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/pkg/metrics/noop"
	"github.com/architeacher/erp-shell/pkg/metrics/prometheus"
	inboundhttp "github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/outbound/backend"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/repos"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/services"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/config"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/infrastructure"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases"
	"github.com/throttled/throttled/v2/store/memstore"
)

func defaultOptions() []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithLogger(),
		WithMetrics(),
		WithTracing(),
		WithViewsRepository(),
		WithRateLimitStore(),
		WithBackendClient(),
		WithHealthService(),
		WithApplication(),
		WithHTTPServer(),
		WithAdminHTTPServer(),
		WithConfigLoader(),
	}
}

func WithConfig() DependencyOption {
	return func(d *dependencies) error {
		cfg, err := config.Init()
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		d.config = cfg

		return nil
	}
}

func WithConfigLoader() DependencyOption {
	return func(d *dependencies) error {
		d.configLoader = config.NewLoader(d.config, os.Stdout)

		return nil
	}
}

func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		logging := d.config.Logging

		log, closer := logger.NewWithFile(logging.Level, logging.Format, logger.FileOptions{
			Path:       logging.File.Path,
			MaxSizeMB:  logging.File.MaxSizeMB,
			MaxBackups: logging.File.MaxBackups,
			MaxAgeDays: logging.File.MaxAgeDays,
			Compress:   logging.File.Compress,
		})

		d.infra.logger = log
		d.cleanupFuncs["log_file"] = func(context.Context) error {
			return closer.Close()
		}

		return nil
	}
}

func WithMetrics() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Metrics.Enabled {
			d.infra.metricsClient = noop.NewMetricsClient()

			return nil
		}

		client := prometheus.NewMetricsClient(d.config.Telemetry.Metrics.Namespace)

		d.infra.metricsClient = client
		d.cleanupFuncs["metrics"] = client.Shutdown

		return nil
	}
}

func WithTracing() DependencyOption {
	return func(d *dependencies) error {
		tp, shutdown, err := infrastructure.NewTracerProvider(d.config)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tp
		d.cleanupFuncs["tracer"] = shutdown

		return nil
	}
}

func WithViewsRepository() DependencyOption {
	return func(d *dependencies) error {
		d.repos.views = repos.NewViewsRepository(d.config.Views.MaxMounted)
		d.cleanupFuncs["dashboard_views"] = func(context.Context) error {
			return d.repos.views.Close()
		}

		return nil
	}
}

func WithRateLimitStore() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.ThrottledRateLimiting.Enabled {
			return nil
		}

		store, err := memstore.NewCtx(int(d.config.ThrottledRateLimiting.MaxKeys))
		if err != nil {
			return fmt.Errorf("creating rate limit store: %w", err)
		}

		d.repos.rateLimitStore = store

		return nil
	}
}

// WithBackendClient resolves the backend address once. An empty address
// is not fatal: every probe then reports the backend as unhealthy.
func WithBackendClient() DependencyOption {
	return func(d *dependencies) error {
		baseURL := d.config.Backend.BackendBaseURL()
		if baseURL == "" {
			d.infra.logger.Warn().Msg("BACKEND_URL is not set, every system status will report unhealthy")
		}

		d.services.backend = backend.NewClient(baseURL)

		return nil
	}
}

func WithHealthService() DependencyOption {
	return func(d *dependencies) error {
		d.services.healthChecker = services.NewHealthService(
			d.services.backend,
			d.repos.views,
			d.config.ReadinessCircuitBreaker,
		)

		return nil
	}
}

func WithApplication() DependencyOption {
	return func(d *dependencies) error {
		d.apps.webApp = usecases.NewWebApplication(
			d.repos.views,
			d.services.backend,
			d.services.healthChecker,
			d.infra.logger,
			d.infra.metricsClient,
			d.infra.tracerProvider,
		)

		return nil
	}
}

func WithHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		router, err := inboundhttp.NewRouter(inboundhttp.RouterConfig{
			App:            d.apps.webApp,
			Logger:         d.infra.logger,
			MetricsClient:  d.infra.metricsClient,
			TracerProvider: d.infra.tracerProvider,
			Config:         d.config,
			RateLimitStore: d.repos.rateLimitStore,
		})
		if err != nil {
			return fmt.Errorf("creating public router: %w", err)
		}

		cfg := d.config.PublicHTTPServer

		d.infra.publicHttpServer = &http.Server{
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		}

		return nil
	}
}

func WithAdminHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config.AdminHTTPServer
		if !cfg.Enabled {
			return nil
		}

		router := inboundhttp.NewAdminRouter(inboundhttp.AdminRouterConfig{
			App:           d.apps.webApp,
			Logger:        d.infra.logger,
			MetricsClient: d.infra.metricsClient,
		})

		d.infra.adminHttpServer = &http.Server{
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		}

		return nil
	}
}
