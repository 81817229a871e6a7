package runtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/pkg/metrics"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/repos"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/config"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/ports"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases"
	"github.com/throttled/throttled/v2"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	infrastructureDep struct {
		publicHttpServer *http.Server
		adminHttpServer  *http.Server
		logger           logger.Logger
		metricsClient    metrics.Client
		tracerProvider   otelTrace.TracerProvider
	}

	repositories struct {
		views          *repos.ViewsRepository
		rateLimitStore throttled.GCRAStoreCtx
	}

	servicesDep struct {
		backend       ports.BackendHealthChecker
		healthChecker ports.HealthChecker
	}

	applications struct {
		webApp *usecases.WebApplication
	}

	dependencies struct {
		config       *config.ServiceConfig
		configLoader *config.Loader

		infra infrastructureDep

		repos repositories

		services servicesDep

		apps applications

		cleanupFuncs map[string]func(ctx context.Context) error
	}

	DependencyOption func(*dependencies) error
)

func initializeDependencies(opts ...DependencyOption) (*dependencies, error) {
	deps := &dependencies{
		cleanupFuncs: make(map[string]func(ctx context.Context) error),
	}

	allOpts := append(defaultOptions(), opts...)

	for _, opt := range allOpts {
		if err := opt(deps); err != nil {
			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}
