package http

import (
	"fmt"
	"net/http"

	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/pkg/metrics"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/handlers/public"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/views"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/config"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const (
	apiPrefix = "/api"
)

type RouterConfig struct {
	App            *usecases.WebApplication
	Logger         logger.Logger
	MetricsClient  metrics.Client
	TracerProvider otelTrace.TracerProvider
	Config         *config.ServiceConfig

	// RateLimitStore defaults to an in-memory store sized by the config.
	RateLimitStore throttled.GCRAStoreCtx
}

// NewRouter wires the public surface: the rendered shell pages, the static
// assets and the view API the pages talk to.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	assets, err := views.LoadAssets()
	if err != nil {
		return nil, fmt.Errorf("loading static assets: %w", err)
	}

	renderer, err := views.NewRenderer(cfg.Config.App.ProductName, assets)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	handler := public.NewShellHandler(
		cfg.App,
		renderer,
		assets,
		cfg.Logger,
		public.WithAllowedOrigins(cfg.Config.PublicHTTPServer.AllowedOrigins),
	)

	router := chi.NewRouter()

	// Core middlewares - always applied
	router.Use(middleware.RequestTracking())
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Config.PublicHTTPServer.AllowedOrigins))

	if cfg.Config.Telemetry.Traces.Enabled {
		router.Use(middleware.Tracer(cfg.Config.App.ServiceName, cfg.TracerProvider))
		cfg.Logger.Info().Msg("distributed tracing enabled")
	}

	if cfg.Config.Telemetry.Metrics.Enabled {
		metricsMiddleware := middleware.NewMetricsMiddleware(cfg.MetricsClient)
		router.Use(metricsMiddleware.Middleware)
		cfg.Logger.Info().Msg("HTTP metrics collection enabled")
	}

	// Access logging with health check filtering
	if cfg.Config.Logging.AccessLog.Enabled {
		healthFilter := middleware.NewHealthCheckFilter(cfg.Config.Logging.AccessLog.LogHealthChecks)
		accessLogger := middleware.NewAccessLogger(cfg.Logger, cfg.Config.Logging.AccessLog.IncludeQueryParams)

		router.Use(healthFilter.Middleware)
		router.Use(accessLogger.Middleware)
		cfg.Logger.Info().
			Bool("log_health_checks", cfg.Config.Logging.AccessLog.LogHealthChecks).
			Msg("structured access logging enabled")
	}

	if cfg.Config.Compression.Enabled {
		router.Use(middleware.Compression(cfg.Config.Compression, cfg.Logger, cfg.MetricsClient))
	}

	router.NotFound(handler.NotFound)

	timeout := chimiddleware.Timeout(cfg.Config.PublicHTTPServer.RequestTimeout)

	router.Group(func(r chi.Router) {
		r.Use(timeout)

		r.Get("/", handler.Dashboard)
		r.Get("/dashboard", handler.Dashboard)
		r.Get(views.StaticPrefix+"*", handler.Static)
		r.Head(views.StaticPrefix+"*", handler.Static)
	})

	apiMiddlewares, err := apiMiddlewares(cfg)
	if err != nil {
		return nil, err
	}

	router.Route(apiPrefix, func(r chi.Router) {
		r.Use(apiMiddlewares...)

		r.With(timeout).Get("/views/{"+public.ViewIDParam+"}/health", handler.GetViewHealth)
		r.With(timeout).Delete("/views/{"+public.ViewIDParam+"}", handler.UnmountView)

		// Long lived socket: no request timeout.
		r.Get("/views/{"+public.ViewIDParam+"}/events", handler.ViewEvents)
	})

	return router, nil
}

func apiMiddlewares(cfg RouterConfig) ([]func(http.Handler) http.Handler, error) {
	var mws []func(http.Handler) http.Handler

	if cfg.Config.ThrottledRateLimiting.Enabled {
		store := cfg.RateLimitStore
		if store == nil {
			memStore, err := memstore.NewCtx(int(cfg.Config.ThrottledRateLimiting.MaxKeys))
			if err != nil {
				return nil, fmt.Errorf("creating rate limit store: %w", err)
			}

			store = memStore
		}

		limiter, err := middleware.ThrottledRateLimiting(cfg.Config.ThrottledRateLimiting, store, cfg.Logger)
		if err != nil {
			return nil, fmt.Errorf("creating rate limiter: %w", err)
		}

		mws = append(mws, limiter)
		cfg.Logger.Info().
			Uint("requests_per_second", cfg.Config.ThrottledRateLimiting.RequestsPerSecond).
			Uint("burst_size", cfg.Config.ThrottledRateLimiting.BurstSize).
			Msg("API rate limiting enabled")
	}

	doc, err := public.GetOpenAPI()
	if err != nil {
		return nil, err
	}

	validator, err := middleware.OpenAPIRequestValidator(doc, middleware.RequestValidatorOptions{
		Options: openapi3filter.Options{
			MultiError: false,
		},
		PathPrefix: apiPrefix + "/",
	})
	if err != nil {
		return nil, err
	}

	return append(mws, validator), nil
}
