package http

import (
	"net/http"

	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/pkg/metrics"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/handlers/admin"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// AdminRouterConfig holds dependencies for the admin router.
type AdminRouterConfig struct {
	App           *usecases.WebApplication
	Logger        logger.Logger
	MetricsClient metrics.Client
}

// NewAdminRouter creates a router for internal admin endpoints.
// These endpoints are intended to run on a separate internal port.
func NewAdminRouter(cfg AdminRouterConfig) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Recovery(cfg.Logger))

	adminHandler := admin.NewAdminHandler(cfg.App)

	router.Get("/admin/liveness", adminHandler.LivenessCheck)
	router.Get("/admin/readiness", adminHandler.ReadinessCheck)
	router.Get("/admin/views", adminHandler.ListViews)
	router.Get("/admin/system", adminHandler.SystemInfo)
	router.Handle("/metrics", cfg.MetricsClient.Handler())

	return router
}
