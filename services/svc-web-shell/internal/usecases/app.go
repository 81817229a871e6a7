package usecases

import (
	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/pkg/metrics"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/ports"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases/commands"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases/queries"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Commands struct {
		MountDashboardView   commands.MountDashboardViewCommandHandler
		UnmountDashboardView commands.UnmountDashboardViewCommandHandler
		SweepIdleViews       commands.SweepIdleViewsCommandHandler
	}

	Queries struct {
		GetDashboardView   queries.GetDashboardViewQueryHandler
		ListDashboardViews queries.ListDashboardViewsQueryHandler
		FetchLiveness      queries.FetchLivenessQueryHandler
		FetchReadiness     queries.FetchReadinessQueryHandler
	}

	WebApplication struct {
		Commands Commands
		Queries  Queries
	}
)

func NewWebApplication(
	views ports.DashboardViews,
	backend ports.BackendHealthChecker,
	healthChecker ports.HealthChecker,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) *WebApplication {
	return &WebApplication{
		Commands: Commands{
			MountDashboardView:   commands.NewMountDashboardViewCommandHandler(views, backend, log, metricsClient, tracerProvider),
			UnmountDashboardView: commands.NewUnmountDashboardViewCommandHandler(views, log, metricsClient, tracerProvider),
			SweepIdleViews:       commands.NewSweepIdleViewsCommandHandler(views, log, metricsClient, tracerProvider),
		},
		Queries: Queries{
			GetDashboardView:   queries.NewGetDashboardViewQueryHandler(views, log, metricsClient, tracerProvider),
			ListDashboardViews: queries.NewListDashboardViewsQueryHandler(views, log, metricsClient, tracerProvider),
			FetchLiveness:      queries.NewFetchLivenessQueryHandler(healthChecker, log, metricsClient, tracerProvider),
			FetchReadiness:     queries.NewFetchReadinessQueryHandler(healthChecker, log, metricsClient, tracerProvider),
		},
	}
}
