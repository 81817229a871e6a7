package commands

import (
	"context"
	"time"

	"github.com/architeacher/erp-shell/pkg/decorator"
	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/pkg/metrics"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/ports"
	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const (
	MetricDashboardProbes        = "dashboard_probes_total"
	MetricDashboardProbeDuration = "dashboard_probe_duration_seconds"
	MetricDashboardProbeDropped  = "dashboard_probes_discarded_total"
	MetricDashboardViewsEvicted  = "dashboard_views_evicted_total"
)

type (
	MountDashboardViewCommand struct{}

	MountDashboardViewResult struct {
		View *model.DashboardView
	}

	MountDashboardViewCommandHandler = decorator.CommandHandler[MountDashboardViewCommand, MountDashboardViewResult]

	mountDashboardViewCommandHandler struct {
		views         ports.DashboardViews
		backend       ports.BackendHealthChecker
		logger        logger.Logger
		metricsClient metrics.Client
		now           func() time.Time
	}
)

func NewMountDashboardViewCommandHandler(
	views ports.DashboardViews,
	backend ports.BackendHealthChecker,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) MountDashboardViewCommandHandler {
	return decorator.ApplyCommandDecorators[MountDashboardViewCommand, MountDashboardViewResult](
		mountDashboardViewCommandHandler{
			views:         views,
			backend:       backend,
			logger:        log,
			metricsClient: metricsClient,
			now:           time.Now,
		},
		log,
		metricsClient,
		tracerProvider,
	)
}

// Handle registers a fresh view in the checking state and starts its single
// backend probe. The probe outlives the request that mounted the view and
// ends when it resolves or when the view is unmounted.
func (h mountDashboardViewCommandHandler) Handle(ctx context.Context, _ MountDashboardViewCommand) (MountDashboardViewResult, error) {
	view := model.NewDashboardView(h.now())

	probeCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	view.BindCancel(cancel)

	if evicted := h.views.Add(view); len(evicted) > 0 {
		h.metricsClient.Inc(ctx, MetricDashboardViewsEvicted, len(evicted))

		log := h.logger.WithContext(ctx)
		log.Debug().Int("evicted", len(evicted)).Msg("dashboard view capacity reached, oldest views unmounted")
	}

	go func() {
		defer cancel()

		h.probe(probeCtx, view)
	}()

	return MountDashboardViewResult{View: view}, nil
}

func (h mountDashboardViewCommandHandler) probe(ctx context.Context, view *model.DashboardView) {
	started := h.now()

	status := model.HealthStatusHealthy

	_, err := h.backend.CheckHealth(ctx)
	if err != nil {
		status = model.HealthStatusUnhealthy

		log := h.logger.WithContext(ctx)
		log.Debug().Err(err).Str("view_id", view.ID().String()).Msg("backend health probe failed")
	}

	if ctx.Err() != nil || !view.ResolveHealth(status, h.now()) {
		h.metricsClient.Inc(ctx, MetricDashboardProbeDropped, 1)

		return
	}

	attrs := attribute.String("status", string(status))

	h.metricsClient.Inc(ctx, MetricDashboardProbes, 1, attrs)
	h.metricsClient.Inc(ctx, MetricDashboardProbeDuration, h.now().Sub(started).Seconds(), attrs)
}
