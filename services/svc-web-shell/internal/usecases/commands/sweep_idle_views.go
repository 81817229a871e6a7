package commands

import (
	"context"
	"time"

	"github.com/architeacher/erp-shell/pkg/decorator"
	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/pkg/metrics"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const MetricDashboardViewsSwept = "dashboard_views_swept_total"

type (
	SweepIdleViewsCommand struct {
		IdleTTL time.Duration
	}

	SweepIdleViewsResult struct {
		Swept     int
		Remaining int
	}

	SweepIdleViewsCommandHandler = decorator.CommandHandler[SweepIdleViewsCommand, SweepIdleViewsResult]

	sweepIdleViewsCommandHandler struct {
		views         ports.DashboardViews
		metricsClient metrics.Client
		now           func() time.Time
	}
)

func NewSweepIdleViewsCommandHandler(
	views ports.DashboardViews,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) SweepIdleViewsCommandHandler {
	return decorator.ApplyCommandDecorators[SweepIdleViewsCommand, SweepIdleViewsResult](
		sweepIdleViewsCommandHandler{
			views:         views,
			metricsClient: metricsClient,
			now:           time.Now,
		},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h sweepIdleViewsCommandHandler) Handle(ctx context.Context, cmd SweepIdleViewsCommand) (SweepIdleViewsResult, error) {
	swept := h.views.Sweep(h.now(), cmd.IdleTTL)

	if len(swept) > 0 {
		h.metricsClient.Inc(ctx, MetricDashboardViewsSwept, len(swept))
	}

	return SweepIdleViewsResult{
		Swept:     len(swept),
		Remaining: h.views.Len(),
	}, nil
}
