package commands

import (
	"context"

	"github.com/architeacher/erp-shell/pkg/decorator"
	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/pkg/metrics"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	UnmountDashboardViewCommand struct {
		ID model.ViewID
	}

	UnmountDashboardViewResult struct {
		Success bool
	}

	UnmountDashboardViewCommandHandler = decorator.CommandHandler[UnmountDashboardViewCommand, UnmountDashboardViewResult]

	unmountDashboardViewCommandHandler struct {
		views ports.DashboardViews
	}
)

func NewUnmountDashboardViewCommandHandler(
	views ports.DashboardViews,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) UnmountDashboardViewCommandHandler {
	return decorator.ApplyCommandDecorators[UnmountDashboardViewCommand, UnmountDashboardViewResult](
		unmountDashboardViewCommandHandler{views: views},
		log,
		metricsClient,
		tracerProvider,
	)
}

// Handle tears the view down; a probe still in flight is cancelled and its
// outcome discarded.
func (h unmountDashboardViewCommandHandler) Handle(_ context.Context, cmd UnmountDashboardViewCommand) (UnmountDashboardViewResult, error) {
	if _, err := h.views.Remove(cmd.ID); err != nil {
		return UnmountDashboardViewResult{Success: false}, err
	}

	return UnmountDashboardViewResult{Success: true}, nil
}
