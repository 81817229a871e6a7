package queries

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
	ListDashboardViewsQuery struct{}

	ListDashboardViewsQueryHandler = decorator.QueryHandler[ListDashboardViewsQuery, []model.DashboardSnapshot]

	listDashboardViewsQueryHandler struct {
		views ports.DashboardViews
	}
)

func NewListDashboardViewsQueryHandler(
	views ports.DashboardViews,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ListDashboardViewsQueryHandler {
	return decorator.ApplyQueryDecorators[ListDashboardViewsQuery, []model.DashboardSnapshot](
		listDashboardViewsQueryHandler{views: views},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h listDashboardViewsQueryHandler) Execute(_ context.Context, _ ListDashboardViewsQuery) ([]model.DashboardSnapshot, error) {
	views := h.views.List()

	snapshots := make([]model.DashboardSnapshot, 0, len(views))
	for _, view := range views {
		snapshots = append(snapshots, view.Snapshot())
	}

	return snapshots, nil
}
