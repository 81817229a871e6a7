package queries

import (
	"context"
	"time"

	"github.com/architeacher/erp-shell/pkg/decorator"
	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/pkg/metrics"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	GetDashboardViewQuery struct {
		ID model.ViewID
	}

	GetDashboardViewQueryHandler = decorator.QueryHandler[GetDashboardViewQuery, *model.DashboardView]

	getDashboardViewQueryHandler struct {
		views ports.DashboardViews
		now   func() time.Time
	}
)

func NewGetDashboardViewQueryHandler(
	views ports.DashboardViews,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) GetDashboardViewQueryHandler {
	return decorator.ApplyQueryDecorators[GetDashboardViewQuery, *model.DashboardView](
		getDashboardViewQueryHandler{views: views, now: time.Now},
		log,
		metricsClient,
		tracerProvider,
	)
}

// Execute looks the view up and keeps it from being swept as idle.
func (h getDashboardViewQueryHandler) Execute(_ context.Context, query GetDashboardViewQuery) (*model.DashboardView, error) {
	return h.views.Get(query.ID, h.now())
}
