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
	FetchLivenessQuery struct{}

	FetchLivenessQueryHandler = decorator.QueryHandler[FetchLivenessQuery, *model.LivenessReport]
)

// NewFetchLivenessQueryHandler reports whether the shell process is up. It
// never consults the ERP backend; that belongs to readiness.
func NewFetchLivenessQueryHandler(
	healthChecker ports.HealthChecker,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchLivenessQueryHandler {
	fetch := func(ctx context.Context, _ FetchLivenessQuery) (*model.LivenessReport, error) {
		report, err := healthChecker.Liveness(ctx)
		if err != nil || report == nil {
			return report, err
		}

		if report.Timestamp.IsZero() {
			report.Timestamp = time.Now()
		}

		report.Timestamp = report.Timestamp.UTC()

		return report, nil
	}

	return decorator.ApplyQueryDecorators[FetchLivenessQuery, *model.LivenessReport](
		decorator.QueryHandlerFunc[FetchLivenessQuery, *model.LivenessReport](fetch),
		log,
		metricsClient,
		tracerProvider,
	)
}
