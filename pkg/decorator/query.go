package decorator

import (
	"context"

	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Query  any
	Result any

	// QueryHandler answers a read-only query. Queries never mutate views.
	QueryHandler[Q Query, R Result] interface {
		Execute(ctx context.Context, query Q) (R, error)
	}

	// QueryHandlerFunc lets a plain function serve as a QueryHandler.
	QueryHandlerFunc[Q Query, R Result] func(ctx context.Context, query Q) (R, error)
)

func (f QueryHandlerFunc[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

// ApplyQueryDecorators wraps handler as logging(metrics(tracing(handler))).
// Metrics and tracing layers are left out when their client is nil.
func ApplyQueryDecorators[Q Query, R Result](
	handler QueryHandler[Q, R],
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) QueryHandler[Q, R] {
	decorated := handler

	if tracerProvider != nil {
		decorated = queryTracingDecorator[Q, R]{base: decorated, tracerProvider: tracerProvider}
	}

	if metricsClient != nil {
		decorated = queryMetricsDecorator[Q, R]{base: decorated, client: metricsClient}
	}

	return queryLoggingDecorator[Q, R]{base: decorated, logger: log}
}
