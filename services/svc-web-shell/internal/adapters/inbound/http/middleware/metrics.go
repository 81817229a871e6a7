package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/architeacher/erp-shell/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
)

const (
	httpMethodKey     = "http.method"
	httpRouteKey      = "http.route"
	httpStatusCodeKey = "http.status_code"

	httpRequestTotal    = "http_requests_total"
	httpRequestDuration = "http_request_duration_seconds"
	httpResponseSize    = "http_response_size_bytes"

	unmatchedRoute = "unmatched"
)

type MetricsMiddleware struct {
	metricsClient metrics.Client
}

func NewMetricsMiddleware(metricsClient metrics.Client) *MetricsMiddleware {
	return &MetricsMiddleware{
		metricsClient: metricsClient,
	}
}

func (m *MetricsMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		wrapped := NewFlushableResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		m.recordHTTPRequest(
			r.Context(),
			r.Method,
			routePattern(r),
			wrapped.StatusCode(),
			time.Since(startTime),
			wrapped.BytesWritten(),
		)
	})
}

func (m *MetricsMiddleware) recordHTTPRequest(
	ctx context.Context,
	method, route string,
	statusCode int,
	duration time.Duration,
	responseSize uint64,
) {
	attrs := []attribute.KeyValue{
		attribute.String(httpMethodKey, method),
		attribute.String(httpRouteKey, route),
		attribute.String(httpStatusCodeKey, strconv.Itoa(statusCode)),
	}

	m.metricsClient.Inc(ctx, httpRequestTotal, 1, attrs...)
	m.metricsClient.Inc(ctx, httpRequestDuration, duration.Seconds(), attrs...)
	m.metricsClient.Inc(ctx, httpResponseSize, responseSize, attrs...)
}

// routePattern labels by chi route so view ids do not explode cardinality.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}

	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}

	return unmatchedRoute
}
