// Package noop backs metrics.Client when METRICS_ENABLED is false.
package noop

import (
	"context"
	"net/http"

	"github.com/architeacher/erp-shell/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
)

const disabledMessage = "metrics collection is disabled\n"

var _ metrics.Client = MetricsClient{}

type MetricsClient struct{}

func NewMetricsClient() MetricsClient {
	return MetricsClient{}
}

// Inc drops the sample.
func (MetricsClient) Inc(context.Context, string, any, ...attribute.KeyValue) {}

// Handler answers scrapes with 404 and a short plain-text reason, so a
// misconfigured scraper shows why the endpoint is empty.
func (MetricsClient) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(disabledMessage))
	})
}

func (MetricsClient) Shutdown(context.Context) error {
	return nil
}
