// Package prometheus implements metrics.Client on top of a dedicated
// Prometheus registry. Instruments are created lazily on first use: keys
// ending in a duration or ratio suffix become histograms, everything else
// a counter.
package prometheus

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/architeacher/erp-shell/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
)

var histogramSuffixes = []string{"_seconds", "_duration", "_ratio"}

type (
	MetricsClient struct {
		namespace string
		registry  *prometheus.Registry

		mu         sync.Mutex
		counters   map[string]*prometheus.CounterVec
		histograms map[string]*prometheus.HistogramVec
		labels     map[string][]string
	}
)

var _ metrics.Client = (*MetricsClient)(nil)

func NewMetricsClient(namespace string) *MetricsClient {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsClient{
		namespace:  sanitizeName(namespace),
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		labels:     make(map[string][]string),
	}
}

func (c *MetricsClient) Inc(_ context.Context, key string, value any, attributes ...attribute.KeyValue) {
	amount, ok := metrics.ToFloat64(value)
	if !ok {
		return
	}

	name := sanitizeName(key)
	labelNames, labelValues := splitAttributes(attributes)

	c.mu.Lock()
	defer c.mu.Unlock()

	if known, exists := c.labels[name]; exists && !slices.Equal(known, labelNames) {
		return
	}

	if isHistogram(name) {
		histogram, err := c.histogram(name, labelNames)
		if err != nil {
			return
		}

		histogram.WithLabelValues(labelValues...).Observe(amount)

		return
	}

	if amount < 0 {
		return
	}

	counter, err := c.counter(name, labelNames)
	if err != nil {
		return
	}

	counter.WithLabelValues(labelValues...).Add(amount)
}

func (c *MetricsClient) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Gatherer exposes the dedicated registry.
func (c *MetricsClient) Gatherer() prometheus.Gatherer {
	return c.registry
}

func (c *MetricsClient) Shutdown(_ context.Context) error {
	return nil
}

func (c *MetricsClient) counter(name string, labelNames []string) (*prometheus.CounterVec, error) {
	if counter, ok := c.counters[name]; ok {
		return counter, nil
	}

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      "Counter " + name,
	}, labelNames)

	if err := c.registry.Register(counter); err != nil {
		return nil, err
	}

	c.counters[name] = counter
	c.labels[name] = labelNames

	return counter, nil
}

func (c *MetricsClient) histogram(name string, labelNames []string) (*prometheus.HistogramVec, error) {
	if histogram, ok := c.histograms[name]; ok {
		return histogram, nil
	}

	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      "Histogram " + name,
		Buckets:   prometheus.DefBuckets,
	}, labelNames)

	if err := c.registry.Register(histogram); err != nil {
		return nil, err
	}

	c.histograms[name] = histogram
	c.labels[name] = labelNames

	return histogram, nil
}

func isHistogram(name string) bool {
	for _, suffix := range histogramSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}

func splitAttributes(attributes []attribute.KeyValue) ([]string, []string) {
	names := make([]string, 0, len(attributes))
	values := make([]string, 0, len(attributes))

	for _, attr := range attributes {
		names = append(names, sanitizeName(string(attr.Key)))
		values = append(values, attr.Value.Emit())
	}

	return names, values
}

func sanitizeName(name string) string {
	var b strings.Builder

	b.Grow(len(name))

	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && i > 0:
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return b.String()
}
