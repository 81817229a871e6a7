package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	HealthPath = "/api/health"

	// maxDrainBytes bounds how much of an ignored body is read so the
	// connection can be reused.
	maxDrainBytes = 64 << 10
)

// Client is the outbound adapter for the ERP backend. It never retries and
// sets no deadline of its own; cancellation comes from the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

var _ ports.BackendHealthChecker = (*Client)(nil)

func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL: baseURL,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return client
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthURL is the base URL with the health path appended verbatim.
func (c *Client) HealthURL() string {
	return c.baseURL + HealthPath
}

// CheckHealth issues exactly one GET against the health endpoint. The body is
// never interpreted; only the status code decides the outcome.
func (c *Client) CheckHealth(ctx context.Context) (*model.HealthProbe, error) {
	if c.baseURL == "" {
		return nil, model.ErrBackendURLNotConfigured
	}

	target := c.HealthURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %q: %w", model.ErrBackendUnreachable, target, err)
	}

	started := c.now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrBackendUnreachable, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		_ = resp.Body.Close()
	}()

	finished := c.now()
	probe := &model.HealthProbe{
		Target:     target,
		StatusCode: resp.StatusCode,
		Latency:    finished.Sub(started),
		CheckedAt:  finished,
	}

	if model.HealthStatusFromCode(resp.StatusCode) != model.HealthStatusHealthy {
		return probe, fmt.Errorf("%w: %s returned %d", model.ErrBackendUnhealthy, target, resp.StatusCode)
	}

	return probe, nil
}
