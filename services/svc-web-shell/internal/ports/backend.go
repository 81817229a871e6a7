//go:generate go tool github.com/maxbrunsfeld/counterfeiter/v6 -generate

// Package ports defines interface contracts for external dependencies.
package ports

import (
	"context"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
)

//counterfeiter:generate -o ../mocks/backend_health_checker.go . BackendHealthChecker

// BackendHealthChecker issues a single GET {backend}/api/health.
type BackendHealthChecker interface {
	// CheckHealth returns the probe for a 2xx answer. Any other status is
	// reported as an error wrapping model.ErrBackendUnhealthy, with the probe
	// still describing what was observed.
	CheckHealth(ctx context.Context) (*model.HealthProbe, error)
}
