package ports

import (
	"context"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
)

//counterfeiter:generate -o ../mocks/health_checker.go . HealthChecker

type HealthChecker interface {
	Liveness(ctx context.Context) (*model.LivenessReport, error)
	Readiness(ctx context.Context) (*model.ReadinessReport, error)
}
