package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/architeacher/erp-shell/pkg/circuitbreaker"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/config"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/ports"
)

const (
	BackendDependencyName = "erp-backend"
	ViewsDependencyName   = "dashboard-views"
)

// HealthService reports the shell's own health. The backend is checked
// through a circuit breaker so a dead backend is not hammered by probes;
// it only degrades readiness because the shell still renders without it.
type HealthService struct {
	backend      ports.BackendHealthChecker
	views        ports.DashboardViews
	cb           *circuitbreaker.CircuitBreaker[*model.HealthProbe]
	probeTimeout time.Duration
	now          func() time.Time
}

var _ ports.HealthChecker = (*HealthService)(nil)

func NewHealthService(
	backend ports.BackendHealthChecker,
	views ports.DashboardViews,
	cfg config.ReadinessCircuitBreaker,
	opts ...circuitbreaker.Option,
) *HealthService {
	opts = append([]circuitbreaker.Option{circuitbreaker.WithIgnoredErrors(model.ErrBackendURLNotConfigured)}, opts...)

	return &HealthService{
		backend: backend,
		views:   views,
		cb: circuitbreaker.New[*model.HealthProbe](circuitbreaker.Config{
			Name:             BackendDependencyName,
			Enabled:          cfg.Enabled,
			MaxRequests:      cfg.MaxRequests,
			Interval:         cfg.Interval,
			Timeout:          cfg.Timeout,
			FailureThreshold: cfg.FailureThreshold,
		}, opts...),
		probeTimeout: cfg.ProbeTimeout,
		now:          time.Now,
	}
}

func (s *HealthService) Liveness(_ context.Context) (*model.LivenessReport, error) {
	return &model.LivenessReport{
		Status:    model.ServiceStatusOK,
		Timestamp: s.now().UTC(),
		Version:   config.ServiceVersion,
	}, nil
}

func (s *HealthService) Readiness(ctx context.Context) (*model.ReadinessReport, error) {
	now := s.now().UTC()

	backendCheck := s.checkBackend(ctx, now)

	status := model.ServiceStatusOK
	if backendCheck.Status != model.DependencyStatusUp {
		status = model.ServiceStatusDegraded
	}

	return &model.ReadinessReport{
		Status:    status,
		Timestamp: now,
		Version:   config.ServiceVersion,
		Checks: map[string]model.DependencyCheck{
			BackendDependencyName: backendCheck,
			ViewsDependencyName: {
				Status:      model.DependencyStatusUp,
				Message:     viewsMessage(s.views.Len()),
				LastChecked: now,
			},
		},
	}, nil
}

func (s *HealthService) checkBackend(ctx context.Context, now time.Time) model.DependencyCheck {
	if s.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.probeTimeout)

		defer cancel()
	}

	probe, err := circuitbreaker.Execute(s.cb, func() (*model.HealthProbe, error) {
		return s.backend.CheckHealth(ctx)
	})

	check := model.DependencyCheck{
		Status:       model.DependencyStatusUp,
		Message:      "ok",
		LastChecked:  now,
		BreakerState: s.cb.State(),
	}

	if probe != nil {
		check.LatencyMs = uint64(probe.Latency.Milliseconds())
	}

	switch {
	case err == nil:
		return check
	case errors.Is(err, model.ErrBackendURLNotConfigured):
		check.Status = model.DependencyStatusUnknown
		check.Message = "backend url is not configured"
	case errors.Is(err, circuitbreaker.ErrCircuitOpen), errors.Is(err, circuitbreaker.ErrTooManyRequests):
		check.Status = model.DependencyStatusDown
		check.Message = "circuit breaker rejected the check"
	default:
		check.Status = model.DependencyStatusDown
		check.Message = "backend health check failed"
	}

	check.Error = err.Error()

	return check
}

func viewsMessage(mounted int) string {
	if mounted == 1 {
		return "1 view mounted"
	}

	return strconv.Itoa(mounted) + " views mounted"
}
