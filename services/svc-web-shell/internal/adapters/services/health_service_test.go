package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/repos"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/services"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/config"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/mocks"
	"github.com/stretchr/testify/suite"
)

type HealthServiceTestSuite struct {
	suite.Suite

	backend *mocks.FakeBackendHealthChecker
	views   *repos.ViewsRepository
	cfg     config.ReadinessCircuitBreaker
}

func TestHealthServiceTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(HealthServiceTestSuite))
}

func (s *HealthServiceTestSuite) SetupTest() {
	s.backend = &mocks.FakeBackendHealthChecker{}
	s.views = repos.NewViewsRepository(10)
	s.cfg = config.ReadinessCircuitBreaker{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 2,
		ProbeTimeout:     time.Second,
	}
}

func (s *HealthServiceTestSuite) TestLiveness() {
	svc := services.NewHealthService(s.backend, s.views, s.cfg)

	report, err := svc.Liveness(context.Background())

	s.Require().NoError(err)
	s.Require().Equal(model.ServiceStatusOK, report.Status)
	s.Require().Zero(s.backend.CheckHealthCallCount(), "liveness never calls the backend")
}

func (s *HealthServiceTestSuite) TestReadiness() {
	cases := []struct {
		name            string
		setup           func(*mocks.FakeBackendHealthChecker)
		expectedStatus  model.ServiceStatus
		expectedBackend model.DependencyStatus
	}{
		{
			name: "backend healthy",
			setup: func(fake *mocks.FakeBackendHealthChecker) {
				fake.CheckHealthReturns(&model.HealthProbe{StatusCode: 200, Latency: 15 * time.Millisecond}, nil)
			},
			expectedStatus:  model.ServiceStatusOK,
			expectedBackend: model.DependencyStatusUp,
		},
		{
			name: "backend answers 500",
			setup: func(fake *mocks.FakeBackendHealthChecker) {
				fake.CheckHealthReturns(
					&model.HealthProbe{StatusCode: 500},
					fmt.Errorf("%w: returned 500", model.ErrBackendUnhealthy),
				)
			},
			expectedStatus:  model.ServiceStatusDegraded,
			expectedBackend: model.DependencyStatusDown,
		},
		{
			name: "backend unreachable",
			setup: func(fake *mocks.FakeBackendHealthChecker) {
				fake.CheckHealthReturns(nil, fmt.Errorf("%w: connection refused", model.ErrBackendUnreachable))
			},
			expectedStatus:  model.ServiceStatusDegraded,
			expectedBackend: model.DependencyStatusDown,
		},
		{
			name: "backend not configured",
			setup: func(fake *mocks.FakeBackendHealthChecker) {
				fake.CheckHealthReturns(nil, model.ErrBackendURLNotConfigured)
			},
			expectedStatus:  model.ServiceStatusDegraded,
			expectedBackend: model.DependencyStatusUnknown,
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			backend := &mocks.FakeBackendHealthChecker{}
			tc.setup(backend)

			svc := services.NewHealthService(backend, s.views, s.cfg)

			report, err := svc.Readiness(context.Background())

			s.Require().NoError(err)
			s.Require().Equal(tc.expectedStatus, report.Status)
			s.Require().Contains(report.Checks, services.BackendDependencyName)
			s.Require().Contains(report.Checks, services.ViewsDependencyName)
			s.Require().Equal(tc.expectedBackend, report.Checks[services.BackendDependencyName].Status)
			s.Require().Equal(1, backend.CheckHealthCallCount())
		})
	}
}

func (s *HealthServiceTestSuite) TestReadiness_BreakerOpensAfterFailures() {
	s.backend.CheckHealthReturns(nil, model.ErrBackendUnreachable)

	svc := services.NewHealthService(s.backend, s.views, s.cfg)

	for range 2 {
		_, err := svc.Readiness(context.Background())
		s.Require().NoError(err)
	}

	report, err := svc.Readiness(context.Background())

	s.Require().NoError(err)
	s.Require().Equal(2, s.backend.CheckHealthCallCount(), "open breaker short-circuits the check")

	check := report.Checks[services.BackendDependencyName]
	s.Require().Equal(model.DependencyStatusDown, check.Status)
	s.Require().Equal("open", check.BreakerState)
	s.Require().Equal(model.ServiceStatusDegraded, report.Status)
}

func (s *HealthServiceTestSuite) TestReadiness_NotConfiguredNeverTrips() {
	s.backend.CheckHealthReturns(nil, model.ErrBackendURLNotConfigured)

	svc := services.NewHealthService(s.backend, s.views, s.cfg)

	for range 5 {
		report, err := svc.Readiness(context.Background())
		s.Require().NoError(err)
		s.Require().Equal("closed", report.Checks[services.BackendDependencyName].BreakerState)
	}

	s.Require().Equal(5, s.backend.CheckHealthCallCount())
}

func (s *HealthServiceTestSuite) TestReadiness_ProbeHasDeadline() {
	s.backend.CheckHealthStub = func(ctx context.Context) (*model.HealthProbe, error) {
		_, ok := ctx.Deadline()
		s.True(ok, "readiness probes are bounded by the probe timeout")

		return &model.HealthProbe{StatusCode: 200}, nil
	}

	svc := services.NewHealthService(s.backend, s.views, s.cfg)

	_, err := svc.Readiness(context.Background())

	s.Require().NoError(err)
}

func (s *HealthServiceTestSuite) TestReadiness_ReportsMountedViews() {
	s.backend.CheckHealthReturns(&model.HealthProbe{StatusCode: 200}, nil)
	s.views.Add(model.NewDashboardView(time.Now()))
	s.views.Add(model.NewDashboardView(time.Now()))

	svc := services.NewHealthService(s.backend, s.views, s.cfg)

	report, err := svc.Readiness(context.Background())

	s.Require().NoError(err)
	s.Require().Equal("2 views mounted", report.Checks[services.ViewsDependencyName].Message)
}
