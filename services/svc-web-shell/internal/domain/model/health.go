package model

import (
	"sync"
	"time"
)

type (
	// HealthStatus is the dashboard's view of the backend.
	HealthStatus string

	// ServiceStatus describes the shell process itself.
	ServiceStatus string

	DependencyStatus string

	// HealthState moves from checking to a terminal status exactly once.
	HealthState struct {
		mu        sync.RWMutex
		status    HealthStatus
		checkedAt time.Time
		resolved  chan struct{}
	}

	// HealthProbe is the outcome of one GET {backend}/api/health.
	HealthProbe struct {
		Target     string
		StatusCode int
		Latency    time.Duration
		CheckedAt  time.Time
	}

	DependencyCheck struct {
		Status       DependencyStatus
		LatencyMs    uint64
		Message      string
		LastChecked  time.Time
		Error        string
		BreakerState string
	}

	LivenessReport struct {
		Status    ServiceStatus
		Timestamp time.Time
		Version   string
	}

	ReadinessReport struct {
		Status    ServiceStatus
		Timestamp time.Time
		Version   string
		Checks    map[string]DependencyCheck
	}
)

const (
	HealthStatusChecking  HealthStatus = "checking"
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"

	ServiceStatusOK       ServiceStatus = "ok"
	ServiceStatusDegraded ServiceStatus = "degraded"
	ServiceStatusDown     ServiceStatus = "down"

	DependencyStatusUp      DependencyStatus = "up"
	DependencyStatusDown    DependencyStatus = "down"
	DependencyStatusUnknown DependencyStatus = "unknown"

	IconClock       = "clock"
	IconCheckCircle = "check-circle"
	IconAlertCircle = "alert-circle"
)

// HealthStatusFromCode applies the ok-range rule: 200-299 is healthy.
func HealthStatusFromCode(code int) HealthStatus {
	if code >= 200 && code <= 299 {
		return HealthStatusHealthy
	}

	return HealthStatusUnhealthy
}

func (s HealthStatus) Label() string {
	switch s {
	case HealthStatusHealthy:
		return "Healthy"
	case HealthStatusUnhealthy:
		return "Unhealthy"
	default:
		return "Checking..."
	}
}

func (s HealthStatus) Icon() string {
	switch s {
	case HealthStatusHealthy:
		return IconCheckCircle
	case HealthStatusUnhealthy:
		return IconAlertCircle
	default:
		return IconClock
	}
}

// Tone is the colour family used by the status indicator.
func (s HealthStatus) Tone() string {
	switch s {
	case HealthStatusHealthy:
		return "green"
	case HealthStatusUnhealthy:
		return "red"
	default:
		return "yellow"
	}
}

func (s HealthStatus) IsTerminal() bool {
	return s == HealthStatusHealthy || s == HealthStatusUnhealthy
}

func NewHealthState() *HealthState {
	return &HealthState{
		status:   HealthStatusChecking,
		resolved: make(chan struct{}),
	}
}

func (s *HealthState) Status() HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// CheckedAt is zero until the state resolves.
func (s *HealthState) CheckedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.checkedAt
}

// Resolve records the terminal status. It reports false when status is not
// terminal or the state already left checking.
func (s *HealthState) Resolve(status HealthStatus, at time.Time) bool {
	if !status.IsTerminal() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != HealthStatusChecking {
		return false
	}

	s.status = status
	s.checkedAt = at
	close(s.resolved)

	return true
}

// Resolved is closed once the state turns terminal.
func (s *HealthState) Resolved() <-chan struct{} {
	return s.resolved
}
