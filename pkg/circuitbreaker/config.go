package circuitbreaker

import "time"

// Config holds the configuration for a circuit breaker.
type Config struct {
	Name    string
	Enabled bool

	// MaxRequests allowed through while half-open; 0 means 1.
	MaxRequests uint

	// Interval clears the closed-state counts; 0 never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// FailureThreshold consecutive failures trip the breaker.
	FailureThreshold uint
}
