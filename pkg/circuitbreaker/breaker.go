package circuitbreaker

import (
	"errors"

	"github.com/sony/gobreaker/v2"
)

type (
	// CircuitBreaker guards calls to a flaky dependency.
	CircuitBreaker[T any] struct {
		cb *gobreaker.CircuitBreaker[T]
	}

	// StateChangeFunc is notified on every transition, e.g. "closed" -> "open".
	StateChangeFunc func(name, from, to string)

	Option func(*gobreaker.Settings)
)

// WithStateChangeHook registers fn to observe state transitions.
func WithStateChangeHook(fn StateChangeFunc) Option {
	return func(s *gobreaker.Settings) {
		s.OnStateChange = func(name string, from, to gobreaker.State) {
			fn(name, from.String(), to.String())
		}
	}
}

// WithIgnoredErrors keeps errs from counting as failures.
func WithIgnoredErrors(errs ...error) Option {
	return func(s *gobreaker.Settings) {
		s.IsSuccessful = func(err error) bool {
			if err == nil {
				return true
			}

			for _, ignored := range errs {
				if errors.Is(err, ignored) {
					return true
				}
			}

			return false
		}
	}
}

// New returns nil when the breaker is disabled; Execute then calls through.
func New[T any](cfg Config, opts ...Option) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: uint32(cfg.MaxRequests),
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.FailureThreshold)
		},
	}

	for _, opt := range opts {
		opt(&settings)
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}

// State reports "closed", "half-open" or "open"; a nil breaker is always closed.
func (c *CircuitBreaker[T]) State() string {
	if c == nil {
		return gobreaker.StateClosed.String()
	}

	return c.cb.State().String()
}

// Execute runs fn through cb, translating gobreaker rejections into
// ErrCircuitOpen and ErrTooManyRequests.
func Execute[T any](cb *CircuitBreaker[T], fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}

	result, err := cb.cb.Execute(fn)
	if err == nil {
		return result, nil
	}

	var zero T

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return zero, ErrCircuitOpen
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return zero, ErrTooManyRequests
	default:
		return result, err
	}
}
