// Package circuitbreaker wraps sony/gobreaker with project defaults.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// Config holds circuit breaker settings.
type Config struct {
	Name                string
	MaxRequests         uint32        // Requests allowed while half-open
	Interval            time.Duration // Closed-state counter reset period
	Timeout             time.Duration // Open-state duration before half-open
	ConsecutiveFailures uint32        // Failures that trip the breaker
	OnStateChange       func(name string, from, to gobreaker.State)
}

// DefaultConfig returns sensible defaults for RPC endpoints.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// CircuitBreaker is a typed circuit breaker.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a circuit breaker from cfg.
func New[T any](cfg Config) *CircuitBreaker[T] {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   cfg.MaxRequests,
		Interval:      cfg.Interval,
		Timeout:       cfg.Timeout,
		OnStateChange: cfg.OnStateChange,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn unless the breaker is open.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	return c.cb.Execute(fn)
}

// State returns the current breaker state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}

// Name returns the breaker name.
func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}
