// Package ratelimit provides a wrapper around golang.org/x/time/rate.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with convenience methods.
// A nil *Limiter never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerSecond with the given burst.
// A non-positive rate disables limiting.
func New(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}
