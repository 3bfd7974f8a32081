// Package ratelimit provides a context-aware token bucket used to cap the
// rate of outbound DNS queries.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps a token-bucket rate limiter. A nil *Limiter never blocks,
// so callers treat "no limit configured" and a real limiter uniformly.
type Limiter struct {
	inner *rate.Limiter
}

// New creates a Limiter allowing qps queries per second with the given burst
// capacity. It returns nil when qps is zero or negative.
func New(qps float64, burst int) *Limiter {
	if qps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{inner: rate.NewLimiter(rate.Limit(qps), burst)}
}

// Wait reserves a token and blocks until it becomes available. Returns
// ctx.Err() if the context is cancelled before the token is granted.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	res := l.inner.Reserve()
	if !res.OK() {
		// Burst exceeded beyond what the limiter can accommodate.
		return ctx.Err()
	}

	delay := res.Delay()
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		res.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
