package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/cidralias/cidralias/internal/apperr"
	"github.com/cidralias/cidralias/internal/ratelimit"
)

// retryDelay is the pause before re-attempting a transiently failing name.
const retryDelay = 500 * time.Millisecond

// Resolver resolves single hostnames through a Lookuper, pacing attempts
// with an optional rate limiter and retrying transient failures up to a
// fixed budget. Safe for concurrent use.
type Resolver struct {
	lookuper Lookuper
	limiter  *ratelimit.Limiter
	timeout  time.Duration
	retries  int
	logger   *slog.Logger
}

// NewResolver creates a Resolver. retries is the number of additional
// attempts after the first; zero means a single attempt whose failure is
// returned as-is. limiter may be nil for unlimited query rates.
func NewResolver(lookuper Lookuper, limiter *ratelimit.Limiter, timeout time.Duration, retries int, logger *slog.Logger) *Resolver {
	if retries < 0 {
		retries = 0
	}
	return &Resolver{
		lookuper: lookuper,
		limiter:  limiter,
		timeout:  timeout,
		retries:  retries,
		logger:   logger,
	}
}

// Resolve returns every address host resolves to, across both families.
// IP literals short-circuit without a query, matching getaddrinfo. Transient
// failures are retried after a fixed delay until the budget is spent; the
// exhaustion error wraps apperr.ErrRetriesExhausted. Definite failures,
// NXDOMAIN first among them, return immediately.
func (r *Resolver) Resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr.Unmap()}, nil
	}

	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			r.logger.Debug("retrying transient lookup failure",
				"host", host,
				"attempt", attempt+1,
				"error", lastErr)
			if err := sleep(ctx, retryDelay); err != nil {
				return nil, err
			}
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		addrs, err := r.lookup(ctx, host)
		if err == nil {
			return addrs, nil
		}
		if !Transient(err) {
			return nil, err
		}
		lastErr = err
	}

	if r.retries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w for %s after %d attempts: %w",
		apperr.ErrRetriesExhausted, host, r.retries+1, lastErr)
}

func (r *Resolver) lookup(ctx context.Context, host string) ([]netip.Addr, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.lookuper.LookupNetIP(ctx, "ip", host)
}

// Transient reports whether err is a resolution failure worth retrying:
// timeouts and server failures qualify, a definite NXDOMAIN does not.
func Transient(err error) bool {
	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) {
		return false
	}
	if dnsErr.IsNotFound {
		return false
	}
	return dnsErr.IsTemporary || dnsErr.IsTimeout
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
