package resolve

import (
	"context"
	"log/slog"
	"net/netip"
	"sync"
	"time"
)

// Outcome is the result of resolving one hostname.
type Outcome struct {
	Host  string
	Addrs []netip.Addr
	Err   error
}

// Scheduler fans hostnames out to a fixed pool of resolver workers and
// funnels every Outcome back to a single consumer.
type Scheduler struct {
	resolver *Resolver
	workers  int
	progress bool
	logger   *slog.Logger
}

// NewScheduler creates a Scheduler running at most workers lookups at once.
// When progress is set, a progress event is logged after each completed host.
func NewScheduler(resolver *Resolver, workers int, progress bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		resolver: resolver,
		workers:  workers,
		progress: progress,
		logger:   logger,
	}
}

// ResolveAll resolves every host and invokes sink once per outcome from the
// calling goroutine, so sink needs no locking of its own. It returns after
// each host has been attempted exactly once, or with ctx's error when
// cancelled mid-run. Zero workers or zero hosts is an immediate no-op.
func (s *Scheduler) ResolveAll(ctx context.Context, hosts []string, sink func(Outcome)) error {
	if s.workers <= 0 || len(hosts) == 0 {
		return nil
	}

	jobs := make(chan string)
	results := make(chan Outcome)

	go func() {
		defer close(jobs)
		for _, host := range hosts {
			select {
			case <-ctx.Done():
				return
			case jobs <- host:
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range jobs {
				addrs, err := s.resolver.Resolve(ctx, host)
				select {
				case <-ctx.Done():
					return
				case results <- Outcome{Host: host, Addrs: addrs, Err: err}:
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	start := time.Now()
	completed := 0
	for outcome := range results {
		completed++
		sink(outcome)
		if s.progress {
			s.logProgress(completed, len(hosts), time.Since(start))
		}
	}
	return ctx.Err()
}

// logProgress estimates the remaining time from the mean duration of the
// hosts completed so far.
func (s *Scheduler) logProgress(completed, total int, elapsed time.Duration) {
	remaining := time.Duration(float64(elapsed) / float64(completed) * float64(total-completed))
	s.logger.Info("resolution progress",
		"percent", completed*100/total,
		"completed", completed,
		"total", total,
		"remaining", remaining.Round(time.Second))
}
