package cli

import (
	"fmt"
	"log/slog"

	"github.com/imroc/req/v3"
	"github.com/spf13/cobra"

	"github.com/cidralias/cidralias/internal/config"
	"github.com/cidralias/cidralias/internal/fetch"
	"github.com/cidralias/cidralias/internal/ratelimit"
	"github.com/cidralias/cidralias/internal/resolve"
)

// deps holds fully-resolved runtime dependencies for a subcommand.
type deps struct {
	logger *slog.Logger
	cfg    *config.Config
}

// buildDeps loads the config visible through cmd's flags and raises the log
// level to debug when verbose output is requested.
func buildDeps(cmd *cobra.Command, logger *slog.Logger, programLevel *slog.LevelVar) (*deps, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cfg.Verbose {
		programLevel.Set(slog.LevelDebug)
	}

	return &deps{cfg: cfg, logger: logger}, nil
}

// newFetchClient creates the HTTP client used to download dumps, configured
// with the user agent and verbosity from the resolved config.
func (d *deps) newFetchClient() *req.Client {
	return fetch.NewClient(d.cfg.UserAgent, d.logger, d.cfg.Verbose)
}

// newScheduler builds the resolution stack from the resolved config: lookup
// backend, rate limiter, retry policy, and worker fan-out.
func (d *deps) newScheduler() (*resolve.Scheduler, error) {
	lookuper, err := resolve.NewLookuper(d.cfg.DNSServer, d.cfg.DNSTimeout)
	if err != nil {
		return nil, fmt.Errorf("creating DNS lookuper: %w", err)
	}
	limiter := ratelimit.New(d.cfg.DNSRate, 1)
	resolver := resolve.NewResolver(lookuper, limiter, d.cfg.DNSTimeout, d.cfg.DNSRetries, d.logger)
	return resolve.NewScheduler(resolver, d.cfg.DNSJobs, d.cfg.Progress, d.logger), nil
}
