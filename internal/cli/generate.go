package cli

import (
	"context"
	"fmt"
	"io"
	"net/netip"
	"os"

	"github.com/oschwald/geoip2-golang"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/cidralias/cidralias/internal/config"
	"github.com/cidralias/cidralias/internal/dump"
	"github.com/cidralias/cidralias/internal/emit"
	"github.com/cidralias/cidralias/internal/fetch"
	"github.com/cidralias/cidralias/internal/geostat"
	"github.com/cidralias/cidralias/internal/resolve"
	"github.com/cidralias/cidralias/internal/subnet"
)

func newGenerateCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate <source>",
		Aliases: []string{"gen"},
		Short:   "Build merged CIDR lists from a blocklist dump",
		Long: `Read a blocklist dump and write the networks it blocks as merged CIDR
lists. The source is a local file path, "-" for stdin, or an http(s) URL.

The subnet field of every record is collected as is. When --dns-jobs is
above zero, the domain and URL fields are resolved concurrently and each
returned address contributes a host route. Multicast, private, unspecified,
reserved, loopback, and link-local networks are screened out, the rest are
deduplicated and collapsed, and the result is written one CIDR per line:
IPv4 networks to --output, IPv6 networks to --output-v6 or appended to
--output when no separate path is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, d, args[0])
		},
	}
	config.RegisterFlags(cmd.Flags())
	config.RegisterFlagCompletions(cmd)
	return cmd
}

func runGenerate(cmd *cobra.Command, d *deps, source string) error {
	ctx := cmd.Context()

	// Reject a bad charset before any download or file work happens.
	if _, err := dump.LookupEncoding(d.cfg.Encoding); err != nil {
		return err
	}

	// Destinations open (and truncate) up front so a bad output path fails
	// before the dump is fetched and resolved.
	targets, err := emit.OpenTargets(d.cfg.Output, d.cfg.OutputV6, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer targets.Close()

	in, err := openSource(cmd, d, source)
	if err != nil {
		return err
	}
	defer in.Close()

	decoded, err := dump.NewDecoder(in, d.cfg.Encoding)
	if err != nil {
		return err
	}

	set := subnet.NewSet()
	screener := subnet.NewScreener(set, d.logger)
	collector := dump.NewCollector(screener, d.cfg.DNSJobs > 0, d.logger)
	if err := collector.Collect(dump.NewReader(decoded)); err != nil {
		return fmt.Errorf("reading dump: %w", err)
	}
	d.logger.Info("dump processed", "records", collector.Records(), "unique_subnets", set.Len())

	if d.cfg.DNSJobs > 0 {
		if err := resolveDomains(ctx, d, collector.Domains(), screener); err != nil {
			return err
		}
		d.logger.Info("hostname resolution finished", "unique_subnets", set.Len())
	}

	v4, v6 := set.Split()
	var merged4, merged6 []netip.Prefix
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		merged4 = subnet.Merge(v4)
		return nil
	})
	g.Go(func() error {
		merged6 = subnet.Merge(v6)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	d.logger.Info("networks merged",
		"ipv4", len(merged4),
		"ipv6", len(merged6),
		"ipv4_addresses", subnet.AddressCount(merged4),
		"ipv6_addresses", subnet.AddressCount(merged6))

	if err := emit.Networks(targets.V4, merged4); err != nil {
		return fmt.Errorf("writing IPv4 networks: %w", err)
	}
	if err := emit.Networks(targets.V6, merged6); err != nil {
		return fmt.Errorf("writing IPv6 networks: %w", err)
	}
	if err := targets.Close(); err != nil {
		return err
	}

	if d.cfg.GeoIPDB != "" {
		logCountrySummary(d, merged4)
	}
	return nil
}

// openSource returns the dump stream for source: stdin for "-", an http(s)
// download, or a local file.
func openSource(cmd *cobra.Command, d *deps, source string) (io.ReadCloser, error) {
	if source == "-" {
		r := cmd.InOrStdin()
		if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // file descriptors fit in int on all supported platforms
			return nil, fmt.Errorf("no input: pipe a dump into stdin or pass a path")
		}
		return io.NopCloser(r), nil
	}
	return fetch.Open(cmd.Context(), d.newFetchClient(), source)
}

// resolveDomains fans the collected hostnames out to the resolver pool and
// feeds every returned address through the screener as a host route. Failed
// hostnames are logged and contribute nothing.
func resolveDomains(ctx context.Context, d *deps, hosts []string, screener *subnet.Screener) error {
	scheduler, err := d.newScheduler()
	if err != nil {
		return err
	}
	d.logger.Info("resolving hostnames", "hosts", len(hosts), "jobs", d.cfg.DNSJobs)
	return scheduler.ResolveAll(ctx, hosts, func(outcome resolve.Outcome) {
		if outcome.Err != nil {
			d.logger.Warn("hostname skipped", "host", outcome.Host, "error", outcome.Err)
			return
		}
		for _, addr := range outcome.Addrs {
			screener.ObserveAddr(addr)
		}
	})
}

// logCountrySummary logs the country distribution of the merged IPv4
// networks. Failures only warn; the lists are already written.
func logCountrySummary(d *deps, prefixes []netip.Prefix) {
	reader, err := geoip2.Open(d.cfg.GeoIPDB)
	if err != nil {
		d.logger.Warn("skipping country summary", "db", d.cfg.GeoIPDB, "error", err)
		return
	}
	defer reader.Close()
	geostat.NewSummary(reader, d.logger).Log(prefixes)
}
