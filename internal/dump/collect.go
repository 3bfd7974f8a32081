package dump

import (
	"errors"
	"io"
	"log/slog"
	"slices"

	"github.com/cidralias/cidralias/internal/subnet"
)

// Collector drives a full pass over the dump: every subnet token goes
// through the screener into the shared address set, and, when domain
// collection is enabled, domain tokens and URL hostnames are gathered into a
// deduplicated set for the resolution phase.
type Collector struct {
	screener    *subnet.Screener
	logger      *slog.Logger
	withDomains bool

	records int
	domains map[string]struct{}
}

// NewCollector creates a Collector. When withDomains is false the domain and
// URL fields are never touched; only raw subnets are collected.
func NewCollector(screener *subnet.Screener, withDomains bool, logger *slog.Logger) *Collector {
	return &Collector{
		screener:    screener,
		logger:      logger,
		withDomains: withDomains,
		domains:     make(map[string]struct{}),
	}
}

// Collect drains r. The only errors it returns are structural stream
// failures; individual bad tokens are logged and skipped.
func (c *Collector) Collect(r *Reader) error {
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		c.collectRecord(rec)
	}
}

func (c *Collector) collectRecord(rec Record) {
	c.records++
	for _, token := range SplitField(rec.Subnets) {
		c.screener.ObserveText(token)
	}
	if !c.withDomains {
		return
	}
	for _, token := range SplitField(rec.Domains) {
		if domain := NormalizeDomain(token); domain != "" {
			c.domains[domain] = struct{}{}
		}
	}
	for _, token := range SplitField(rec.URLs) {
		host, err := HostFromURL(token)
		if err != nil {
			c.logger.Warn("skipping unparseable URL token", "token", token, "error", err)
			continue
		}
		c.domains[host] = struct{}{}
	}
}

// Records returns the number of data records processed.
func (c *Collector) Records() int {
	return c.records
}

// Domains returns the gathered domain names, sorted for deterministic
// scheduling.
func (c *Collector) Domains() []string {
	domains := make([]string, 0, len(c.domains))
	for d := range c.domains {
		domains = append(domains, d)
	}
	slices.Sort(domains)
	return domains
}
