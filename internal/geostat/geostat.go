// Package geostat summarizes merged networks by country using a MaxMind
// GeoIP2 database. It is pure observability: failures are logged as
// warnings and never affect the pipeline result.
package geostat

import (
	"cmp"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"slices"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

const (
	// topCountries caps how many entries the logged summary names.
	topCountries = 10
	// unknownCountry buckets addresses the database cannot place.
	unknownCountry = "unknown"
)

// CountrySource is the part of *geoip2.Reader the summary needs.
type CountrySource interface {
	Country(ip net.IP) (*geoip2.Country, error)
}

var _ CountrySource = (*geoip2.Reader)(nil)

// CountryCount is one row of the per-country summary.
type CountryCount struct {
	ISO   string
	Count int
}

// Summary counts merged blocks per country.
type Summary struct {
	source CountrySource
	logger *slog.Logger
}

// NewSummary creates a Summary backed by source.
func NewSummary(source CountrySource, logger *slog.Logger) *Summary {
	return &Summary{source: source, logger: logger}
}

// Count returns the number of prefixes per country ISO code, most blocks
// first, ties broken by code. Each block is attributed to the country of its
// base address; failed and empty lookups count as unknown.
func (s *Summary) Count(prefixes []netip.Prefix) []CountryCount {
	counts := make(map[string]int)
	for _, p := range prefixes {
		counts[s.lookup(p.Addr())]++
	}

	out := make([]CountryCount, 0, len(counts))
	for iso, n := range counts {
		out = append(out, CountryCount{ISO: iso, Count: n})
	}
	slices.SortFunc(out, func(a, b CountryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.ISO, b.ISO)
	})
	return out
}

// Log computes the summary and logs the top entries.
func (s *Summary) Log(prefixes []netip.Prefix) {
	counts := s.Count(prefixes)
	if len(counts) == 0 {
		return
	}

	top := counts[:min(len(counts), topCountries)]
	pairs := make([]string, 0, len(top))
	for _, c := range top {
		pairs = append(pairs, fmt.Sprintf("%s=%d", c.ISO, c.Count))
	}
	s.logger.Info("country distribution of merged networks",
		"countries", len(counts),
		"top", strings.Join(pairs, " "))
}

func (s *Summary) lookup(addr netip.Addr) string {
	record, err := s.source.Country(net.IP(addr.AsSlice()))
	if err != nil {
		s.logger.Warn("GeoIP lookup failed", "address", addr, "error", err)
		return unknownCountry
	}
	if record.Country.IsoCode == "" {
		return unknownCountry
	}
	return record.Country.IsoCode
}
