// Package testutil provides shared test helpers for unit tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"net/netip"

	"github.com/cidralias/cidralias/internal/resolve"
)

// MockLookuper implements resolve.Lookuper for testing.
// The field is a function so tests can set exactly the behavior they need.
type MockLookuper struct {
	LookupNetIPFn func(ctx context.Context, network, host string) ([]netip.Addr, error)
}

var _ resolve.Lookuper = (*MockLookuper)(nil)

// LookupNetIP implements resolve.Lookuper.
func (m *MockLookuper) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	if m.LookupNetIPFn != nil {
		return m.LookupNetIPFn(ctx, network, host)
	}
	return nil, nil
}

// NopLogger returns a logger that discards all output.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
