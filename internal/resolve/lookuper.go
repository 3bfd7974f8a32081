package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const defaultDNSPort = "53"

// Lookuper is the single lookup primitive the resolver needs. *net.Resolver
// satisfies it directly.
type Lookuper interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

var _ Lookuper = (*net.Resolver)(nil)

// NewLookuper selects the lookup backend: the system resolver when server is
// empty, otherwise direct UDP queries against server.
func NewLookuper(server string, timeout time.Duration) (Lookuper, error) {
	if server == "" {
		return net.DefaultResolver, nil
	}
	return NewServerLookuper(server, timeout)
}

// ServerLookuper queries a fixed DNS server over plain UDP, bypassing the
// system resolver. Failures are reported as *net.DNSError so callers classify
// them with the same logic as system-resolver failures.
type ServerLookuper struct {
	addr   string
	client *dns.Client
}

// NewServerLookuper creates a lookuper for the given server address. The
// address may be a bare host, host:port, or a bracketed IPv6 form; the port
// defaults to 53 when missing.
func NewServerLookuper(server string, timeout time.Duration) (*ServerLookuper, error) {
	addr := server
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(strings.Trim(server, "[]"), defaultDNSPort)
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return nil, fmt.Errorf("invalid DNS server address %q: %w", server, err)
		}
	}
	return &ServerLookuper{
		addr: addr,
		client: &dns.Client{
			Net:     "udp",
			Timeout: timeout,
		},
	}, nil
}

// LookupNetIP queries A and/or AAAA records depending on network ("ip",
// "ip4", "ip6") and returns every address found in the answers. The error
// contract mirrors *net.Resolver: NXDOMAIN and empty answer sets yield a
// *net.DNSError with IsNotFound set.
func (l *ServerLookuper) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	var qtypes []uint16
	switch network {
	case "ip":
		qtypes = []uint16{dns.TypeA, dns.TypeAAAA}
	case "ip4":
		qtypes = []uint16{dns.TypeA}
	case "ip6":
		qtypes = []uint16{dns.TypeAAAA}
	default:
		return nil, &net.DNSError{Err: "unsupported network " + network, Name: host}
	}

	var addrs []netip.Addr
	for _, qtype := range qtypes {
		answers, err := l.query(ctx, host, qtype)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, answers...)
	}
	if len(addrs) == 0 {
		return nil, &net.DNSError{Err: "no such host", Name: host, Server: l.addr, IsNotFound: true}
	}
	return addrs, nil
}

func (l *ServerLookuper) query(ctx context.Context, host string, qtype uint16) ([]netip.Addr, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)

	resp, _, err := l.client.ExchangeContext(ctx, msg, l.addr)
	if err != nil {
		return nil, &net.DNSError{
			Err:         err.Error(),
			Name:        host,
			Server:      l.addr,
			IsTimeout:   isTimeout(err),
			IsTemporary: true,
		}
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, &net.DNSError{Err: "no such host", Name: host, Server: l.addr, IsNotFound: true}
	default:
		return nil, &net.DNSError{
			Err:         "server misbehaving: " + dns.RcodeToString[resp.Rcode],
			Name:        host,
			Server:      l.addr,
			IsTemporary: true,
		}
	}

	var addrs []netip.Addr
	for _, rr := range resp.Answer {
		switch record := rr.(type) {
		case *dns.A:
			if addr, ok := netip.AddrFromSlice(record.A); ok {
				addrs = append(addrs, addr.Unmap())
			}
		case *dns.AAAA:
			if addr, ok := netip.AddrFromSlice(record.AAAA); ok {
				addrs = append(addrs, addr)
			}
		}
	}
	return addrs, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
