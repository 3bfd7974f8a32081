// Package subnet implements the network value model of the alias generator:
// canonical parsing of subnet/IP text, exclusion screening, the shared
// deduplicating set, and the sibling-collapse merge that produces the final
// minimal CIDR lists.
package subnet

import (
	"cmp"
	"net/netip"
	"slices"
	"strings"
)

// Canonical parses a textual subnet or bare IP into a masked prefix.
// Bare addresses become full-length prefixes (/32 for IPv4, /128 for IPv6).
// Host bits set in CIDR input are zeroed rather than rejected, so
// "192.0.2.17/24" canonicalizes to 192.0.2.0/24. IPv4-mapped IPv6 input is
// stored as its IPv4 form.
func Canonical(token string) (netip.Prefix, error) {
	if !strings.Contains(token, "/") {
		addr, err := netip.ParseAddr(token)
		if err != nil {
			return netip.Prefix{}, err
		}
		return FromAddr(addr), nil
	}
	p, err := netip.ParsePrefix(token)
	if err != nil {
		return netip.Prefix{}, err
	}
	if addr := p.Addr(); addr.Is4In6() && p.Bits() >= 96 {
		p = netip.PrefixFrom(addr.Unmap(), p.Bits()-96)
	}
	return p.Masked(), nil
}

// FromAddr wraps a single address as a full-length prefix covering only it.
func FromAddr(addr netip.Addr) netip.Prefix {
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen())
}

// ComparePrefixes is the total order merging relies on: ascending by base
// address, then broader blocks (shorter prefixes) before narrower ones with
// the same base.
func ComparePrefixes(a, b netip.Prefix) int {
	if c := a.Addr().Compare(b.Addr()); c != 0 {
		return c
	}
	return cmp.Compare(a.Bits(), b.Bits())
}

// SortPrefixes sorts prefixes in place into merge order.
func SortPrefixes(prefixes []netip.Prefix) {
	slices.SortFunc(prefixes, ComparePrefixes)
}
