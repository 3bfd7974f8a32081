package subnet

import (
	"log/slog"
	"net/netip"
)

// Reason identifies the exclusion category that rejected a network.
type Reason string

// Exclusion categories, checked in the order they are declared.
const (
	ReasonMulticast   Reason = "multicast"
	ReasonPrivate     Reason = "private"
	ReasonUnspecified Reason = "unspecified"
	ReasonReserved    Reason = "reserved"
	ReasonLoopback    Reason = "loopback"
	ReasonLinkLocal   Reason = "link-local"
)

// Exclusion tables. A network is excluded when it is fully contained in a
// table entry; the blocklist legitimately carries documentation and other
// special-use space (e.g. 192.0.2.0/24), so each category is kept narrow.
var (
	multicastNets   = mustPrefixes("224.0.0.0/4", "ff00::/8")
	privateNets     = mustPrefixes("10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fc00::/7")
	unspecifiedNets = mustPrefixes("0.0.0.0/32", "::/128")
	loopbackNets    = mustPrefixes("127.0.0.0/8", "::1/128")
	linkLocalNets   = mustPrefixes("169.254.0.0/16", "fe80::/10")

	// IPv4 Class E plus the IETF-reserved IPv6 space.
	reservedNets = mustPrefixes(
		"240.0.0.0/4",
		"::/8", "100::/8", "200::/7", "400::/6", "800::/5", "1000::/4",
		"4000::/3", "6000::/3", "8000::/3", "a000::/3", "c000::/3",
		"e000::/4", "f000::/5", "f800::/6", "fe00::/9",
	)
)

// Screen checks p against the exclusion categories in fixed order.
// The first matching category wins; ok is false when p passes all of them.
func Screen(p netip.Prefix) (reason Reason, excluded bool) {
	switch {
	case containedIn(p, multicastNets):
		return ReasonMulticast, true
	case containedIn(p, privateNets):
		return ReasonPrivate, true
	case containedIn(p, unspecifiedNets):
		return ReasonUnspecified, true
	case containedIn(p, reservedNets):
		return ReasonReserved, true
	case containedIn(p, loopbackNets):
		return ReasonLoopback, true
	case containedIn(p, linkLocalNets):
		return ReasonLinkLocal, true
	}
	return "", false
}

// containedIn reports whether p lies fully within one of the table entries.
// p must be masked.
func containedIn(p netip.Prefix, nets []netip.Prefix) bool {
	for _, n := range nets {
		if n.Bits() <= p.Bits() && n.Contains(p.Addr()) {
			return true
		}
	}
	return false
}

func mustPrefixes(tokens ...string) []netip.Prefix {
	nets := make([]netip.Prefix, len(tokens))
	for i, token := range tokens {
		nets[i] = netip.MustParsePrefix(token)
	}
	return nets
}

// Screener normalizes raw address tokens, screens them against the exclusion
// tables, and admits the survivors into a shared Set. Rejections are logged
// with their category so operators can audit what was dropped.
type Screener struct {
	set    *Set
	logger *slog.Logger
}

// NewScreener creates a Screener feeding the given set.
func NewScreener(set *Set, logger *slog.Logger) *Screener {
	return &Screener{set: set, logger: logger}
}

// ObserveText parses one subnet/IP token and admits it unless excluded.
// Unparseable tokens are logged and skipped; they never abort the run.
func (s *Screener) ObserveText(token string) {
	p, err := Canonical(token)
	if err != nil {
		s.logger.Warn("skipping unparseable address token", "token", token, "error", err)
		return
	}
	s.observe(p)
}

// ObserveAddr admits a single resolved address unless excluded. Resolved
// addresses pass through the same screening as raw-parsed ones.
func (s *Screener) ObserveAddr(addr netip.Addr) {
	s.observe(FromAddr(addr))
}

func (s *Screener) observe(p netip.Prefix) {
	if reason, excluded := Screen(p); excluded {
		s.logger.Warn("ignoring excluded network", "network", p.String(), "reason", string(reason))
		return
	}
	s.set.Add(p)
}
