package subnet

import (
	"math/big"
	"net/netip"
	"slices"
)

// Merge collapses prefixes of one address family into the minimal sorted set
// of non-overlapping prefixes covering exactly the same addresses. The input
// is not modified. Mixing families in one call is a caller bug; callers split
// the shared set by family first.
//
// The algorithm sorts the input (base address ascending, broader blocks
// first) and folds it into an accumulator that stays sorted and
// non-overlapping: each prefix is either dropped (already contained in the
// last accumulator entry), repeatedly collapsed upward while it forms an
// exact sibling pair with the last entry, or appended as new. Greedy
// collapsing is correct only because of the pre-sort; total work is linear in
// the input after sorting, as every collapse step removes one entry.
func Merge(prefixes []netip.Prefix) []netip.Prefix {
	if len(prefixes) == 0 {
		return nil
	}
	sorted := slices.Clone(prefixes)
	SortPrefixes(sorted)

	merged := make([]netip.Prefix, 0, len(sorted))
	for _, p := range sorted {
		merged = appendCollapsed(merged, p)
	}
	return merged
}

// appendCollapsed folds p into the accumulator, collapsing exact sibling
// pairs into their parent until neither containment nor collapse applies.
func appendCollapsed(merged []netip.Prefix, p netip.Prefix) []netip.Prefix {
	for len(merged) > 0 {
		prev := merged[len(merged)-1]
		if prev.Bits() <= p.Bits() && prev.Contains(p.Addr()) {
			// p adds nothing beyond prev.
			return merged
		}
		if prev.Bits() != p.Bits() || p.Bits() == 0 {
			break
		}
		parent := netip.PrefixFrom(p.Addr(), p.Bits()-1).Masked()
		if netip.PrefixFrom(prev.Addr(), p.Bits()-1).Masked() != parent {
			break
		}
		// prev and p are the two halves of parent: replace both with it and
		// retry against the entry before prev.
		p = parent
		merged = merged[:len(merged)-1]
	}
	return append(merged, p)
}

// AddressCount returns the total number of addresses covered by the given
// prefixes. IPv6 blocks overflow uint64, hence the big.Int.
func AddressCount(prefixes []netip.Prefix) *big.Int {
	total := new(big.Int)
	one := big.NewInt(1)
	for _, p := range prefixes {
		hostBits := uint(p.Addr().BitLen() - p.Bits())
		total.Add(total, new(big.Int).Lsh(one, hostBits))
	}
	return total
}
