package subnet

import (
	"net/netip"
	"sync"
)

// Set is a deduplicating collection of masked prefixes. It is safe for
// concurrent use; all mutation during the resolution phase goes through the
// same mutex, so worker inserts are serialized.
type Set struct {
	mu       sync.Mutex
	prefixes map[netip.Prefix]struct{}
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{prefixes: make(map[netip.Prefix]struct{})}
}

// Add inserts p and reports whether it was not already present.
func (s *Set) Add(p netip.Prefix) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prefixes[p]; ok {
		return false
	}
	s.prefixes[p] = struct{}{}
	return true
}

// Len returns the number of unique prefixes in the set.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prefixes)
}

// Split returns the IPv4 and IPv6 members as separate slices in no
// particular order. The merge step sorts its own input.
func (s *Set) Split() (v4, v6 []netip.Prefix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := range s.prefixes {
		if p.Addr().Is4() {
			v4 = append(v4, p)
		} else {
			v6 = append(v6, p)
		}
	}
	return v4, v6
}
