package dump

import (
	"fmt"
	"net/url"
	"strings"
)

// SplitField splits a pipe-separated dump field into trimmed, non-empty
// tokens. Pure and allocation-light; safe to call on any of the three
// record fields.
func SplitField(field string) []string {
	var tokens []string
	for _, item := range strings.Split(field, "|") {
		if item = strings.TrimSpace(item); item != "" {
			tokens = append(tokens, item)
		}
	}
	return tokens
}

// NormalizeDomain strips the wildcard marker from a domain token.
// The result may be empty; callers discard empty values.
func NormalizeDomain(domain string) string {
	return strings.TrimPrefix(domain, "*.")
}

// HostFromURL extracts the lowercased hostname of a URL token. Tokens
// without an explicit scheme are treated as http URLs so bare "host/path"
// forms still parse. Ports and IPv6 brackets are dropped.
func HostFromURL(token string) (string, error) {
	raw := token
	if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "//") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("no host in URL %q", token)
	}
	return host, nil
}
