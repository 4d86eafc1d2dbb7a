package brand

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// NormalizeDomain reduces a user-entered website to a bare host:
// scheme, "www.", port, path and query are dropped.
func NormalizeDomain(raw string) (string, error) {
	host := strings.ToLower(strings.TrimSpace(raw))
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "www.")

	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")

	if host == "" {
		return "", fmt.Errorf("empty domain")
	}

	// Rejects bare suffixes ("com", "co.uk") and single-label hosts
	if _, err := publicsuffix.EffectiveTLDPlusOne(host); err != nil {
		return "", fmt.Errorf("invalid domain %q: %w", raw, err)
	}

	return host, nil
}
