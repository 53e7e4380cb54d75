package website

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize reduces a raw address to the identity a URL is registered under.
// - Trims surrounding whitespace and lowercases the whole input
// - Requires an absolute http or https URL with a host
// - Keeps only scheme, host and an explicit port; path, query, fragment and
// credentials are dropped
//
// An explicit port is always kept, even when it equals the scheme default.
func Normalize(raw string) (string, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	if port := u.Port(); port != "" {
		host += ":" + port
	}

	return u.Scheme + "://" + host, nil
}
