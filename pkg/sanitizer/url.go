package sanitizer

import (
	"net/url"
	"strings"
)

// NormalizeURL lowercases the scheme and host and drops a trailing slash.
// Paths keep their case since image hosts are case-sensitive.
func NormalizeURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}
