// Package crawler provides breadth-first crawling of a site's link graph.
package crawler

import (
	"net/url"
	"strings"
)

// NormalizeURL returns the canonical form of a URL used for frontier and
// visited-set membership: fragment stripped, scheme and host lowercased,
// trailing slashes removed from the path. Normalization is idempotent.
// Unparsable input is returned unchanged.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

// AllowFunc decides whether a URL is in scope for the crawl. It is checked
// both at link discovery and again on dequeue.
type AllowFunc func(rawURL string) bool

// SiteAllow returns an AllowFunc that accepts URLs on the given host whose
// normalized form starts with the normalized base URL, and that carry no
// query string.
func SiteAllow(baseURL string) AllowFunc {
	base, err := url.Parse(baseURL)
	if err != nil {
		return func(string) bool { return false }
	}
	normBase := NormalizeURL(baseURL)
	host := strings.ToLower(base.Host)
	return func(rawURL string) bool {
		u, err := url.Parse(rawURL)
		if err != nil {
			return false
		}
		return strings.ToLower(u.Host) == host &&
			strings.HasPrefix(NormalizeURL(rawURL), normBase) &&
			u.RawQuery == ""
	}
}
