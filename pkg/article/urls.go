package article

import "strings"

// NormalizeURL canonicalizes a URL for upsert matching. Surrounding
// whitespace and trailing slashes do not distinguish articles, so
// "https://example.com/a" and "https://example.com/a/" address the same
// stored record.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if len(u) > len("https://") {
		u = strings.TrimRight(u, "/")
	}
	return u
}
