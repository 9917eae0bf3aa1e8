package pubstore

import (
	"net/url"
	"strings"
)

// CanonicalURL normalizes a URL into the string form used as the
// deduplication key across the record store, the crawl frontier and the
// document index:
//   - lowercases the entire URL.
//   - strips the fragment.
//   - sorts query parameters by key.
//   - strips trailing slashes from non-root paths.
//
// Malformed input falls back to a lowercased, trimmed form rather than
// returning an error, since a single bad URL must never halt a crawl.
// The function is pure and idempotent.
func CanonicalURL(raw string) string {
	if raw == "" {
		return ""
	}

	trimmed := strings.ToLower(strings.TrimSpace(raw))

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return strings.TrimRight(trimmed, "/")
	}

	query := parsed.Query().Encode()

	// Path carries the decoded form and RawPath its original escaping,
	// trimmed in lockstep, so String() reuses the existing escaping
	// instead of percent-encoding the path a second time.
	path := parsed.Path
	rawPath := parsed.EscapedPath()
	if rawPath != "/" {
		path = strings.TrimRight(path, "/")
		rawPath = strings.TrimRight(rawPath, "/")
	}

	canonical := url.URL{
		Scheme:   parsed.Scheme,
		Host:     parsed.Host,
		Path:     path,
		RawPath:  rawPath,
		RawQuery: query,
	}

	return canonical.String()
}

// SameHost reports whether two URLs share a host. URLs that fail to
// parse never match.
func SameHost(a, b string) bool {
	parsedA, err := url.Parse(a)
	if err != nil {
		return false
	}

	parsedB, err := url.Parse(b)
	if err != nil {
		return false
	}

	return parsedA.Hostname() != "" && strings.EqualFold(
		parsedA.Hostname(), parsedB.Hostname(),
	)
}
