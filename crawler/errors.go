package crawler

import "errors"

var (
	// ErrFetchFailed wraps the last error after a page's retry budget
	// is exhausted. The page is marked failed and the crawl continues.
	ErrFetchFailed = errors.New("fetch failed after retries")

	// errNotHTML marks a response that is not worth retrying: the
	// server answered, but not with an HTML page.
	errNotHTML = errors.New("response is not html")
)
