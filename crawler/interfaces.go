package crawler

import (
	"io"
	"net/http"

	"github.com/dmwangi/pubdex/crawler/pubparse"
)

// URLGetter should be implemented by objects that perform HTTP GET
// requests to fetch page data.
type URLGetter interface {
	Get(url string) (*http.Response, error)
}

// Extractor should be implemented by objects that can extract outbound
// links and publication data from a fetched page. It is the seam
// between the crawl loop and page-specific scraping.
type Extractor interface {
	Extract(pageURL string, body io.Reader) (*pubparse.Result, error)
}
