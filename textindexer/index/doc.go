package index

import (
	"github.com/google/uuid"

	"github.com/dmwangi/pubdex/pubstore"
)

// Document is the indexed view of a publication record.
type Document struct {
	// Stable, content-addressed identifier derived from the canonical
	// publication URL: the same URL always maps to the same ID across
	// rebuilds.
	ID string `json:"id"`

	Title          string   `json:"title"`
	Year           string   `json:"year"`
	Authors        []string `json:"authors"`
	PublicationURL string   `json:"publication_url"`
	AuthorURLs     []string `json:"author_urls"`
	Abstract       string   `json:"abstract"`
}

// DocID computes the document identifier for a publication URL: a
// version-5 UUID of the canonical URL in the URL namespace.
func DocID(rawURL string) string {
	canonical := pubstore.CanonicalURL(rawURL)

	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(canonical)).String()
}
