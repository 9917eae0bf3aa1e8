/*
pubstore package owns publication-record identity and persistence: URL
canonicalization, the line-delimited record store on disk, and the merge
step that folds a fresh crawl pass into previously stored records.
*/
package pubstore

// PublicationRecord describes a single research publication discovered
// by the crawler. Its identity is the canonical form of PublicationURL.
type PublicationRecord struct {
	PublicationURL string   `json:"publication_url"`
	Title          string   `json:"title"`
	Year           string   `json:"year"`
	Authors        []string `json:"authors"`
	AuthorURLs     []string `json:"author_urls"`
	Abstract       string   `json:"abstract"`
}

// MergeStats summarizes the outcome of a Merge call.
type MergeStats struct {
	Added   int
	Updated int
	Total   int
}

// Merge folds a fresh set of records into an existing one, keyed by
// canonical publication URL. For a URL present in both sets the merged
// record takes each field from the newer record unless that field is
// empty and the older record has a value (field-level fill-forward, so
// a re-crawl that failed to scrape a field never erases data captured
// by an earlier pass). Records without a URL are dropped.
//
// The returned slice is ordered deterministically: records already in
// old keep their positions, newly added records follow in first-seen
// order.
func Merge(old, fresh []PublicationRecord) ([]PublicationRecord, MergeStats) {
	byURL := make(map[string]PublicationRecord, len(old)+len(fresh))
	var order []string

	for _, record := range old {
		if record.PublicationURL == "" {
			continue
		}

		canonical := CanonicalURL(record.PublicationURL)
		if _, exists := byURL[canonical]; !exists {
			order = append(order, canonical)
		}

		byURL[canonical] = record
	}

	var stats MergeStats

	for _, record := range fresh {
		if record.PublicationURL == "" {
			continue
		}

		canonical := CanonicalURL(record.PublicationURL)
		existing, exists := byURL[canonical]
		if exists {
			byURL[canonical] = fillForward(record, existing)
			stats.Updated++

			continue
		}

		byURL[canonical] = record
		order = append(order, canonical)
		stats.Added++
	}

	merged := make([]PublicationRecord, 0, len(order))
	for _, canonical := range order {
		merged = append(merged, byURL[canonical])
	}

	stats.Total = len(merged)

	return merged, stats
}

// fillForward returns fresh with any empty field replaced by the value
// from prior.
func fillForward(fresh, prior PublicationRecord) PublicationRecord {
	if fresh.Title == "" {
		fresh.Title = prior.Title
	}

	if fresh.Year == "" {
		fresh.Year = prior.Year
	}

	if len(fresh.Authors) == 0 {
		fresh.Authors = prior.Authors
	}

	if len(fresh.AuthorURLs) == 0 {
		fresh.AuthorURLs = prior.AuthorURLs
	}

	if fresh.Abstract == "" {
		fresh.Abstract = prior.Abstract
	}

	return fresh
}
