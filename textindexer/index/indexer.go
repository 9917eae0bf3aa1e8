/*
index package converts merged publication records into the searchable
corpus: one Document per canonical URL, an inverted index of per-term
raw frequencies, per-document lengths, and the IDF table used by the
ranking engine. The whole corpus is rebuilt from scratch on every pass;
there is no incremental patching, which keeps the postings, lengths and
IDF impossible to drift apart.
*/
package index

import (
	"math"
	"strings"

	"github.com/dmwangi/pubdex/pubstore"
	"github.com/dmwangi/pubdex/textpipeline"
)

// InvertedIndex maps term -> document ID -> raw term frequency.
// Postings never hold zero or negative counts, and every document ID in
// a posting list exists in the document set the index was built from.
type InvertedIndex map[string]map[string]int

// DocLengths maps document ID -> total term count after preprocessing.
type DocLengths map[string]int

// IDF maps term -> inverse document frequency. Terms present in nearly
// every document get weights close to zero; that down-weighting is
// intentional and must not be floored.
type IDF map[string]float64

// BuildDocuments derives the document set from publication records.
// Records without a URL are skipped. Should duplicate canonical URLs
// survive an upstream merge, the last record wins.
func BuildDocuments(records []pubstore.PublicationRecord) map[string]Document {
	docs := make(map[string]Document, len(records))

	for _, record := range records {
		if record.PublicationURL == "" {
			continue
		}

		id := DocID(record.PublicationURL)
		docs[id] = Document{
			ID:             id,
			Title:          record.Title,
			Year:           record.Year,
			Authors:        record.Authors,
			PublicationURL: record.PublicationURL,
			AuthorURLs:     record.AuthorURLs,
			Abstract:       record.Abstract,
		}
	}

	return docs
}

// BuildInvertedIndex builds term postings and document lengths over the
// document set. Each document's searchable text is the concatenation of
// title, abstract, authors and year, run through the shared text
// pipeline with the provided stemming flag; the same flag must be used
// when preprocessing queries. Counts are integers, so rebuilding from
// the same document set always yields identical output regardless of
// map iteration order.
func BuildInvertedIndex(
	docs map[string]Document, useStemming bool,
) (InvertedIndex, DocLengths) {

	invIndex := make(InvertedIndex)
	lengths := make(DocLengths, len(docs))

	for id, doc := range docs {
		blob := strings.Join([]string{
			doc.Title,
			doc.Abstract,
			strings.Join(doc.Authors, " "),
			doc.Year,
		}, " ")

		terms := textpipeline.Preprocess(blob, useStemming)
		lengths[id] = len(terms)

		frequencies := make(map[string]int)
		for _, term := range terms {
			frequencies[term]++
		}

		for term, count := range frequencies {
			postings, exists := invIndex[term]
			if !exists {
				postings = make(map[string]int)
				invIndex[term] = postings
			}

			postings[id] = count
		}
	}

	return invIndex, lengths
}

// ComputeIDF computes the BM25 inverse document frequency for every
// term: ln(1 + (n - df + 0.5) / (df + 0.5)). It must be recomputed
// whenever the document set changes; a stale table silently skews
// ranking.
func ComputeIDF(invIndex InvertedIndex, numOfDocs int) IDF {
	idf := make(IDF, len(invIndex))

	for term, postings := range invIndex {
		df := float64(len(postings))
		idf[term] = math.Log(1 + (float64(numOfDocs)-df+0.5)/(df+0.5))
	}

	return idf
}
