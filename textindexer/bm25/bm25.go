/*
bm25 package implements Okapi BM25 scoring and ranked search over the
inverted index. k1 controls term-frequency saturation and b controls
document-length normalization; both are parameters rather than
constants so they can be tuned and tested.
*/
package bm25

import (
	"math"
	"sort"

	"github.com/dmwangi/pubdex/textindexer/index"
	"github.com/dmwangi/pubdex/textpipeline"
)

// Standard Okapi BM25 parameter defaults.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75

	// DefaultTopK is the result count used when a caller passes a
	// non-positive top-k.
	DefaultTopK = 10
)

// Result is a ranked search hit: the accumulated BM25 score plus the
// originating document's fields.
type Result struct {
	Score float64 `json:"score"`
	index.Document
}

// Score computes BM25 scores for the query terms against the postings.
// Scoring a zero-document corpus (or one with a non-positive average
// document length) returns an empty map rather than dividing by zero.
// Terms absent from the index contribute nothing. Scores for a document
// accumulate additively across query terms.
func Score(
	queryTerms []string,
	invIndex index.InvertedIndex,
	lengths index.DocLengths,
	idf index.IDF,
	k1, b float64,
) map[string]float64 {

	scores := make(map[string]float64)

	if len(lengths) == 0 {
		return scores
	}

	var totalLength int
	for _, length := range lengths {
		totalLength += length
	}

	avgdl := float64(totalLength) / float64(len(lengths))
	if avgdl <= 0 {
		return scores
	}

	for _, term := range queryTerms {
		postings, exists := invIndex[term]
		if !exists {
			continue
		}

		termIDF := idf[term]

		for docID, tf := range postings {
			docLength := float64(lengths[docID])

			denominator := float64(tf) + k1*(1-b+b*(docLength/avgdl))
			if denominator == 0 {
				denominator = 1
			}

			scores[docID] += termIDF * (float64(tf) * (k1 + 1)) / denominator
		}
	}

	return scores
}

// Search preprocesses the query with the shared text pipeline (the
// stemming flag must match the one used at index-build time), scores it
// with BM25 defaults, and returns the top-k results sorted by score
// descending with document-ID ties broken ascending so rankings are
// reproducible.
func Search(
	query string, payload *index.Payload, topK int, useStemming bool,
) []Result {

	if payload == nil {
		return nil
	}

	if topK <= 0 {
		topK = DefaultTopK
	}

	queryTerms := textpipeline.Preprocess(query, useStemming)

	scores := Score(
		queryTerms,
		payload.Index,
		payload.DocLengths,
		payload.IDF,
		DefaultK1,
		DefaultB,
	)

	results := make([]Result, 0, len(scores))
	for docID, score := range scores {
		results = append(results, Result{
			// Scores are rounded to four decimal places, which keeps
			// ranked output stable across platforms when serialized.
			Score:    math.Round(score*10000) / 10000,
			Document: payload.Docs[docID],
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}

		return results[i].ID < results[j].ID
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results
}
