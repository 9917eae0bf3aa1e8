/*
textpipeline package provides the text preprocessing shared by the
index builder and the query path. Both sides MUST run the exact same
tokenize -> normalize -> stem sequence with the same stemming flag, or
query terms silently stop matching indexed terms.
*/
package textpipeline

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

// Maximal runs of ASCII letters and digits; everything else separates
// tokens.
var tokenRegex = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize splits text into lowercase alphanumeric tokens.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	return tokenRegex.FindAllString(strings.ToLower(text), -1)
}

// Normalize drops single-character tokens and stopwords.
func Normalize(tokens []string) []string {
	normalized := make([]string, 0, len(tokens))

	for _, token := range tokens {
		if len(token) <= 1 {
			continue
		}

		if _, isStopword := stopwords[token]; isStopword {
			continue
		}

		normalized = append(normalized, token)
	}

	return normalized
}

// Stem reduces a token to its Porter stem. It is a pure string
// transform: no lookups, deterministic for a given input.
func Stem(token string) string {
	return english.Stem(token, false)
}

// Preprocess runs the full pipeline: tokenize -> normalize and,
// when useStemming is set, stem each surviving token.
func Preprocess(text string, useStemming bool) []string {
	terms := Normalize(Tokenize(text))

	if useStemming {
		for i, term := range terms {
			terms[i] = Stem(term)
		}
	}

	return terms
}
