package textpipeline

import (
	"testing"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(TextPipelineTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type TextPipelineTestSuite struct{}

func (s *TextPipelineTestSuite) TestTokenizeLowercasesAndSplits(c *check.C) {
	c.Assert(
		Tokenize("Neural-Networks in Healthcare (2021)!"),
		check.DeepEquals,
		[]string{"neural", "networks", "in", "healthcare", "2021"},
	)
}

func (s *TextPipelineTestSuite) TestTokenizeEmptyText(c *check.C) {
	c.Assert(Tokenize(""), check.HasLen, 0)
	c.Assert(Tokenize("!!! ---"), check.HasLen, 0)
}

func (s *TextPipelineTestSuite) TestNormalizeDropsStopwordsAndShortTokens(c *check.C) {
	c.Assert(
		Normalize([]string{"the", "a", "x", "neural", "networks", "in", "healthcare"}),
		check.DeepEquals,
		[]string{"neural", "networks", "healthcare"},
	)
}

func (s *TextPipelineTestSuite) TestStemIsDeterministic(c *check.C) {
	c.Assert(Stem("networks"), check.Equals, Stem("networks"))
	c.Assert(Stem("running"), check.Equals, "run")

	// Stemming conflates inflected forms onto one term.
	c.Assert(Stem("networks"), check.Equals, Stem("network"))
}

func (s *TextPipelineTestSuite) TestPreprocessWithStemming(c *check.C) {
	terms := Preprocess("Neural networks in healthcare", true)

	c.Assert(terms, check.HasLen, 3)
	c.Assert(terms[0], check.Equals, Stem("neural"))
	c.Assert(terms[1], check.Equals, Stem("networks"))
	c.Assert(terms[2], check.Equals, Stem("healthcare"))
}

func (s *TextPipelineTestSuite) TestPreprocessWithoutStemming(c *check.C) {
	c.Assert(
		Preprocess("Neural networks in healthcare", false),
		check.DeepEquals,
		[]string{"neural", "networks", "healthcare"},
	)
}

// The single most important property of the search path: a document
// term and a query term run through the same pipeline always meet on
// the same string, with or without stemming.
func (s *TextPipelineTestSuite) TestIndexAndQueryPreprocessingAreSymmetric(c *check.C) {
	docTitle := "Computational modelling of biological systems"

	for _, useStemming := range []bool{true, false} {
		docTerms := Preprocess(docTitle, useStemming)
		queryTerms := Preprocess("modelling", useStemming)

		c.Assert(queryTerms, check.HasLen, 1)

		var matched bool
		for _, term := range docTerms {
			if term == queryTerms[0] {
				matched = true
			}
		}

		c.Assert(matched, check.Equals, true)
	}
}

func (s *TextPipelineTestSuite) TestStopwordListIsFrozen(c *check.C) {
	c.Assert(stopwordList, check.HasLen, 179)

	for _, word := range []string{"the", "is", "were", "wouldn't"} {
		_, present := stopwords[word]
		c.Assert(present, check.Equals, true)
	}
}
