package pubparse

import (
	"strings"
	"testing"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(PubParseTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type PubParseTestSuite struct {
	parser *Parser
}

func (s *PubParseTestSuite) SetUpTest(c *check.C) {
	s.parser = New()
}

func (s *PubParseTestSuite) extract(c *check.C, pageURL, body string) *Result {
	result, err := s.parser.Extract(pageURL, strings.NewReader(body))
	c.Assert(err, check.IsNil)

	return result
}

func (s *PubParseTestSuite) TestExtractResolvesAndFiltersLinks(c *check.C) {
	result := s.extract(c, "http://example.com/en/organisations/centre", `
	<html><body>
	<a href="/en/persons/jane-doe">Jane Doe</a>
	<a href="http://example.com/en/publications/p1">Absolute Paper Link</a>
	<a href="#fragment-only">Skip me</a>
	<a href="mailto:someone@example.com">Mail</a>
	<a href="/static/logo.png">Logo</a>
	<a href="/styles/site.css">Styles</a>
	</body></html>`)

	c.Assert(result.Links, check.DeepEquals, []string{
		"http://example.com/en/persons/jane-doe",
		"http://example.com/en/publications/p1",
	})
	c.Assert(result.Publication, check.IsNil)
}

func (s *PubParseTestSuite) TestExtractDeduplicatesLinks(c *check.C) {
	result := s.extract(c, "http://example.com/en/organisations/centre", `
	<html><body>
	<a href="/en/publications/p1">Paper One Listing</a>
	<a href="/en/publications/p1">Paper One Listing Again</a>
	</body></html>`)

	c.Assert(result.Links, check.HasLen, 1)
	c.Assert(result.PublicationLinks, check.DeepEquals, []string{
		"http://example.com/en/publications/p1",
	})
}

func (s *PubParseTestSuite) TestExtractStripsLinkFragments(c *check.C) {
	result := s.extract(c, "http://example.com/en/organisations/centre", `
	<html><body>
	<a href="/en/publications/p1#cite">Paper One Listing</a>
	</body></html>`)

	c.Assert(result.Links, check.DeepEquals, []string{
		"http://example.com/en/publications/p1",
	})
}

func (s *PubParseTestSuite) TestPublicationLinksNeedAReadableLabel(c *check.C) {
	result := s.extract(c, "http://example.com/en/organisations/centre", `
	<html><body>
	<a href="/en/publications/p1">&gt;</a>
	<a href="/en/publications/p2" title="Paper Two Listing"></a>
	<a href="/en/publications/p3">Paper Three Listing</a>
	</body></html>`)

	// Pagination arrows and similar unlabeled anchors still count as
	// plain links, only the labeled ones are treated as publications.
	c.Assert(result.Links, check.HasLen, 3)
	c.Assert(result.PublicationLinks, check.DeepEquals, []string{
		"http://example.com/en/publications/p2",
		"http://example.com/en/publications/p3",
	})
}

func (s *PubParseTestSuite) TestNonPublicationPageYieldsNoRecord(c *check.C) {
	result := s.extract(c, "http://example.com/en/persons/jane-doe", `
	<html><body><h1>Jane Doe</h1></body></html>`)

	c.Assert(result.Publication, check.IsNil)
}

func (s *PubParseTestSuite) TestPublicationPageIsScraped(c *check.C) {
	result := s.extract(c, "http://example.com/en/publications/neural-nets", `
	<html><head><title>Portal | Neural Nets</title></head><body>
	<h1>Neural Networks in Healthcare</h1>
	<p>Published 2021 in the Journal of Examples.</p>
	<a href="/en/persons/jane-doe">Jane Doe</a>
	<a href="/en/persons/jane-doe">Jane Doe</a>
	<a href="/en/persons/john-roe">John Roe</a>
	<h2>Abstract</h2>
	<p>Deep   learning applied to
	clinical data.</p>
	</body></html>`)

	record := result.Publication
	c.Assert(record, check.Not(check.IsNil))
	c.Assert(record.PublicationURL, check.Equals,
		"http://example.com/en/publications/neural-nets")
	c.Assert(record.Title, check.Equals, "Neural Networks in Healthcare")
	c.Assert(record.Year, check.Equals, "2021")
	c.Assert(record.Authors, check.DeepEquals, []string{"Jane Doe", "John Roe"})
	c.Assert(record.AuthorURLs, check.DeepEquals, []string{
		"http://example.com/en/persons/jane-doe",
		"http://example.com/en/persons/john-roe",
	})
	c.Assert(record.Abstract, check.Equals, "Deep learning applied to clinical data.")
}

func (s *PubParseTestSuite) TestTitleFallsBackThroughMetadata(c *check.C) {
	result := s.extract(c, "http://example.com/en/publications/p1", `
	<html><head>
	<meta name="citation_title" content="Citation Title">
	<meta property="og:title" content="OG Title">
	</head><body><p>No heading here.</p></body></html>`)

	c.Assert(result.Publication.Title, check.Equals, "Citation Title")
}

func (s *PubParseTestSuite) TestYearFallsBackToCitationDate(c *check.C) {
	result := s.extract(c, "http://example.com/en/publications/p1", `
	<html><head>
	<meta name="citation_publication_date" content="2019/05/14">
	</head><body><h1>No Year In The Text</h1></body></html>`)

	c.Assert(result.Publication.Year, check.Equals, "2019")
}

func (s *PubParseTestSuite) TestAuthorsFallBackToCitationMetadata(c *check.C) {
	result := s.extract(c, "http://example.com/en/publications/p1", `
	<html><head>
	<meta name="citation_author" content="Jane Doe">
	<meta name="citation_author" content="John Roe">
	</head><body><h1>Paper Without Author Links</h1></body></html>`)

	c.Assert(result.Publication.Authors, check.DeepEquals,
		[]string{"Jane Doe", "John Roe"})
	c.Assert(result.Publication.AuthorURLs, check.HasLen, 0)
}

func (s *PubParseTestSuite) TestAbstractFallsBackToDescriptionMetadata(c *check.C) {
	result := s.extract(c, "http://example.com/en/publications/p1", `
	<html><head>
	<meta name="description" content="A short description.">
	</head><body><h1>Paper Without An Abstract Section</h1></body></html>`)

	c.Assert(result.Publication.Abstract, check.Equals, "A short description.")
}

func (s *PubParseTestSuite) TestAbstractHeadingMayBeAStrongTag(c *check.C) {
	result := s.extract(c, "http://example.com/en/publications/p1", `
	<html><body>
	<h1>Strongly Headed Paper</h1>
	<div><strong>Abstract</strong></div>
	<p>Text that follows the inline heading.</p>
	</body></html>`)

	c.Assert(result.Publication.Abstract, check.Equals,
		"Text that follows the inline heading.")
}

func (s *PubParseTestSuite) TestMissingFieldsStayEmpty(c *check.C) {
	result := s.extract(c, "http://example.com/en/publications/p1",
		"<html><body></body></html>")

	record := result.Publication
	c.Assert(record, check.Not(check.IsNil))
	c.Assert(record.Title, check.Equals, "")
	c.Assert(record.Year, check.Equals, "")
	c.Assert(record.Authors, check.HasLen, 0)
	c.Assert(record.Abstract, check.Equals, "")
}
