package pubstore

import (
	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(MergeTestSuite))

type MergeTestSuite struct{}

func (s *MergeTestSuite) TestMergingRecordSetWithItselfIsIdentity(c *check.C) {
	records := []PublicationRecord{
		{
			PublicationURL: "https://example.com/en/publications/neural-nets",
			Title:          "Neural networks in healthcare",
			Year:           "2021",
			Authors:        []string{"A. Researcher"},
		},
		{
			PublicationURL: "https://example.com/en/publications/markets",
			Title:          "Stock market analysis",
			Year:           "2020",
		},
	}

	merged, stats := Merge(records, records)

	c.Assert(merged, check.DeepEquals, records)
	c.Assert(stats, check.DeepEquals, MergeStats{Added: 0, Updated: 2, Total: 2})
}

func (s *MergeTestSuite) TestMergePrefersNewerFields(c *check.C) {
	old := []PublicationRecord{{
		PublicationURL: "https://example.com/en/publications/p1",
		Title:          "Old title",
		Year:           "2019",
	}}

	fresh := []PublicationRecord{{
		PublicationURL: "https://example.com/en/publications/p1",
		Title:          "New title",
		Year:           "2020",
	}}

	merged, stats := Merge(old, fresh)

	c.Assert(merged, check.HasLen, 1)
	c.Assert(merged[0].Title, check.Equals, "New title")
	c.Assert(merged[0].Year, check.Equals, "2020")
	c.Assert(stats.Updated, check.Equals, 1)
}

func (s *MergeTestSuite) TestMergeFillsForwardEmptyFields(c *check.C) {
	old := []PublicationRecord{{
		PublicationURL: "https://example.com/en/publications/p1",
		Title:          "A title scraped last pass",
		Authors:        []string{"A. Researcher", "B. Scientist"},
		Abstract:       "An abstract captured last pass.",
	}}

	// The re-crawl failed to scrape anything but the year.
	fresh := []PublicationRecord{{
		PublicationURL: "https://example.com/en/publications/p1",
		Year:           "2022",
	}}

	merged, _ := Merge(old, fresh)

	c.Assert(merged, check.HasLen, 1)
	c.Assert(merged[0].Title, check.Equals, "A title scraped last pass")
	c.Assert(merged[0].Authors, check.DeepEquals, []string{"A. Researcher", "B. Scientist"})
	c.Assert(merged[0].Abstract, check.Equals, "An abstract captured last pass.")
	c.Assert(merged[0].Year, check.Equals, "2022")
}

func (s *MergeTestSuite) TestMergeKeysOnCanonicalURL(c *check.C) {
	old := []PublicationRecord{{
		PublicationURL: "HTTPS://Example.com/en/publications/p1/",
		Title:          "Original",
	}}

	fresh := []PublicationRecord{{
		PublicationURL: "https://example.com/en/publications/p1",
		Title:          "Updated",
	}}

	merged, stats := Merge(old, fresh)

	c.Assert(merged, check.HasLen, 1)
	c.Assert(merged[0].Title, check.Equals, "Updated")
	c.Assert(stats, check.DeepEquals, MergeStats{Added: 0, Updated: 1, Total: 1})
}

func (s *MergeTestSuite) TestMergeCountsAdditions(c *check.C) {
	old := []PublicationRecord{{
		PublicationURL: "https://example.com/en/publications/p1",
		Title:          "First",
	}}

	fresh := []PublicationRecord{
		{PublicationURL: "https://example.com/en/publications/p2", Title: "Second"},
		{PublicationURL: "https://example.com/en/publications/p3", Title: "Third"},
	}

	merged, stats := Merge(old, fresh)

	c.Assert(stats, check.DeepEquals, MergeStats{Added: 2, Updated: 0, Total: 3})

	// Existing records keep their positions, additions follow in
	// first-seen order.
	c.Assert(merged[0].Title, check.Equals, "First")
	c.Assert(merged[1].Title, check.Equals, "Second")
	c.Assert(merged[2].Title, check.Equals, "Third")
}

func (s *MergeTestSuite) TestMergeDropsRecordsWithoutURL(c *check.C) {
	merged, stats := Merge(
		[]PublicationRecord{{Title: "no url"}},
		[]PublicationRecord{{Title: "also no url"}},
	)

	c.Assert(merged, check.HasLen, 0)
	c.Assert(stats.Total, check.Equals, 0)
}
