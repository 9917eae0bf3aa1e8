package pubstore

import (
	"os"
	"path/filepath"
	"strings"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(StoreTestSuite))

type StoreTestSuite struct {
	path string
}

func (s *StoreTestSuite) SetUpTest(c *check.C) {
	s.path = filepath.Join(c.MkDir(), "publications.jsonl")
}

func (s *StoreTestSuite) TestLoadOfMissingFileYieldsEmptyStore(c *check.C) {
	records, err := LoadRecords(s.path)

	c.Assert(err, check.IsNil)
	c.Assert(records, check.HasLen, 0)
}

func (s *StoreTestSuite) TestRecordsRoundTrip(c *check.C) {
	records := []PublicationRecord{
		{
			PublicationURL: "https://example.com/en/publications/p1",
			Title:          "Neural networks in healthcare",
			Year:           "2021",
			Authors:        []string{"A. Researcher"},
			AuthorURLs:     []string{"https://example.com/en/persons/a-researcher"},
			Abstract:       "We study neural networks.",
		},
		{
			PublicationURL: "https://example.com/en/publications/p2",
			Title:          "Stock market analysis",
		},
	}

	c.Assert(SaveRecords(s.path, records), check.IsNil)

	loaded, err := LoadRecords(s.path)
	c.Assert(err, check.IsNil)
	c.Assert(loaded, check.DeepEquals, records)
}

func (s *StoreTestSuite) TestSaveDeduplicatesByCanonicalURL(c *check.C) {
	records := []PublicationRecord{
		{PublicationURL: "https://example.com/en/publications/p1", Title: "Kept"},
		{PublicationURL: "HTTPS://Example.com/en/publications/p1/", Title: "Dropped"},
		{Title: "No URL, kept as-is"},
	}

	c.Assert(SaveRecords(s.path, records), check.IsNil)

	loaded, err := LoadRecords(s.path)
	c.Assert(err, check.IsNil)
	c.Assert(loaded, check.HasLen, 2)
	c.Assert(loaded[0].Title, check.Equals, "Kept")
	c.Assert(loaded[1].Title, check.Equals, "No URL, kept as-is")
}

func (s *StoreTestSuite) TestSaveIsOneRecordPerLine(c *check.C) {
	records := []PublicationRecord{
		{PublicationURL: "https://example.com/en/publications/p1"},
		{PublicationURL: "https://example.com/en/publications/p2"},
	}

	c.Assert(SaveRecords(s.path, records), check.IsNil)

	data, err := os.ReadFile(s.path)
	c.Assert(err, check.IsNil)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	c.Assert(lines, check.HasLen, 2)

	for _, line := range lines {
		c.Assert(strings.HasPrefix(line, "{"), check.Equals, true)
	}
}

func (s *StoreTestSuite) TestLoadSkipsBlankLines(c *check.C) {
	content := `{"publication_url":"https://example.com/en/publications/p1","title":"T","year":"","authors":null,"author_urls":null,"abstract":""}

`
	c.Assert(os.WriteFile(s.path, []byte(content), 0o644), check.IsNil)

	records, err := LoadRecords(s.path)
	c.Assert(err, check.IsNil)
	c.Assert(records, check.HasLen, 1)
	c.Assert(records[0].Title, check.Equals, "T")
}

func (s *StoreTestSuite) TestSaveFullyRewritesExistingStore(c *check.C) {
	c.Assert(SaveRecords(s.path, []PublicationRecord{
		{PublicationURL: "https://example.com/en/publications/old"},
	}), check.IsNil)

	c.Assert(SaveRecords(s.path, []PublicationRecord{
		{PublicationURL: "https://example.com/en/publications/new"},
	}), check.IsNil)

	loaded, err := LoadRecords(s.path)
	c.Assert(err, check.IsNil)
	c.Assert(loaded, check.HasLen, 1)
	c.Assert(
		loaded[0].PublicationURL,
		check.Equals,
		"https://example.com/en/publications/new",
	)
}

func (s *StoreTestSuite) TestWriteAtomicLeavesNoTempFiles(c *check.C) {
	c.Assert(WriteAtomic(s.path, []byte("data")), check.IsNil)

	entries, err := os.ReadDir(filepath.Dir(s.path))
	c.Assert(err, check.IsNil)
	c.Assert(entries, check.HasLen, 1)
}
