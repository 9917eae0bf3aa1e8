/*
pubparse package is the default extraction collaborator for the
crawler: given a fetched page's URL and HTML it returns the outbound
links found on the page plus, when the URL matches the publication-page
pattern, a scraped PublicationRecord. It is deliberately kept behind
the crawler's Extractor interface so site-specific scraping stays
replaceable without touching the crawl loop.
*/
package pubparse

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/dmwangi/pubdex/pubstore"
)

var (
	publicationPathRegex = regexp.MustCompile(`/en/publications/`)
	personPathRegex      = regexp.MustCompile(`/en/persons/`)
	yearRegex            = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	repeatedSpaceRegex   = regexp.MustCompile(`\s+`)

	// Links that point to non-HTML assets.
	assetRegex = regexp.MustCompile(`(?i)\.(?:jpg|jpeg|png|gif|ico|css|js|pdf)$`)
)

// Result holds everything extracted from a single fetched page.
type Result struct {
	// All resolved same-page outbound links, deduplicated.
	Links []string

	// Links pointing at publication pages, harvested from list pages.
	// These are enqueued by the crawler even when they fall outside its
	// generic path patterns.
	PublicationLinks []string

	// Non-nil when the page itself is a publication page.
	Publication *pubstore.PublicationRecord
}

// Parser scrapes publication portal pages.
type Parser struct {
	policy *bluemonday.Policy
}

// New returns a Parser with a strict sanitization policy for turning
// raw HTML into plain text.
func New() *Parser {
	return &Parser{policy: bluemonday.StrictPolicy()}
}

// Extract parses the page and collects outbound links, publication
// links and, for publication pages, the publication record itself.
func (p *Parser) Extract(pageURL string, body io.Reader) (*Result, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("pubparse: read page body: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("pubparse: parse page url: %w", err)
	}

	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("pubparse: parse html: %w", err)
	}

	page := newPage(root)
	result := &Result{}

	seenLinks := make(map[string]struct{})
	seenPublications := make(map[string]struct{})

	for _, anchor := range page.anchors {
		resolved := resolveLink(base, attr(anchor, "href"))
		if resolved == "" || assetRegex.MatchString(resolved) {
			continue
		}

		if _, seen := seenLinks[resolved]; !seen {
			seenLinks[resolved] = struct{}{}
			result.Links = append(result.Links, resolved)
		}

		if !publicationPathRegex.MatchString(resolved) {
			continue
		}

		if _, seen := seenPublications[resolved]; seen {
			continue
		}

		if len(anchorLabel(anchor)) < 4 {
			continue
		}

		seenPublications[resolved] = struct{}{}
		result.PublicationLinks = append(result.PublicationLinks, resolved)
	}

	if publicationPathRegex.MatchString(pageURL) {
		result.Publication = p.parsePublication(pageURL, base, page, raw)
	}

	return result, nil
}

// parsePublication scrapes the publication fields from a publication
// page.
func (p *Parser) parsePublication(
	pageURL string, base *url.URL, page *pageNodes, raw []byte,
) *pubstore.PublicationRecord {

	record := &pubstore.PublicationRecord{PublicationURL: pageURL}

	record.Title = firstNonEmpty(
		nodeText(page.firstElement("h1")),
		page.meta["citation_title"],
		page.meta["og:title"],
		nodeText(page.firstElement("title")),
	)

	pageText := p.cleanText(string(raw))
	record.Year = yearRegex.FindString(pageText)
	if record.Year == "" {
		metaDate := firstNonEmpty(
			page.meta["citation_publication_date"],
			page.meta["citation_date"],
		)
		record.Year = yearRegex.FindString(metaDate)
	}

	for _, anchor := range page.anchors {
		href := attr(anchor, "href")
		if !personPathRegex.MatchString(href) {
			continue
		}

		if name := nodeText(anchor); name != "" && !contains(record.Authors, name) {
			record.Authors = append(record.Authors, name)
		}

		if resolved := resolveLink(base, href); resolved != "" &&
			!contains(record.AuthorURLs, resolved) {
			record.AuthorURLs = append(record.AuthorURLs, resolved)
		}
	}

	if len(record.Authors) == 0 {
		record.Authors = page.citationAuthors
	}

	record.Abstract = page.abstractText()
	if record.Abstract == "" {
		record.Abstract = firstNonEmpty(
			page.meta["citation_abstract"],
			page.meta["description"],
		)
	}

	return record
}

// cleanText strips markup from raw HTML and collapses whitespace.
func (p *Parser) cleanText(raw string) string {
	clean := repeatedSpaceRegex.ReplaceAllString(p.policy.Sanitize(raw), " ")

	return strings.TrimSpace(html.UnescapeString(clean))
}

// pageNodes is a single-pass flattening of the parsed document:
// elements in document order plus the lookups the scraper needs.
type pageNodes struct {
	elements        []*html.Node
	anchors         []*html.Node
	meta            map[string]string
	citationAuthors []string
}

func newPage(root *html.Node) *pageNodes {
	page := &pageNodes{meta: make(map[string]string)}

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			page.elements = append(page.elements, node)

			switch node.Data {
			case "a":
				if attr(node, "href") != "" {
					page.anchors = append(page.anchors, node)
				}
			case "meta":
				key := firstNonEmpty(attr(node, "name"), attr(node, "property"))
				content := strings.TrimSpace(attr(node, "content"))

				if key != "" && content != "" {
					if _, exists := page.meta[key]; !exists {
						page.meta[key] = content
					}

					if key == "citation_author" {
						page.citationAuthors = append(page.citationAuthors, content)
					}
				}
			}
		}

		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return page
}

func (p *pageNodes) firstElement(name string) *html.Node {
	for _, node := range p.elements {
		if node.Data == name {
			return node
		}
	}

	return nil
}

// abstractText locates a heading containing the word "abstract" and
// returns the text of the first paragraph or div that follows it in
// document order.
func (p *pageNodes) abstractText() string {
	for i, node := range p.elements {
		switch node.Data {
		case "h2", "h3", "strong":
		default:
			continue
		}

		if !strings.Contains(strings.ToLower(nodeText(node)), "abstract") {
			continue
		}

		for _, following := range p.elements[i+1:] {
			if following.Data == "p" || following.Data == "div" {
				return nodeText(following)
			}
		}

		return ""
	}

	return ""
}

// anchorLabel is the visible label of a link: its text, or the title /
// aria-label attribute when the text is empty.
func anchorLabel(anchor *html.Node) string {
	return firstNonEmpty(
		nodeText(anchor),
		strings.TrimSpace(attr(anchor, "title")),
		strings.TrimSpace(attr(anchor, "aria-label")),
	)
}

// resolveLink resolves href against base and returns the absolute URL
// with its fragment stripped, or "" when the link is unusable.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	resolved.Fragment = ""

	return resolved.String()
}

func nodeText(node *html.Node) string {
	if node == nil {
		return ""
	}

	var builder strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
			builder.WriteByte(' ')
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)

	return strings.TrimSpace(
		repeatedSpaceRegex.ReplaceAllString(builder.String(), " "),
	)
}

func attr(node *html.Node, name string) string {
	for _, a := range node.Attr {
		if a.Key == name {
			return a.Val
		}
	}

	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}

	return false
}
