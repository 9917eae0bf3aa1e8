/*
crawler package implements a politeness-aware, breadth-first web
crawler over a single bounded domain. One pass works a FIFO frontier
seeded with a start URL: every dequeued URL is deduplicated by its
canonical form, checked against the same-host restriction and the seed
host's robots.txt rules, then fetched with pacing, a hard timeout and
exponential-backoff retries. Fetched pages go to the extraction
collaborator, which hands back outbound links for frontier expansion
and, for publication pages, a scraped record.

The pass is strictly sequential: a single in-flight request at a time,
paced by the configured delay (or robots.txt's crawl-delay when that is
larger). Politeness, not throughput, is the constraint here.
*/
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/dmwangi/pubdex/pubstore"
)

// Links that point to pages that don't serve HTML content.
var exclusionRegex = regexp.MustCompile(`(?i)\.(?:jpg|jpeg|png|gif|ico|css|js)$`)

// Stats summarizes a single crawl pass. Every dequeued URL ends up in
// exactly one of parsed, skipped or failed.
type Stats struct {
	// Number of canonical URLs consumed from the page budget.
	Visited int

	// Pages that yielded a publication record.
	Parsed int

	// URLs discarded before fetching: off-host, robots-disallowed, or
	// non-HTML targets.
	Skipped int

	// URLs whose fetch retry budget was exhausted.
	Failed int
}

// Crawler performs bounded BFS crawl passes.
type Crawler struct {
	config Config
	seed   *url.URL
	robots *robotsPolicy
	pacer  *rate.Limiter
	logger *logrus.Entry
}

// New validates the configuration, fetches robots.txt once, and
// returns a crawler ready to run passes. The effective request delay
// is the configured one, raised to robots.txt's crawl-delay when that
// is larger.
func New(config Config) (*Crawler, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("crawler: config validation failed: %w", err)
	}

	// Already validated as parsable.
	seed, _ := url.Parse(config.SeedURL)

	logger := config.Logger.WithField("seed", config.SeedURL)

	robots := newRobotsPolicy(config.URLGetter, seed, config.UserAgent, logger)
	if delay := robots.crawlDelay(); delay > config.Delay {
		logger.WithField("crawl_delay", delay.String()).Info(
			"robots.txt crawl-delay exceeds configured delay, using it",
		)
		config.Delay = delay
	}

	return &Crawler{
		config: config,
		seed:   seed,
		robots: robots,
		pacer:  rate.NewLimiter(rate.Every(config.Delay), 1),
		logger: logger,
	}, nil
}

// Crawl runs one bounded BFS pass and returns the publication records
// discovered during it. Merging those with crawl history is the
// orchestrator's job, not the crawler's. The pass ends when the
// frontier empties, the visited set reaches the page budget, or ctx is
// cancelled; cancellation is observed between frontier iterations and
// returns the records gathered so far along with the context error.
func (c *Crawler) Crawl(ctx context.Context) ([]pubstore.PublicationRecord, Stats, error) {
	var (
		records []pubstore.PublicationRecord
		stats   Stats
	)

	front := newFrontier()
	front.enqueue(c.config.SeedURL)

	c.logger.WithFields(logrus.Fields{
		"max_pages": c.config.MaxPages,
		"delay":     c.config.Delay.String(),
	}).Info("starting crawl pass")

	for front.hasNext() && front.numVisited() < c.config.MaxPages {
		select {
		case <-ctx.Done():
			stats.Visited = front.numVisited()

			return records, stats, ctx.Err()
		default:
		}

		rawURL := front.next()
		canonical := pubstore.CanonicalURL(rawURL)

		if !front.visit(canonical) {
			continue
		}

		if !c.config.AllowExternalHosts && !pubstore.SameHost(c.config.SeedURL, rawURL) {
			stats.Skipped++

			continue
		}

		parsed, err := url.Parse(rawURL)
		if err != nil {
			c.logger.WithField("url", rawURL).WithError(err).Warn(
				"skipping unparsable frontier URL",
			)
			stats.Skipped++

			continue
		}

		if !c.robots.allowed(parsed) {
			c.logger.WithField("url", rawURL).Debug("blocked by robots.txt")
			stats.Skipped++

			continue
		}

		if exclusionRegex.MatchString(rawURL) {
			stats.Skipped++

			continue
		}

		body, err := c.fetch(ctx, rawURL)
		if err != nil {
			if ctx.Err() != nil {
				stats.Visited = front.numVisited()

				return records, stats, ctx.Err()
			}

			if err == errNotHTML {
				stats.Skipped++

				continue
			}

			c.logger.WithField("url", rawURL).WithError(err).Error(
				"skipping page after exhausting fetch retries",
			)
			stats.Failed++

			continue
		}

		extracted, err := c.config.Extractor.Extract(rawURL, bytes.NewReader(body))
		if err != nil {
			c.logger.WithField("url", rawURL).WithError(err).Error("extraction failed")
			stats.Failed++

			continue
		}

		// Publication links harvested from list pages are always worth
		// queueing, even when they fall outside the generic path
		// patterns.
		for _, link := range extracted.PublicationLinks {
			front.enqueue(link)
		}

		if extracted.Publication != nil {
			records = append(records, *extracted.Publication)
			stats.Parsed++

			c.logger.WithField(
				"title", extracted.Publication.Title,
			).Info("parsed publication")
		}

		for _, link := range extracted.Links {
			if !c.config.AllowExternalHosts && !pubstore.SameHost(c.config.SeedURL, link) {
				continue
			}

			if !c.matchesPathPattern(link) {
				continue
			}

			front.enqueue(link)
		}
	}

	stats.Visited = front.numVisited()

	c.logger.WithFields(logrus.Fields{
		"visited": stats.Visited,
		"parsed":  stats.Parsed,
		"skipped": stats.Skipped,
		"failed":  stats.Failed,
	}).Info("crawl pass complete")

	return records, stats, nil
}

// fetch retrieves a URL, waiting for the pacing interval before every
// attempt and backing off exponentially between retries. A non-HTML
// response aborts immediately with errNotHTML; other failures are
// retried until the retry budget runs out.
func (c *Crawler) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.get(rawURL)
		if err == nil {
			return body, nil
		}

		if err == errNotHTML {
			return nil, err
		}

		lastErr = err

		if attempt == c.config.MaxRetries-1 {
			break
		}

		backoff := time.Duration(
			math.Pow(c.config.RetryBackoffBase, float64(attempt)) * float64(time.Second),
		)

		c.logger.WithFields(logrus.Fields{
			"url":     rawURL,
			"attempt": attempt + 1,
			"backoff": backoff.String(),
		}).WithError(err).Warn("fetch failed, backing off before retry")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.config.Clock.After(backoff):
		}
	}

	return nil, fmt.Errorf(
		"%w: %s after %d attempts: %v",
		ErrFetchFailed, rawURL, c.config.MaxRetries, lastErr,
	)
}

// get performs a single HTTP GET attempt.
func (c *Crawler) get(rawURL string) ([]byte, error) {
	resp, err := c.config.URLGetter.Get(rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return nil, errNotHTML
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}

func (c *Crawler) matchesPathPattern(link string) bool {
	for _, pattern := range c.config.PathPatterns {
		if strings.Contains(link, pattern) {
			return true
		}
	}

	return false
}
