/*
pipeline package sequences the full crawl-and-index workflow: load the
existing record store, run a bounded crawl pass, merge the new records
in by canonical URL, persist the merged store, rebuild the entire index
payload from it, and persist that atomically. The index is always
rebuilt from the whole merged corpus rather than patched incrementally,
which trades rebuild time (acceptable at this corpus size) for the
guarantee that postings, lengths and IDF can never drift from the
record store.

The package also provides the Scheduler service that owns the single
crawl-worker slot.
*/
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dmwangi/pubdex/crawler"
	"github.com/dmwangi/pubdex/pubstore"
	"github.com/dmwangi/pubdex/textindexer/index"
)

// Stats reports timing and coverage for one pipeline run.
type Stats struct {
	OldDocs   int
	NewDocs   int
	TotalDocs int
	CrawlTime time.Duration
	IndexTime time.Duration
	TotalTime time.Duration
}

// Pipeline executes crawl -> merge -> persist -> rebuild -> persist
// runs.
type Pipeline struct {
	config Config
	logger *logrus.Entry
}

// New creates and returns a fully configured pipeline instance.
func New(config Config) (*Pipeline, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("pipeline: config validation failed: %w", err)
	}

	return &Pipeline{
		config: config,
		logger: config.Logger,
	}, nil
}

// Run executes one full pipeline pass. If the crawl is interrupted by
// context cancellation, the records gathered up to that point are still
// merged and persisted before the error is returned, so partial
// progress survives into the next run.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	startedAt := p.config.Clock.Now()

	oldRecords, err := pubstore.LoadRecords(p.config.RecordsPath)
	if err != nil {
		return stats, fmt.Errorf("pipeline: load record store: %w", err)
	}

	stats.OldDocs = len(oldRecords)
	p.logger.WithField("records", stats.OldDocs).Info("loaded existing publications")

	// A fresh crawler per pass, so robots.txt rules are re-fetched on
	// every run.
	c, err := crawler.New(p.config.CrawlConfig)
	if err != nil {
		return stats, fmt.Errorf("pipeline: configure crawler: %w", err)
	}

	crawlStartedAt := p.config.Clock.Now()
	newRecords, crawlStats, crawlErr := c.Crawl(ctx)
	stats.CrawlTime = p.config.Clock.Now().Sub(crawlStartedAt)
	stats.NewDocs = len(newRecords)

	merged, mergeStats := pubstore.Merge(oldRecords, newRecords)
	stats.TotalDocs = mergeStats.Total

	p.logger.WithFields(logrus.Fields{
		"visited": crawlStats.Visited,
		"added":   mergeStats.Added,
		"updated": mergeStats.Updated,
		"total":   mergeStats.Total,
	}).Info("merged crawl results into record store")

	if err := pubstore.SaveRecords(p.config.RecordsPath, merged); err != nil {
		return stats, fmt.Errorf("pipeline: persist record store: %w", err)
	}

	if crawlErr != nil {
		stats.TotalTime = p.config.Clock.Now().Sub(startedAt)

		return stats, fmt.Errorf("pipeline: crawl interrupted: %w", crawlErr)
	}

	indexStartedAt := p.config.Clock.Now()
	payload := index.BuildPayload(merged, !p.config.DisableStemming)

	if err := payload.Save(p.config.IndexPath); err != nil {
		return stats, fmt.Errorf("pipeline: persist index payload: %w", err)
	}

	stats.IndexTime = p.config.Clock.Now().Sub(indexStartedAt)

	if p.config.Searcher != nil {
		p.config.Searcher.Replace(payload)
	}

	stats.TotalTime = p.config.Clock.Now().Sub(startedAt)

	p.logger.WithFields(logrus.Fields{
		"total_docs": stats.TotalDocs,
		"crawl_time": stats.CrawlTime.String(),
		"index_time": stats.IndexTime.String(),
		"total_time": stats.TotalTime.String(),
	}).Info("pipeline run complete")

	return stats, nil
}
