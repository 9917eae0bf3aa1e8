package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/dmwangi/pubdex/crawler"
	"github.com/dmwangi/pubdex/searcher"
)

// Defaults applied by Config.validate.
const (
	DefaultCrawlInterval = 7 * 24 * time.Hour
	DefaultCheckInterval = time.Hour
)

// Config defines configurations for the crawl-and-index pipeline and
// its scheduler.
type Config struct {
	// RecordsPath is the line-delimited publication record store.
	RecordsPath string

	// IndexPath is the single-document JSON index payload.
	IndexPath string

	// StatusPath records when the last scheduled crawl ran. Only the
	// scheduler touches it.
	StatusPath string

	// CrawlConfig configures the crawler built for each pass. Its
	// seed URL is validated when the pass constructs the crawler.
	CrawlConfig crawler.Config

	// DisableStemming builds the index without stemming. The same
	// setting must be used on the query path.
	DisableStemming bool

	// Searcher, when provided, receives each freshly rebuilt payload
	// so the query path picks it up without a restart.
	Searcher *searcher.Searcher

	// CrawlInterval is the duration between scheduled passes.
	// Defaults to 7 days.
	CrawlInterval time.Duration

	// CheckInterval is how often the scheduler wakes up to see whether
	// CrawlInterval has elapsed. Defaults to 1 hour.
	CheckInterval time.Duration

	// A clock instance for pacing the scheduler. If not specified, the
	// wall-clock is used.
	Clock clock.Clock

	// The logger to use. If not defined, an output-discarding logger
	// is used.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.RecordsPath == "" {
		err = multierror.Append(err, fmt.Errorf("records path not provided"))
	}

	if config.IndexPath == "" {
		err = multierror.Append(err, fmt.Errorf("index path not provided"))
	}

	if config.CrawlInterval == 0 {
		config.CrawlInterval = DefaultCrawlInterval
	}

	if config.CheckInterval == 0 {
		config.CheckInterval = DefaultCheckInterval
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
