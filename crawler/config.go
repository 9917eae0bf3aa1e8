package crawler

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/dmwangi/pubdex/crawler/pubparse"
)

// Defaults applied by Config.validate.
const (
	DefaultMaxPages         = 300
	DefaultDelay            = 1200 * time.Millisecond
	DefaultMaxRetries       = 3
	DefaultRetryBackoffBase = 2.0
	DefaultFetchTimeout     = 30 * time.Second
	DefaultUserAgent        = "pubdex-crawler/1.0 (+https://github.com/dmwangi/pubdex)"
)

// defaultPathPatterns are the portal path families worth following
// during frontier expansion.
var defaultPathPatterns = []string{
	"/en/publications/",
	"/en/persons/",
	"/en/organisations/",
}

// Config defines configurations for a single crawl pass.
type Config struct {
	// SeedURL is where the BFS starts. It must be an absolute http(s)
	// URL; an unparsable seed is the one fatal configuration error,
	// detected here before any I/O begins.
	SeedURL string

	// MaxPages bounds the number of canonical URLs visited in one
	// pass. Defaults to 300.
	MaxPages int

	// Delay is the pacing interval between requests. robots.txt may
	// raise it via its crawl-delay directive, never lower it.
	// Defaults to 1.2s.
	Delay time.Duration

	// UserAgent identifies the crawler to the portal and to robots.txt
	// group matching.
	UserAgent string

	// AllowExternalHosts lifts the same-host restriction. By default
	// only URLs on the seed's host are visited.
	AllowExternalHosts bool

	// MaxRetries is the number of fetch attempts per URL before it is
	// marked failed. Defaults to 3.
	MaxRetries int

	// RetryBackoffBase is the exponential backoff base: after attempt
	// n the crawler waits base^n seconds. Defaults to 2.0.
	RetryBackoffBase float64

	// FetchTimeout is the hard per-request timeout; exceeding it
	// counts as a failed attempt subject to retry. Defaults to 30s.
	FetchTimeout time.Duration

	// PathPatterns restricts generic frontier expansion to links whose
	// URL contains one of these substrings.
	PathPatterns []string

	// An API for performing HTTP requests. If not specified, an
	// http.Client honoring FetchTimeout is used.
	URLGetter URLGetter

	// An API for extracting links and publication data from fetched
	// pages. If not specified, the pubparse portal parser is used.
	Extractor Extractor

	// A clock instance used for backoff waits. If not specified, the
	// wall-clock is used.
	Clock clock.Clock

	// The logger to use. If not defined, an output-discarding logger
	// is used.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	seed, parseErr := url.Parse(config.SeedURL)
	if parseErr != nil || seed.Host == "" ||
		(seed.Scheme != "http" && seed.Scheme != "https") {
		err = multierror.Append(err, fmt.Errorf(
			"seed URL %q is not an absolute http(s) URL", config.SeedURL,
		))
	}

	if config.MaxPages < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for max pages, must be >= 0"))
	} else if config.MaxPages == 0 {
		config.MaxPages = DefaultMaxPages
	}

	if config.Delay < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for delay, must be >= 0"))
	} else if config.Delay == 0 {
		config.Delay = DefaultDelay
	}

	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	if config.MaxRetries < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for max retries, must be >= 0"))
	} else if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}

	if config.RetryBackoffBase < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for retry backoff base, must be >= 0"))
	} else if config.RetryBackoffBase == 0 {
		config.RetryBackoffBase = DefaultRetryBackoffBase
	}

	if config.FetchTimeout == 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}

	if len(config.PathPatterns) == 0 {
		config.PathPatterns = defaultPathPatterns
	}

	if config.URLGetter == nil {
		config.URLGetter = &http.Client{Timeout: config.FetchTimeout}
	}

	if config.Extractor == nil {
		config.Extractor = pubparse.New()
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
