package crawler

import (
	"io"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// robotsPolicy holds the allow/deny rules and crawl-delay parsed from
// the seed host's robots.txt. When robots.txt cannot be fetched the
// policy is permissive: the crawl proceeds and the condition is logged.
type robotsPolicy struct {
	group      *robotstxt.Group
	permissive bool
}

// newRobotsPolicy fetches and parses robots.txt for the seed's host,
// once, at crawler construction.
func newRobotsPolicy(
	getter URLGetter, seed *url.URL, userAgent string, logger *logrus.Entry,
) *robotsPolicy {

	robotsURL := seed.Scheme + "://" + seed.Host + "/robots.txt"

	resp, err := getter.Get(robotsURL)
	if err != nil {
		logger.WithError(err).Warn("failed to fetch robots.txt, proceeding permissively")

		return &robotsPolicy{permissive: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		logger.WithField("status", resp.StatusCode).Warn(
			"could not load robots.txt, proceeding permissively",
		)

		return &robotsPolicy{permissive: true}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.WithError(err).Warn("failed to read robots.txt, proceeding permissively")

		return &robotsPolicy{permissive: true}
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		logger.WithError(err).Warn("failed to parse robots.txt, proceeding permissively")

		return &robotsPolicy{permissive: true}
	}

	return &robotsPolicy{group: data.FindGroup(userAgent)}
}

// allowed reports whether the configured user-agent may fetch u.
func (p *robotsPolicy) allowed(u *url.URL) bool {
	if p.permissive {
		return true
	}

	return p.group.Test(u.RequestURI())
}

// crawlDelay returns the crawl-delay directive for the user-agent's
// group, or zero when none applies.
func (p *robotsPolicy) crawlDelay() time.Duration {
	if p.permissive {
		return 0
	}

	return p.group.CrawlDelay
}
