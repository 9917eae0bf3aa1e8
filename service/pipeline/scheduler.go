package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmwangi/pubdex/pubstore"
)

// crawlStatus is the persisted marker of when the last scheduled crawl
// ran.
type crawlStatus struct {
	LastCrawlTimestamp int64  `json:"last_crawl_timestamp"`
	LastCrawlDate      string `json:"last_crawl_date"`
}

// Scheduler is the service that owns the application's single
// crawl-worker slot. Pipeline runs happen only inside its Run loop, so
// at most one crawl is ever in flight; that exclusivity is structural,
// not a convention. It satisfies the service.Service interface.
type Scheduler struct {
	config   Config
	pipeline *Pipeline

	// Capacity-one trigger slot: a request arriving while a run is in
	// progress parks here, and further requests coalesce into it.
	trigger chan struct{}
}

// NewScheduler creates and returns a fully configured scheduler
// service wrapping its own pipeline instance.
func NewScheduler(config Config) (*Scheduler, error) {
	p, err := New(config)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		config:   p.config,
		pipeline: p,
		trigger:  make(chan struct{}, 1),
	}, nil
}

// Name returns the name of the service.
func (s *Scheduler) Name() string { return "crawl-scheduler" }

// Trigger requests an immediate pipeline run. It never blocks: when a
// request is already pending the new one coalesces into it and Trigger
// reports false.
func (s *Scheduler) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Run executes the service and blocks until the context gets cancelled
// or an error occurs. A pipeline run starts when the crawl interval has
// elapsed since the last recorded run, or when Trigger is called.
func (s *Scheduler) Run(ctx context.Context) error {
	s.config.Logger.WithField(
		"crawl_interval", s.config.CrawlInterval.String(),
	).Info("starting service")
	defer s.config.Logger.Info("stopped service")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.trigger:
			s.runPass(ctx)
		case <-s.config.Clock.After(s.config.CheckInterval):
			if s.due() {
				s.runPass(ctx)
			}
		}
	}
}

// runPass executes one pipeline run and records its completion time.
// Run failures are logged, never fatal to the service: the next
// interval or trigger simply tries again.
func (s *Scheduler) runPass(ctx context.Context) {
	if err := s.recordCrawlTime(); err != nil {
		s.config.Logger.WithError(err).Error("failed to update crawl status")
	}

	if _, err := s.pipeline.Run(ctx); err != nil {
		s.config.Logger.WithError(err).Error("scheduled pipeline run failed")
	}
}

// due reports whether the crawl interval has elapsed since the last
// recorded run. A missing or unreadable status file means a run is due.
func (s *Scheduler) due() bool {
	lastCrawl, err := s.lastCrawlTime()
	if err != nil {
		s.config.Logger.WithError(err).Warn("could not read crawl status, scheduling run")

		return true
	}

	if lastCrawl.IsZero() {
		return true
	}

	return s.config.Clock.Now().Sub(lastCrawl) > s.config.CrawlInterval
}

func (s *Scheduler) lastCrawlTime() (time.Time, error) {
	if s.config.StatusPath == "" {
		return time.Time{}, nil
	}

	data, err := os.ReadFile(s.config.StatusPath)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}

		return time.Time{}, fmt.Errorf("read crawl status: %w", err)
	}

	var status crawlStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return time.Time{}, fmt.Errorf("decode crawl status: %w", err)
	}

	if status.LastCrawlTimestamp == 0 {
		return time.Time{}, nil
	}

	return time.Unix(status.LastCrawlTimestamp, 0), nil
}

func (s *Scheduler) recordCrawlTime() error {
	if s.config.StatusPath == "" {
		return nil
	}

	now := s.config.Clock.Now()

	data, err := json.MarshalIndent(crawlStatus{
		LastCrawlTimestamp: now.Unix(),
		LastCrawlDate:      now.Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode crawl status: %w", err)
	}

	return pubstore.WriteAtomic(s.config.StatusPath, data)
}
