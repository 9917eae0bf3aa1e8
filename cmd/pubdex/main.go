package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/dmwangi/pubdex/crawler"
	appconfig "github.com/dmwangi/pubdex/internal/config"
	"github.com/dmwangi/pubdex/searcher"
	"github.com/dmwangi/pubdex/service"
	"github.com/dmwangi/pubdex/service/pipeline"
)

const appName = "pubdex"

func main() {
	var (
		configPath string
		query      string
		once       bool
	)

	cfg := appconfig.Default()

	flag.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flag.StringVar(&cfg.Seed, "seed", cfg.Seed, "Seed URL to start crawling from")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding the record store and index")
	flag.IntVar(&cfg.MaxPages, "max-pages", cfg.MaxPages, "Maximum pages to crawl per pass")
	flag.Float64Var(&cfg.DelaySeconds, "delay", cfg.DelaySeconds, "Delay between requests in seconds")
	flag.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User agent string")
	flag.IntVar(&cfg.CrawlIntervalDays, "crawl-interval-days", cfg.CrawlIntervalDays, "Days between scheduled crawl passes")
	flag.StringVar(&query, "search", "", "Run a one-shot query against the persisted index and exit")
	flag.IntVar(&cfg.TopK, "top-k", cfg.TopK, "Maximum number of search results")
	flag.BoolVar(&once, "once", false, "Run a single crawl+index pass and exit")
	flag.Parse()

	host, _ := os.Hostname()
	rootLogger := logrus.New()
	logger := rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"host": host,
	})

	if configPath != "" {
		loaded, err := appconfig.Load(configPath)
		if err != nil {
			logger.WithError(err).Error("failed to load config file")
			os.Exit(1)
		}

		// Flags given on the command line win over the file.
		flagged := cfg
		cfg = loaded
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "seed":
				cfg.Seed = flagged.Seed
			case "data-dir":
				cfg.DataDir = flagged.DataDir
			case "max-pages":
				cfg.MaxPages = flagged.MaxPages
			case "delay":
				cfg.DelaySeconds = flagged.DelaySeconds
			case "user-agent":
				cfg.UserAgent = flagged.UserAgent
			case "crawl-interval-days":
				cfg.CrawlIntervalDays = flagged.CrawlIntervalDays
			case "top-k":
				cfg.TopK = flagged.TopK
			}
		})
	}

	if query != "" {
		if err := runSearch(cfg, query, logger); err != nil {
			logger.WithError(err).Error("search failed")
			os.Exit(1)
		}

		return
	}

	if err := runServices(cfg, once, logger); err != nil {
		logger.WithError(err).Error("shutting down due to an error")
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// runSearch answers a one-shot query from the persisted index.
func runSearch(cfg appconfig.Config, query string, logger *logrus.Entry) error {
	s, err := searcher.New(searcher.Config{
		IndexPath:       cfg.IndexPath(),
		DisableStemming: cfg.DisableStemming,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	results := s.Search(query, cfg.TopK)
	if len(results) == 0 {
		fmt.Println("no results")

		return nil
	}

	for i, result := range results {
		fmt.Printf(
			"%2d. [%.4f] %s (%s)\n    %s\n    %s\n",
			i+1, result.Score, result.Title, result.Year,
			strings.Join(result.Authors, ", "), result.PublicationURL,
		)
	}

	return nil
}

// runServices wires the scheduler (and searcher handle) into a service
// group and blocks until an os signal or an error stops it.
func runServices(cfg appconfig.Config, once bool, logger *logrus.Entry) error {
	s, err := searcher.New(searcher.Config{
		IndexPath:       cfg.IndexPath(),
		DisableStemming: cfg.DisableStemming,
		Logger:          logger.WithField("service", "searcher"),
	})
	if err != nil {
		return err
	}

	pipelineConfig := pipeline.Config{
		RecordsPath: cfg.RecordsPath(),
		IndexPath:   cfg.IndexPath(),
		StatusPath:  cfg.StatusPath(),
		CrawlConfig: crawler.Config{
			SeedURL:          cfg.Seed,
			MaxPages:         cfg.MaxPages,
			Delay:            cfg.Delay(),
			UserAgent:        cfg.UserAgent,
			MaxRetries:       cfg.MaxRetries,
			RetryBackoffBase: cfg.RetryBackoffBase,
			Logger:           logger.WithField("service", "crawler"),
		},
		DisableStemming: cfg.DisableStemming,
		Searcher:        s,
		CrawlInterval:   cfg.CrawlInterval(),
		Logger:          logger.WithField("service", "pipeline"),
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	if once {
		p, err := pipeline.New(pipelineConfig)
		if err != nil {
			return err
		}

		stats, err := p.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Printf(
			"pipeline complete: %d documents indexed (crawl %s, index %s)\n",
			stats.TotalDocs, stats.CrawlTime, stats.IndexTime,
		)

		return nil
	}

	scheduler, err := pipeline.NewScheduler(pipelineConfig)
	if err != nil {
		return err
	}

	// Kick off an immediate pass on startup when one is overdue; the
	// scheduler coalesces it with any interval-driven run.
	scheduler.Trigger()

	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

		select {
		case s := <-signalChan:
			logger.WithField("signal", s.String()).Info("shutting down due to os signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return service.Group{scheduler}.Execute(ctx)
}
