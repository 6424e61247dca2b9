package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/buscajob/buscajob/internal/adapter"
	"github.com/buscajob/buscajob/internal/cache"
	"github.com/buscajob/buscajob/internal/config"
	"github.com/buscajob/buscajob/internal/model"
	"github.com/buscajob/buscajob/internal/notifier"
	"github.com/buscajob/buscajob/internal/pipeline"
	"github.com/buscajob/buscajob/internal/ratelimit"
	"github.com/buscajob/buscajob/internal/report"
	"github.com/buscajob/buscajob/internal/retry"
	"github.com/buscajob/buscajob/internal/snapshot"
	"github.com/buscajob/buscajob/internal/stats"
	"github.com/buscajob/buscajob/internal/store"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:          "buscajob",
	Short:        "Job posting search across Brazilian job sites",
	Long:         "BuscaJob searches several job sites at once, deduplicates and filters the postings, and serves them over HTTP, the terminal and scheduled reports.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: BUSCAJOB_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > BUSCAJOB_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	return config.Load(config.ResolvePath(path))
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// app holds the components shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	stats    *stats.Stats
	pipeline *pipeline.Pipeline
	sink     *snapshot.Sink
	cache    cache.Store
	store    model.CriteriaStore
	notifier model.Notifier
	report   *report.Generator
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, stats: stats.New()}
	httpClient := &http.Client{Timeout: 30 * time.Second}

	registry, err := buildRegistry(cfg, httpClient, logger)
	if err != nil {
		return nil, err
	}
	a.pipeline = pipeline.New(registry, logger,
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithAdapterTimeout(cfg.Pipeline.AdapterTimeout),
		pipeline.WithDefaultSites(cfg.Pipeline.DefaultSites),
		pipeline.WithObserver(a.stats),
	)

	a.sink, err = snapshot.New(cfg.Output.Dir, logger, snapshot.WithRetention(cfg.Output.Retention))
	if err != nil {
		return nil, err
	}

	a.cache, err = setupCache(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a.store, err = setupStore(cfg, logger)
	if err != nil {
		a.cache.Close()
		return nil, err
	}

	a.notifier, err = setupNotifier(ctx, cfg, httpClient, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.report = report.NewGenerator(a.pipeline, a.sink, logger,
		report.WithNotifier(a.notifier),
		report.WithQueries(cfg.Report.Roles, cfg.Report.Cities, cfg.Report.ContractTypes),
	)
	return a, nil
}

func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("closing cache failed", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store failed", "error", err)
	}
}

// mustApp loads the config and builds the app, exiting on failure.
func mustApp(ctx context.Context, logger *slog.Logger) *app {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	return a
}

func buildRegistry(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (*adapter.Registry, error) {
	var adapters []model.SiteAdapter
	if cfg.Pipeline.Synthetic {
		adapters = append(adapters, adapter.NewSyntheticAdapters(logger)...)
	}

	// Shared host-level rate limiter; each custom site sets the pace for its host.
	overrides := make(map[string]time.Duration)
	for _, cs := range cfg.CustomSites {
		u, err := url.Parse(cs.SearchURL)
		if err != nil {
			return nil, fmt.Errorf("custom site %s: %w", cs.ID, err)
		}
		overrides[u.Host] = cs.MinInterval
	}
	limiter := ratelimit.NewHostRateLimiter(0, overrides)

	for _, cs := range cfg.CustomSites {
		var fetcher model.PageFetcher = adapter.NewHTTPPageFetcher(httpClient)
		fetcher = ratelimit.NewRateLimitedFetcher(fetcher, limiter)
		fetcher = retry.NewRetryFetcher(fetcher, cfg.Pipeline.Retry.Attempts, cfg.Pipeline.Retry.MinDelay, cfg.Pipeline.Retry.MaxDelay, logger)

		adapters = append(adapters, adapter.NewHTMLAdapter(adapter.HTMLSite{
			ID:        cs.ID,
			Name:      cs.Name,
			SearchURL: cs.SearchURL,
			Selectors: adapter.HTMLSelectors{
				Item:        cs.Selectors.Item,
				Title:       cs.Selectors.Title,
				Company:     cs.Selectors.Company,
				Location:    cs.Selectors.Location,
				Salary:      cs.Selectors.Salary,
				Description: cs.Selectors.Description,
				Link:        cs.Selectors.Link,
				Published:   cs.Selectors.Published,
			},
			ContractType: cs.ContractType,
			Timeout:      cs.Timeout,
		}, fetcher, logger))
		logger.Debug("registered custom site", "site", cs.ID, "min_interval", cs.MinInterval.String())
	}

	if len(adapters) == 0 {
		return nil, fmt.Errorf("no sites configured: enable pipeline.synthetic or add custom_sites")
	}
	return adapter.NewRegistry(adapters...), nil
}

func setupCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, error) {
	switch cfg.Cache.Type {
	case "redis":
		logger.Info("using redis cache")
		return cache.NewRedisStore(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
	default:
		return cache.NewMemoryStore(cfg.Cache.TTL), nil
	}
}

func setupStore(cfg *config.Config, logger *slog.Logger) (model.CriteriaStore, error) {
	if cfg.Store.Path == "" {
		logger.Debug("persistence disabled, using nop store")
		return store.NewNopStore(), nil
	}
	return store.NewSQLiteStore(cfg.Store.Path)
}

func setupNotifier(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.Notifier, error) {
	notifiers := notifier.Multi{notifier.NewLogNotifier(logger)}

	if cfg.Slack.WebhookURL != "" {
		logger.Info("using slack notifier")
		notifiers = append(notifiers, notifier.NewSlackNotifier(cfg.Slack.WebhookURL, httpClient, logger))
	}

	if cfg.Email.Enabled {
		var sender notifier.MailSender
		switch cfg.Email.Transport {
		case "ses":
			ses, err := notifier.NewSESSender(ctx, cfg.Email.Region)
			if err != nil {
				return nil, err
			}
			sender = ses
		default:
			sender = &notifier.SMTPSender{
				Host:     cfg.Email.Host,
				Port:     cfg.Email.Port,
				Username: cfg.Email.Username,
				Password: cfg.Email.Password,
				Timeout:  30 * time.Second,
			}
		}
		email, err := notifier.NewEmailNotifier(cfg.Email.From, cfg.Email.To, sender, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("using email notifier", "transport", cfg.Email.Transport, "recipients", len(cfg.Email.To))
		notifiers = append(notifiers, email)
	}

	return notifiers, nil
}
