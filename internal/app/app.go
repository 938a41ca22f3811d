// Package app initializes and holds the long-lived services for a scrape run
// and wires them into the dispatcher.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	gcsstorage "cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/JakeFAU/team-logo-scraper/internal/api"
	"github.com/JakeFAU/team-logo-scraper/internal/clock/system"
	"github.com/JakeFAU/team-logo-scraper/internal/config"
	"github.com/JakeFAU/team-logo-scraper/internal/crawler"
	"github.com/JakeFAU/team-logo-scraper/internal/dispatcher"
	"github.com/JakeFAU/team-logo-scraper/internal/extractor"
	collyfetcher "github.com/JakeFAU/team-logo-scraper/internal/fetcher/colly"
	"github.com/JakeFAU/team-logo-scraper/internal/metrics"
	"github.com/JakeFAU/team-logo-scraper/internal/progress"
	"github.com/JakeFAU/team-logo-scraper/internal/progress/sinks"
	"github.com/JakeFAU/team-logo-scraper/internal/storage"
	"github.com/JakeFAU/team-logo-scraper/internal/storage/gcs"
	"github.com/JakeFAU/team-logo-scraper/internal/storage/local"
)

// GCSClientFactory creates a storage client. It is swapped in tests.
type GCSClientFactory func(ctx context.Context) (*gcsstorage.Client, error)

// DefaultGCSClientFactory uses Application Default Credentials.
func DefaultGCSClientFactory(ctx context.Context) (*gcsstorage.Client, error) {
	client, err := gcsstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return client, nil
}

// Options adjusts how the App talks to its environment.
type Options struct {
	// Stdout receives the progress bar.
	Stdout io.Writer
	// Interactive reports whether Stdout is a terminal.
	Interactive bool
	// NewGCSClient defaults to DefaultGCSClientFactory.
	NewGCSClient GCSClientFactory
	// Fetcher and Clock override the real implementations when set.
	Fetcher crawler.Fetcher
	Clock   crawler.Clock
}

// App holds the shared services for one run.
type App struct {
	cfg      config.Config
	opts     Options
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	file     *local.TeamFile
	mirror   storage.Provider
	closers  []func() error
}

// New creates and initializes an App. It fails fast when a configured
// service cannot be built.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.NewGCSClient == nil {
		opts.NewGCSClient = DefaultGCSClientFactory
	}

	file, err := local.NewTeamFile(cfg.Scraper.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("init output file: %w", err)
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	a := &App{
		cfg:      cfg,
		opts:     opts,
		logger:   logger,
		registry: registry,
		metrics:  m,
		file:     file,
		mirror:   storage.NoOpProvider{},
	}
	if err := a.initMirror(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) initMirror(ctx context.Context) error {
	var providers storage.Multi
	if dir := a.cfg.Mirror.LocalDir; dir != "" {
		blob, err := local.New(local.Config{BaseDir: dir})
		if err != nil {
			return fmt.Errorf("init local mirror: %w", err)
		}
		a.logger.Info("mirroring to local directory", zap.String("dir", dir))
		providers = append(providers, blob)
	}
	if bucket := a.cfg.Mirror.GCSBucket; bucket != "" {
		client, err := a.opts.NewGCSClient(ctx)
		if err != nil {
			return fmt.Errorf("init gcs mirror: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		blob, err := gcs.New(client, gcs.Config{Bucket: bucket})
		if err != nil {
			return fmt.Errorf("init gcs mirror: %w", err)
		}
		a.logger.Info("mirroring to gcs", zap.String("uri", blob.URI(a.cfg.Mirror.Object)))
		providers = append(providers, blob)
	}
	if len(providers) > 0 {
		a.mirror = providers
	}
	return nil
}

// Run loads the existing store, scans every configured range, and mirrors
// the final snapshot. Only a store load failure or a failed final
// checkpoint is returned as an error.
func (a *App) Run(ctx context.Context) (dispatcher.Summary, error) {
	teams, err := a.file.Load(ctx)
	if err != nil {
		return dispatcher.Summary{}, fmt.Errorf("load existing teams: %w", err)
	}
	a.logger.Info("loaded existing teams",
		zap.String("file", a.file.Path()),
		zap.Int("count", teams.Len()),
	)

	ranges := a.cfg.Scraper.Ranges
	progressSinks := []progress.Sink{a.metrics, a.progressSink()}

	var (
		state    *api.ProgressState
		serverWG sync.WaitGroup
	)
	serverCtx, stopServer := context.WithCancel(ctx)
	defer func() {
		stopServer()
		serverWG.Wait()
	}()
	if addr := a.cfg.Metrics.ListenAddr; addr != "" {
		state = api.NewProgressState()
		progressSinks = append(progressSinks, state)
		server := api.NewServer(state, a.registry, a.metrics, a.logger)
		serverWG.Add(1)
		go func() {
			defer serverWG.Done()
			if err := server.ListenAndServe(serverCtx, addr); err != nil {
				a.logger.Warn("status server failed", zap.Error(err))
			}
		}()
	}

	tracker := progress.NewTracker(crawler.TotalCandidates(ranges), a.logger, progressSinks...)
	d := dispatcher.New(
		dispatcher.Config{
			BaseURL:         a.cfg.Scraper.BaseURL,
			BatchSize:       a.cfg.Scraper.BatchSize,
			SaveInterval:    a.cfg.Scraper.SaveInterval,
			BatchDelay:      a.cfg.Scraper.BatchDelay,
			PlaceholderLogo: a.cfg.Scraper.PlaceholderLogo,
		},
		metrics.InstrumentFetcher(a.fetcher(), a.metrics),
		extractor.New(a.cfg.Scraper.BaseURL),
		metrics.InstrumentCheckpointer(a.file, a.metrics),
		tracker,
		a.clock(),
		a.logger,
	)

	summary, runErr := d.Run(ctx, teams, ranges)
	tracker.Close()
	if runErr != nil {
		return summary, runErr
	}

	a.mirrorSnapshot(context.WithoutCancel(ctx), teams.Records())
	return summary, nil
}

// OutputPath returns the path of the output file.
func (a *App) OutputPath() string {
	return a.file.Path()
}

func (a *App) progressSink() progress.Sink {
	if a.cfg.Progress.Enabled && a.opts.Interactive {
		return sinks.NewBarSink(crawler.TotalCandidates(a.cfg.Scraper.Ranges), a.opts.Stdout)
	}
	return sinks.NewLogSink(a.logger.Named("progress"))
}

func (a *App) fetcher() crawler.Fetcher {
	if a.opts.Fetcher != nil {
		return a.opts.Fetcher
	}
	headers := collyfetcher.DefaultHeaders()
	setIfNotEmpty(headers.Set, "Accept", a.cfg.HTTP.Accept)
	setIfNotEmpty(headers.Set, "Accept-Language", a.cfg.HTTP.AcceptLanguage)
	setIfNotEmpty(headers.Set, "Connection", a.cfg.HTTP.Connection)
	return collyfetcher.New(collyfetcher.Config{
		UserAgent: a.cfg.HTTP.UserAgent,
		Headers:   headers,
		Timeout:   a.cfg.Timeout(),
	})
}

func setIfNotEmpty(set func(key, value string), key, value string) {
	if value != "" {
		set(key, value)
	}
}

func (a *App) clock() crawler.Clock {
	if a.opts.Clock != nil {
		return a.opts.Clock
	}
	return system.New()
}

func (a *App) mirrorSnapshot(ctx context.Context, records []crawler.Record) {
	if _, noop := a.mirror.(storage.NoOpProvider); noop {
		return
	}
	data, err := local.Encode(records)
	if err != nil {
		a.logger.Warn("encode mirror snapshot failed", zap.Error(err))
		return
	}
	if err := a.mirror.Save(ctx, a.cfg.Mirror.Object, data); err != nil {
		a.logger.Warn("mirror snapshot failed", zap.String("object", a.cfg.Mirror.Object), zap.Error(err))
		return
	}
	a.logger.Info("snapshot mirrored",
		zap.String("object", a.cfg.Mirror.Object),
		zap.Int("records", len(records)),
	)
}

// Close releases the services held by the App.
func (a *App) Close() {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("error closing services", zap.Error(err))
	}
}
