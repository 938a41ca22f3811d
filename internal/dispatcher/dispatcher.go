// Package dispatcher drives the scrape: it walks the configured ranges in
// fixed-size chunks, fans each chunk out to the fetcher and extractor, and
// merges the results into the store with periodic checkpoints.
package dispatcher

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/team-logo-scraper/internal/crawler"
	"github.com/JakeFAU/team-logo-scraper/internal/store"
)

// Defaults applied by the CLI and by New for zero-valued fields.
const (
	DefaultBaseURL         = "https://www.vlr.gg"
	DefaultBatchSize       = 5
	DefaultSaveInterval    = 50
	DefaultBatchDelay      = 500 * time.Millisecond
	DefaultPlaceholderLogo = "https://www.vlr.gg/img/vlr/tmp/vlr.png"

	// rangeScanBatchSize is the chunk size used when none is configured.
	rangeScanBatchSize = 3
)

// Config tunes a Dispatcher.
type Config struct {
	BaseURL         string
	BatchSize       int
	SaveInterval    int
	BatchDelay      time.Duration
	PlaceholderLogo string
}

// Summary reports the outcome of a Run.
type Summary struct {
	Found       int
	Requests    int
	Stored      int
	Interrupted bool
}

// Dispatcher orchestrates chunked range scans. It is not safe for
// concurrent Runs.
type Dispatcher struct {
	cfg          Config
	fetcher      crawler.Fetcher
	extractor    crawler.Extractor
	checkpointer crawler.Checkpointer
	reporter     crawler.Reporter
	clock        crawler.Clock
	logger       *zap.Logger
}

// New creates a Dispatcher.
func New(
	cfg Config,
	fetcher crawler.Fetcher,
	extractor crawler.Extractor,
	checkpointer crawler.Checkpointer,
	reporter crawler.Reporter,
	clock crawler.Clock,
	logger *zap.Logger,
) *Dispatcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = rangeScanBatchSize
	}
	if cfg.SaveInterval <= 0 {
		cfg.SaveInterval = DefaultSaveInterval
	}
	if cfg.PlaceholderLogo == "" {
		cfg.PlaceholderLogo = DefaultPlaceholderLogo
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		cfg:          cfg,
		fetcher:      fetcher,
		extractor:    extractor,
		checkpointer: checkpointer,
		reporter:     reporter,
		clock:        clock,
		logger:       logger,
	}
}

// probe is the outcome of one candidate in a chunk.
type probe struct {
	id     int
	record crawler.Record
	ok     bool
}

// Run scans every range in order, merging new teams into teams. Cancelling
// ctx stops the scan before the next chunk; the final checkpoint is still
// written and its error is returned.
func (d *Dispatcher) Run(ctx context.Context, teams *store.Teams, ranges []crawler.Range) (Summary, error) {
	// Saves must land even after a shutdown signal.
	saveCtx := context.WithoutCancel(ctx)
	interrupted := false

	for _, r := range ranges {
		if err := d.scanRange(ctx, saveCtx, teams, r); err != nil {
			d.logger.Info("scan interrupted", zap.Stringer("range", r), zap.Error(err))
			interrupted = true
			break
		}
	}

	summary := Summary{
		Found:       d.reporter.Found(),
		Requests:    d.reporter.Requests(),
		Stored:      teams.Len(),
		Interrupted: interrupted,
	}
	if err := d.checkpointer.Save(saveCtx, teams.Records()); err != nil {
		return summary, fmt.Errorf("final checkpoint: %w", err)
	}
	d.logger.Info("scan finished",
		zap.Int("found", summary.Found),
		zap.Int("requests", summary.Requests),
		zap.Int("stored", summary.Stored),
		zap.Bool("interrupted", interrupted),
	)
	return summary, nil
}

// scanRange walks r in chunks. It returns the context error when the scan
// stopped early.
func (d *Dispatcher) scanRange(ctx, saveCtx context.Context, teams *store.Teams, r crawler.Range) error {
	size := d.cfg.BatchSize
	d.logger.Debug("scanning range", zap.Stringer("range", r), zap.Int("batch_size", size))
	for start := r.Start; start <= r.End; start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+size-1, r.End)
		probes := d.processBatch(ctx, start, end)
		d.reporter.AddRequests(len(probes))
		d.merge(saveCtx, teams, probes)
		d.reporter.Advance(len(probes))

		if start+size <= r.End {
			if err := d.clock.Sleep(ctx, d.cfg.BatchDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

// processBatch probes ids start..end concurrently and waits for all of them.
// Results keep chunk order.
func (d *Dispatcher) processBatch(ctx context.Context, start, end int) []probe {
	probes := make([]probe, end-start+1)
	var g errgroup.Group
	for i := range probes {
		id := start + i
		g.Go(func() error {
			probes[i] = d.probe(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return probes
}

func (d *Dispatcher) probe(ctx context.Context, id int) probe {
	url := d.cfg.BaseURL + "/team/" + strconv.Itoa(id)
	res := d.fetcher.Fetch(ctx, url)
	body, ok := res.Body()
	if !ok {
		d.logger.Debug("no page",
			zap.String("url", url),
			zap.Stringer("outcome", res.Status),
			zap.Int("status_code", res.StatusCode),
			zap.Error(res.Err),
		)
		return probe{id: id}
	}
	rec, err := d.extractor.Extract(body, url)
	if err != nil {
		d.logger.Debug("no team on page", zap.String("url", url), zap.Error(err))
		return probe{id: id}
	}
	return probe{id: id, record: rec, ok: true}
}

// merge folds a chunk's results into teams in chunk order.
func (d *Dispatcher) merge(saveCtx context.Context, teams *store.Teams, probes []probe) {
	for _, p := range probes {
		if !p.ok {
			continue
		}
		if teams.Has(p.record.TeamID) {
			continue
		}
		if p.record.LogoURL == d.cfg.PlaceholderLogo {
			d.logger.Debug("placeholder logo skipped", zap.String("team_id", p.record.TeamID))
			continue
		}
		teams.Add(p.record)
		found := d.reporter.AddFound()
		d.logger.Debug("team found",
			zap.String("team_id", p.record.TeamID),
			zap.String("team_name", p.record.TeamName),
		)
		if found%d.cfg.SaveInterval == 0 {
			d.checkpoint(saveCtx, teams)
		}
	}
}

func (d *Dispatcher) checkpoint(ctx context.Context, teams *store.Teams) {
	if err := d.checkpointer.Save(ctx, teams.Records()); err != nil {
		d.logger.Warn("checkpoint failed", zap.Int("records", teams.Len()), zap.Error(err))
		return
	}
	d.logger.Info("checkpoint written", zap.Int("records", teams.Len()))
}
