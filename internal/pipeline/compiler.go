package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/community-census-etl/internal/domain"
	"github.com/couchcryptid/community-census-etl/internal/observability"
	"golang.org/x/sync/errgroup"
)

// maxWorkers caps the default pool size regardless of core count.
const maxWorkers = 10

// Fetcher makes a community's report available on local disk.
type Fetcher interface {
	Fetch(ctx context.Context, slug string) (domain.Document, error)
}

// Extractor reads the immigration fields from a fetched report.
type Extractor interface {
	Extract(ctx context.Context, doc domain.Document) domain.Extraction
}

// Options tune a Compiler.
type Options struct {
	// Workers is the pool size; 0 selects DefaultWorkers for the run.
	Workers int
	// LogFetch and LogExtract enable the per-community log lines.
	LogFetch   bool
	LogExtract bool
}

// Summary reports what a compile run did.
type Summary struct {
	Communities   int
	Workers       int
	Rows          int
	CacheHits     int
	FetchFailures int
	Incomplete    int // rows with at least one N/A field
	WriteErrors   int
	Elapsed       time.Duration
}

// Compiler drives fetch and extract over a community list and writes one row
// per community. Rows reach the sink in completion order.
type Compiler struct {
	fetcher   Fetcher
	extractor Extractor
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
}

// New creates a Compiler with the given stages and observability.
func New(f Fetcher, e Extractor, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Compiler {
	return &Compiler{
		fetcher:   f,
		extractor: e,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
	}
}

// DefaultWorkers is min(cores/2, communities, 10), never below 1 when there is work.
func DefaultWorkers(cores, communities int) int {
	if communities <= 0 {
		return 0
	}
	return max(1, min(cores/2, communities, maxWorkers))
}

// tally accumulates per-job outcomes across workers.
type tally struct {
	rows, cacheHits, fetchFailures, incomplete, writeErrors atomic.Int64
}

// Compile runs one job per community on a bounded pool and waits for all of
// them. Individual fetch, extract, and write failures are logged and counted;
// the returned error is non-nil only when ctx ends the run early.
func (c *Compiler) Compile(ctx context.Context, communities []domain.Community, sink RowSink) (Summary, error) {
	start := domain.Now()
	workers := c.workers(len(communities))
	c.logger.Info("compile started", "communities", len(communities), "workers", workers)

	var t tally
	var err error
	if len(communities) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for _, community := range communities {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				c.metrics.WorkersActive.Inc()
				defer c.metrics.WorkersActive.Dec()
				c.runJob(gctx, community, sink, &t)
				return nil
			})
		}
		err = g.Wait()
	}

	summary := Summary{
		Communities:   len(communities),
		Workers:       workers,
		Rows:          int(t.rows.Load()),
		CacheHits:     int(t.cacheHits.Load()),
		FetchFailures: int(t.fetchFailures.Load()),
		Incomplete:    int(t.incomplete.Load()),
		WriteErrors:   int(t.writeErrors.Load()),
		Elapsed:       domain.Since(start),
	}
	c.metrics.CompileDuration.Observe(summary.Elapsed.Seconds())
	c.logger.Info(fmt.Sprintf("compilation completed in %.2f seconds", summary.Elapsed.Seconds()),
		"rows", summary.Rows,
		"cache_hits", summary.CacheHits,
		"fetch_failures", summary.FetchFailures,
		"incomplete", summary.Incomplete,
		"write_errors", summary.WriteErrors,
	)
	if err != nil {
		return summary, fmt.Errorf("compile interrupted: %w", err)
	}
	return summary, nil
}

func (c *Compiler) workers(communities int) int {
	if c.opts.Workers > 0 {
		return c.opts.Workers
	}
	return DefaultWorkers(runtime.NumCPU(), communities)
}

// runJob fetches, extracts and writes the row for a single community.
func (c *Compiler) runJob(ctx context.Context, community domain.Community, sink RowSink, t *tally) {
	log := c.logger.With("community", community.Label, "slug", community.Slug)
	c.metrics.CommunitiesProcessed.Inc()

	doc, err := c.fetcher.Fetch(ctx, community.Slug)
	switch {
	case err != nil:
		t.fetchFailures.Add(1)
		if c.opts.LogFetch {
			log.Warn("report fetch failed", "error", err)
		}
	case doc.CacheHit:
		t.cacheHits.Add(1)
		if c.opts.LogFetch {
			log.Debug("report cached")
		}
	default:
		if c.opts.LogFetch {
			log.Info("report fetched", "path", doc.Path)
		}
	}
	if doc.Slug == "" {
		doc.Slug = community.Slug
	}

	extraction := c.extractor.Extract(ctx, doc)
	c.metrics.Extractions.WithLabelValues(string(extraction.Status)).Inc()
	if !extraction.Complete() {
		t.incomplete.Add(1)
	}

	if err := sink.WriteRow(ctx, domain.NewRow(community, extraction.Fields)); err != nil {
		t.writeErrors.Add(1)
		c.metrics.RowWriteErrors.Inc()
		log.Error("row write failed", "error", err)
		return
	}
	t.rows.Add(1)
	c.metrics.RowsWritten.Inc()

	if c.opts.LogExtract {
		logExtraction(log, extraction)
	}
}

func logExtraction(log *slog.Logger, e domain.Extraction) {
	switch e.Status {
	case domain.StatusComplete:
		log.Info("row appended", "immigrants", e.Immigrants, "non_immigrants", e.NonImmigrants)
	case domain.StatusPartial:
		if e.Immigrants == domain.NotAvailable {
			log.Warn("no 'Immigrants' data found", "non_immigrants", e.NonImmigrants)
		} else {
			log.Warn("no 'Non-Immigrants' data found", "immigrants", e.Immigrants)
		}
	case domain.StatusEmpty:
		log.Warn("no 'Immigrants' or 'Non-Immigrants' data found")
	default:
		log.Warn("report unreadable, row written as N/A", "status", e.Status)
	}
}
