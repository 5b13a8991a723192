// Package runner executes one screener snapshot end to end: query, enrich,
// sanitize, export.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"marketsnapshot/internal/config"
	"marketsnapshot/internal/coordinator"
	"marketsnapshot/internal/export"
	"marketsnapshot/internal/fetcher"
	"marketsnapshot/internal/quickfs"
	"marketsnapshot/internal/screener"
	"marketsnapshot/internal/table"
)

// screenerTimeout bounds the single screener query, which returns up to ten
// thousand rows and is much slower than a metadata lookup.
const screenerTimeout = time.Minute

// Summary describes a completed run.
type Summary struct {
	RetrievedAt time.Time
	Rows        int
	Failed      int
	OutputPath  string
	Duration    time.Duration
}

// Runner holds everything a run needs. It is safe to call Run repeatedly but
// not concurrently.
type Runner struct {
	cfg      *config.Config
	loc      *time.Location
	query    screener.Query
	screener *screener.Client
	coord    *coordinator.Coordinator
	closers  []io.Closer

	now    func() time.Time
	out    io.Writer
	logger *slog.Logger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithClock replaces time.Now, used for the retrieval stamp and durations.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithQuery replaces screener.DefaultQuery.
func WithQuery(q screener.Query) Option {
	return func(r *Runner) { r.query = q }
}

// WithFetcher replaces the QuickFS metadata fetcher.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(r *Runner) { r.coord = coordinator.New(f, r.logger) }
}

// New wires the screener client and the enrichment coordinator from cfg.
// The preview is written to out.
func New(cfg *config.Config, out io.Writer, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	screenerHTTP := fetcher.NewHTTPClient(fetcher.ClientOptions{
		BaseURL:   cfg.ScreenerBaseURL,
		Timeout:   screenerTimeout,
		UserAgent: cfg.UserAgent,
	})
	quickfsHTTP := fetcher.NewHTTPClient(fetcher.ClientOptions{
		BaseURL:   cfg.QuickFSBaseURL,
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
		PoolSize:  cfg.MaxWorkers,
	})

	r := &Runner{
		cfg:      cfg,
		loc:      loc,
		query:    screener.DefaultQuery(),
		screener: screener.NewClient(screenerHTTP),
		closers:  []io.Closer{screenerHTTP, quickfsHTTP},
		now:      time.Now,
		out:      out,
		logger:   logger,
	}
	r.coord = coordinator.New(quickfs.NewMetadataFetcher(quickfsHTTP), logger)

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Close releases the HTTP clients.
func (r *Runner) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run executes one snapshot. A screener failure, a missing symbol column or
// an export failure aborts the run; failed metadata lookups only show up in
// Summary.Failed.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := r.now()
	retrievedAt := start.In(r.loc)

	r.logger.Info("running screener query",
		"market", r.query.Markets,
		"limit", r.query.Limit())

	tbl, err := r.screener.Table(ctx, r.query, retrievedAt)
	if err != nil {
		return Summary{}, fmt.Errorf("screener: %w", err)
	}
	r.logger.Info("screener returned rows", "rows", tbl.Len())

	enriched, stats, err := r.coord.Enrich(ctx, tbl, coordinator.Options{
		SymbolColumn:  r.cfg.SymbolColumn,
		CountryColumn: r.cfg.CountryColumn,
		MaxWorkers:    r.cfg.MaxWorkers,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("enrich: %w", err)
	}

	final := table.Sanitize(enriched)

	if err := r.export(ctx, final); err != nil {
		return Summary{}, err
	}

	summary := Summary{
		RetrievedAt: retrievedAt,
		Rows:        final.Len(),
		Failed:      stats.Failed,
		OutputPath:  r.cfg.OutputPath,
		Duration:    r.now().Sub(start),
	}

	r.logger.Info("snapshot written",
		"rows", summary.Rows,
		"failed", summary.Failed,
		"path", summary.OutputPath,
		"duration", summary.Duration)

	return summary, nil
}

func (r *Runner) export(ctx context.Context, tbl table.Table) error {
	if err := export.WriteCSV(r.cfg.OutputPath, tbl); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}

	if r.cfg.SQLitePath != "" {
		sink, err := export.OpenSQLite(ctx, r.cfg.SQLitePath, r.cfg.SQLiteTable)
		if err != nil {
			return fmt.Errorf("export sqlite: %w", err)
		}
		defer sink.Close()

		if err := sink.Replace(ctx, tbl); err != nil {
			return fmt.Errorf("export sqlite: %w", err)
		}
	}

	if r.cfg.PreviewRows > 0 && r.out != nil {
		if err := export.Preview(r.out, tbl, r.cfg.PreviewRows); err != nil {
			return fmt.Errorf("preview: %w", err)
		}
	}

	return nil
}

// ScheduleSpec returns the configured cron expression, which may be empty.
func (r *Runner) ScheduleSpec() string {
	return r.cfg.Schedule
}
