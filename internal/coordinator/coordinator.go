package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/sourcegraph/conc/pool"

	"marketsnapshot/internal/fetcher"
	"marketsnapshot/internal/table"
)

const (
	// DefaultMaxWorkers bounds concurrent in-flight lookups
	DefaultMaxWorkers = 30

	// DefaultPrefix is prepended to every enrichment column
	DefaultPrefix = "qfs_"

	// tickerField tags each record with the key it was fetched for
	tickerField = "ticker"
)

// Options controls one enrichment pass.
type Options struct {
	// SymbolColumn holds the lookup symbol. Required.
	SymbolColumn string
	// CountryColumn optionally holds a per-row country code. When empty or
	// absent from the table every row uses fetcher.DefaultCountry.
	CountryColumn string
	// MaxWorkers caps concurrent lookups; values < 1 use DefaultMaxWorkers.
	MaxWorkers int
	// Prefix for enrichment columns; empty uses DefaultPrefix.
	Prefix string
}

func (o Options) withDefaults() Options {
	if o.MaxWorkers < 1 {
		o.MaxWorkers = DefaultMaxWorkers
	}
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	return o
}

// Stats summarizes one enrichment pass.
type Stats struct {
	Rows   int
	Failed int
}

// Coordinator fans lookups out to a fetcher and joins the results back onto
// the source table.
type Coordinator struct {
	fetcher fetcher.Fetcher
	logger  *slog.Logger
}

// New creates a new Coordinator around the given fetcher
func New(f fetcher.Fetcher, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		fetcher: f,
		logger:  logger,
	}
}

// Enrich resolves one record per row of tbl and returns tbl with the
// enrichment columns appended. The output always has tbl.Len() rows in the
// input order; a failed lookup yields a row of missing values and a warning,
// never an error.
func (c *Coordinator) Enrich(ctx context.Context, tbl table.Table, opts Options) (table.Table, Stats, error) {
	opts = opts.withDefaults()

	keys, err := Keys(tbl, opts.SymbolColumn, opts.CountryColumn)
	if err != nil {
		return table.Table{}, Stats{}, err
	}

	results := c.fetchAll(ctx, keys, opts.MaxWorkers)

	extra := table.New(c.columns(opts.Prefix)...)
	fields := append(slices.Clone(c.fetcher.Fields()), tickerField)
	stats := Stats{Rows: len(results)}
	for _, res := range results {
		if res.Error != nil {
			stats.Failed++
		}
		if err := extra.Append(res.Record.Row(fields)); err != nil {
			return table.Table{}, stats, fmt.Errorf("build enrichment row %d: %w", res.Index, err)
		}
	}

	c.logger.Info("enrichment complete",
		"rows", stats.Rows,
		"failed", stats.Failed,
		"workers", opts.MaxWorkers)

	out, err := table.Concat(tbl, extra)
	if err != nil {
		return table.Table{}, stats, err
	}
	return out, stats, nil
}

// columns returns the enrichment column names produced for a prefix.
func (c *Coordinator) columns(prefix string) []string {
	fields := c.fetcher.Fields()
	cols := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		cols = append(cols, prefix+f)
	}
	return append(cols, prefix+tickerField)
}

// fetchAll runs one lookup per key on a bounded pool. Each worker writes only
// its own slot, so no further synchronization is needed.
func (c *Coordinator) fetchAll(ctx context.Context, keys []fetcher.Key, maxWorkers int) []fetcher.Result {
	results := make([]fetcher.Result, len(keys))
	if len(keys) == 0 {
		return results
	}

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, key := range keys {
		i, key := i, key
		p.Go(func() {
			results[i] = c.fetchOne(ctx, i, key)
		})
	}
	p.Wait()

	return results
}

// fetchOne is the failure boundary for a single lookup: errors and panics
// turn into an all-missing record tagged with the key.
func (c *Coordinator) fetchOne(ctx context.Context, index int, key fetcher.Key) (res fetcher.Result) {
	fields := c.fetcher.Fields()
	res = fetcher.Result{Index: index, Key: key}

	defer func() {
		if r := recover(); r != nil {
			res.Error = fmt.Errorf("lookup panicked: %v", r)
			res.Record = fetcher.MissingRecord(fields)
		}
		if res.Error != nil {
			c.logger.Warn("enrichment lookup failed",
				"ticker", key.String(),
				"kind", fetcher.TypeOf(res.Error),
				"error", res.Error)
		}
		res.Record[tickerField] = table.String(key.String())
	}()

	rec, err := c.fetcher.Fetch(ctx, key)
	if err != nil {
		res.Error = err
		res.Record = fetcher.MissingRecord(fields)
		return res
	}
	if rec == nil {
		rec = fetcher.MissingRecord(fields)
	}
	res.Record = rec
	return res
}

// Keys derives one lookup key per row. The symbol column must exist; the
// country column is used only when named and present.
func Keys(tbl table.Table, symbolColumn, countryColumn string) ([]fetcher.Key, error) {
	symbols, err := tbl.Column(symbolColumn)
	if err != nil {
		return nil, fmt.Errorf("symbol column: %w", err)
	}

	var countries []table.Cell
	if countryColumn != "" && tbl.HasColumn(countryColumn) {
		countries, err = tbl.Column(countryColumn)
		if err != nil {
			return nil, fmt.Errorf("country column: %w", err)
		}
	}

	keys := make([]fetcher.Key, len(symbols))
	for i, sym := range symbols {
		country := ""
		if countries != nil {
			country = countries[i].String()
		}
		keys[i] = fetcher.NewKey(sym.String(), country)
	}
	return keys, nil
}
