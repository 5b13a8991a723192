package quickfs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"resty.dev/v3"

	"marketsnapshot/internal/fetcher"
	"marketsnapshot/internal/table"
)

// DefaultBaseURL is the production endpoint for per-symbol overviews.
const DefaultBaseURL = "https://api.quickfs.net/stocks"

// Fields are the metadata keys extracted from every overview, in output order.
var Fields = []string{
	"qfs_symbol", "name", "symbol", "exchange", "country", "currency",
	"sector", "industry", "price", "mkt_cap", "pe", "pb", "ps",
	"ev_ebitda", "beta", "avg_vol_50d", "dividend_date",
	"ex_dividend_date", "description",
}

// dateFields arrive as compact YYYYMMDD values.
var dateFields = []string{"dividend_date", "ex_dividend_date"}

// OverviewResponse represents the QuickFS quarterly overview payload. Only
// the metadata section is read.
type OverviewResponse struct {
	Datasets *struct {
		Metadata map[string]any `json:"metadata"`
	} `json:"datasets"`
}

// MetadataFetcher fetches company metadata from QuickFS
type MetadataFetcher struct {
	client *resty.Client
}

// NewMetadataFetcher creates a fetcher on top of a shared client. The client
// carries the base URL, headers, timeout and connection pool.
func NewMetadataFetcher(client *resty.Client) *MetadataFetcher {
	return &MetadataFetcher{
		client: client,
	}
}

// Fields returns the record layout produced by Fetch.
func (f *MetadataFetcher) Fields() []string {
	return Fields
}

// Fetch retrieves the overview metadata for one ticker.
func (f *MetadataFetcher) Fetch(ctx context.Context, key fetcher.Key) (fetcher.Record, error) {
	var result OverviewResponse

	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("ticker", key.String()).
		SetExpectResponseContentType("application/json").
		SetResult(&result).
		Get("/{ticker}/ovr/Quarter/")

	if err != nil {
		if resp != nil && resp.IsSuccess() {
			return nil, fetcher.NewDecodeError(err)
		}
		return nil, fetcher.ClassifyTransportError(err)
	}

	if !resp.IsSuccess() {
		return nil, fetcher.NewStatusError(resp.StatusCode())
	}

	if result.Datasets == nil || result.Datasets.Metadata == nil {
		return nil, fetcher.NewValidationError(fmt.Sprintf("datasets.metadata not found in response for %s", key))
	}

	return extract(result.Datasets.Metadata), nil
}

// extract picks the known fields out of the metadata section. Missing keys
// and JSON nulls both become the missing-value sentinel.
func extract(meta map[string]any) fetcher.Record {
	rec := fetcher.MissingRecord(Fields)
	for _, name := range Fields {
		raw, ok := meta[name]
		if !ok {
			continue
		}
		rec[name] = toCell(name, raw)
	}

	for _, name := range dateFields {
		rec[name] = FormatCompactDate(rec[name])
	}
	return rec
}

func toCell(name string, raw any) table.Cell {
	if c, ok := table.FromAny(raw); ok {
		return c
	}

	// nested values are kept as their JSON text
	b, err := json.Marshal(raw)
	if err != nil {
		slog.Debug("dropping unencodable metadata value", "field", name, "error", err)
		return table.Null()
	}
	return table.String(string(b))
}
