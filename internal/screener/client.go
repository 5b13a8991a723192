package screener

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"marketsnapshot/internal/table"
)

// DefaultBaseURL is the production scanner host.
const DefaultBaseURL = "https://scanner.tradingview.com"

// ScanRow is one result row: the exchange-qualified symbol and the values of
// the selected columns, in column order.
type ScanRow struct {
	Symbol string `json:"s"`
	Values []any  `json:"d"`
}

// ScanResponse represents the scanner API response
type ScanResponse struct {
	TotalCount int       `json:"totalCount"`
	Data       []ScanRow `json:"data"`
}

// Client runs queries against the scanner
type Client struct {
	client *resty.Client
}

// NewClient creates a scanner client on top of a configured resty client
func NewClient(client *resty.Client) *Client {
	return &Client{
		client: client,
	}
}

// Scan issues the query once. Any failure is returned to the caller; there is
// no recovery for the upstream query.
func (c *Client) Scan(ctx context.Context, q Query) (*ScanResponse, error) {
	if len(q.Markets) == 0 {
		return nil, fmt.Errorf("query has no market")
	}

	var result ScanResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("market", q.Markets[0]).
		SetBody(q).
		SetResult(&result).
		Post("/{market}/scan")

	if err != nil {
		return nil, fmt.Errorf("failed to run screener query: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("screener API returned status %d", resp.StatusCode())
	}

	if result.Data == nil && result.TotalCount > 0 {
		return nil, fmt.Errorf("screener response reported %d rows but carried no data", result.TotalCount)
	}

	return &result, nil
}

// Table runs the query and normalizes the response. retrievedAt is stamped on
// every row in its own location.
func (c *Client) Table(ctx context.Context, q Query, retrievedAt time.Time) (table.Table, error) {
	resp, err := c.Scan(ctx, q)
	if err != nil {
		return table.Table{}, err
	}
	return Normalize(resp, q.Columns, retrievedAt)
}
