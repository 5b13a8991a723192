package fetcher

import "context"

// Fetcher is the interface every per-symbol metadata source implements.
// The coordinator calls Fetch once per table row and never retries.
type Fetcher interface {
	// Fetch resolves the metadata record for one key. A non-nil error means
	// the whole record is unusable; fields that are merely absent from an
	// otherwise valid response are returned as Null cells instead.
	Fetch(ctx context.Context, key Key) (Record, error)

	// Fields returns the fixed, ordered list of field names a record carries.
	// Examples:
	//   - qfs_symbol
	//   - price
	//   - dividend_date
	Fields() []string
}
