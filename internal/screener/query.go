// Package screener queries the TradingView market scanner and flattens its
// response into a table.
package screener

// Operation names understood by the scanner's filter language.
const (
	OpInRange   = "in_range"
	OpEqual     = "equal"
	OpHasNoneOf = "has_none_of"
)

// Filter is one predicate; all filters of a query must hold.
type Filter struct {
	Left      string `json:"left"`
	Operation string `json:"operation"`
	Right     any    `json:"right"`
}

// Sort orders the result set.
type Sort struct {
	SortBy     string `json:"sortBy"`
	SortOrder  string `json:"sortOrder"`
	NullsFirst bool   `json:"nullsFirst"`
}

// Options carries scanner request options.
type Options struct {
	Lang string `json:"lang"`
}

// Query is the declarative request body sent to the scanner.
type Query struct {
	Markets []string `json:"markets"`
	Options Options  `json:"options"`
	Columns []string `json:"columns"`
	Filter  []Filter `json:"filter"`
	Sort    Sort     `json:"sort"`
	Range   [2]int   `json:"range"`
}

// Limit returns the maximum number of rows requested.
func (q Query) Limit() int {
	return q.Range[1] - q.Range[0]
}

const (
	// IndexesColumn lists index memberships as nested records.
	IndexesColumn = "indexes"

	defaultMarket = "america"
	defaultLimit  = 10000
)

// TimestampColumns hold epoch seconds.
var TimestampColumns = []string{"earnings_release_date", "earnings_release_next_date"}

// DefaultQuery selects listed US common stocks sorted by name, nulls last.
func DefaultQuery() Query {
	return Query{
		Markets: []string{defaultMarket},
		Options: Options{Lang: "en"},
		Columns: []string{
			"exchange", "name", "description", "sector", "industry", IndexesColumn,
			"type", "market_cap_basic", "High.1M", "Low.1M",
			"price_52_week_high", "price_52_week_low", "relative_volume_10d_calc",
			"earnings_release_date", "earnings_release_next_date",
			"eps_surprise_fq", "revenue_surprise_percent_fq",
			"recommendation_total", "recommendation_buy",
			"recommendation_mark", "price_target_1y", "typespecs",
			"Perf.1M", "Perf.3M", "Perf.6M", "Perf.Y", "Perf.W",
		},
		Filter: []Filter{
			{Left: "exchange", Operation: OpInRange, Right: []string{"AMEX", "CBOE", "NASDAQ", "NYSE"}},
			{Left: "type", Operation: OpEqual, Right: "stock"},
			{Left: "typespecs", Operation: OpHasNoneOf, Right: "preferred"},
		},
		Sort: Sort{
			SortBy:     "name",
			SortOrder:  "asc",
			NullsFirst: false,
		},
		Range: [2]int{0, defaultLimit},
	}
}
