package screener

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"marketsnapshot/internal/table"
)

const (
	// RetrievalTimeColumn is prepended to every normalized table
	RetrievalTimeColumn = "retrieval_time"
	// TickerColumn holds the exchange-qualified symbol, e.g. NASDAQ:AAPL
	TickerColumn = "ticker"

	// TimestampLayout is used for both the retrieval stamp and epoch columns
	TimestampLayout = "2006-01-02 15:04:05"
)

// variant is the shape of a raw scanner cell.
type variant int

const (
	scalarVariant variant = iota
	sequenceVariant
	recordVariant
)

func classify(v any) variant {
	switch v.(type) {
	case []any:
		return sequenceVariant
	case map[string]any:
		return recordVariant
	default:
		return scalarVariant
	}
}

// Normalize flattens a scanner response into a table with the columns
// retrieval_time, ticker, then columns in order. Row order is preserved.
func Normalize(resp *ScanResponse, columns []string, retrievedAt time.Time) (table.Table, error) {
	out := table.New(append([]string{RetrievalTimeColumn, TickerColumn}, columns...)...)
	if resp == nil {
		return out, nil
	}

	stamp := table.String(retrievedAt.Format(TimestampLayout))

	out.Rows = make([][]table.Cell, 0, len(resp.Data))
	for i, r := range resp.Data {
		if len(r.Values) != len(columns) {
			return table.Table{}, fmt.Errorf("row %d (%s) has %d values, query selected %d columns", i, r.Symbol, len(r.Values), len(columns))
		}

		row := make([]table.Cell, 0, len(out.Columns))
		row = append(row, stamp, table.String(r.Symbol))
		for j, col := range columns {
			row = append(row, NormalizeCell(col, r.Values[j]))
		}
		out.Rows = append(out.Rows, row)
	}

	return table.Sanitize(out), nil
}

// NormalizeCell converts one raw value of the named column into a scalar cell.
func NormalizeCell(column string, raw any) table.Cell {
	if column == IndexesColumn {
		return table.String(IndexNames(raw))
	}
	if slices.Contains(TimestampColumns, column) {
		return table.String(FormatEpoch(raw))
	}

	switch classify(raw) {
	case sequenceVariant, recordVariant:
		b, err := json.Marshal(raw)
		if err != nil {
			return table.Null()
		}
		return table.String(string(b))
	default:
		c, ok := table.FromAny(raw)
		if !ok {
			return table.String(fmt.Sprint(raw))
		}
		return c
	}
}

// IndexNames renders index memberships as a comma-joined list of names.
// It accepts a list of records, a single record, or either of those encoded
// as a JSON string. Anything else yields "".
func IndexNames(raw any) string {
	switch classify(raw) {
	case sequenceVariant:
		items := raw.([]any)
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, recordName(item))
		}
		return strings.Join(names, ", ")
	case recordVariant:
		return recordName(raw)
	}

	s, ok := raw.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") && !strings.HasPrefix(s, "{") {
		return ""
	}

	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return ""
	}
	if classify(parsed) == scalarVariant {
		return ""
	}
	return IndexNames(parsed)
}

func recordName(v any) string {
	rec, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	name, ok := rec["name"]
	if !ok || name == nil {
		return ""
	}
	if s, ok := name.(string); ok {
		return s
	}
	return fmt.Sprint(name)
}

// FormatEpoch converts epoch seconds to TimestampLayout in UTC. A value that
// is already in TimestampLayout is returned unchanged; anything unparseable
// yields "".
func FormatEpoch(raw any) string {
	var secs float64
	switch x := raw.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(x)
		if t, err := time.Parse(TimestampLayout, s); err == nil {
			return t.Format(TimestampLayout)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return ""
		}
		secs = f
	default:
		c, ok := table.FromAny(raw)
		if !ok {
			return ""
		}
		f, isNum := c.Float()
		if !isNum {
			return ""
		}
		secs = f
	}

	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return ""
	}
	whole, frac := math.Modf(secs)
	if whole > math.MaxInt64/1e9 || whole < math.MinInt64/1e9 {
		return ""
	}
	return time.Unix(int64(whole), int64(frac*1e9)).UTC().Format(TimestampLayout)
}
