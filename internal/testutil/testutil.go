package testutil

import (
	"context"

	"marketsnapshot/internal/fetcher"
	"marketsnapshot/internal/table"
)

// MockFetcher is a mock implementation of the Fetcher interface for testing
type MockFetcher struct {
	FetchFunc  func(ctx context.Context, key fetcher.Key) (fetcher.Record, error)
	FieldsList []string
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context, key fetcher.Key) (fetcher.Record, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, key)
	}
	return fetcher.MissingRecord(m.Fields()), nil
}

// Fields implements the Fetcher interface
func (m *MockFetcher) Fields() []string {
	if m.FieldsList != nil {
		return m.FieldsList
	}
	return []string{"price"}
}

// NewMockFetcher creates a fetcher that returns price for every symbol
// except those listed in failures, which return the mapped error.
func NewMockFetcher(price float64, failures map[string]error) *MockFetcher {
	return &MockFetcher{
		FetchFunc: func(ctx context.Context, key fetcher.Key) (fetcher.Record, error) {
			if err, ok := failures[key.Symbol]; ok {
				return nil, err
			}
			return fetcher.Record{"price": table.Number(price)}, nil
		},
		FieldsList: []string{"price"},
	}
}

// SymbolTable builds a single-column table named column holding symbols.
func SymbolTable(column string, symbols ...string) table.Table {
	tbl := table.New(column)
	for _, s := range symbols {
		tbl.Rows = append(tbl.Rows, []table.Cell{table.String(s)})
	}
	return tbl
}
