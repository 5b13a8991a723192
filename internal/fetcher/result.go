package fetcher

import "marketsnapshot/internal/table"

// Record maps field names to values for one key.
type Record map[string]table.Cell

// MissingRecord returns a record where every field is the missing-value sentinel.
func MissingRecord(fields []string) Record {
	rec := make(Record, len(fields))
	for _, f := range fields {
		rec[f] = table.Null()
	}
	return rec
}

// Row lays the record out in the given field order. Fields the record does
// not carry come out as Null.
func (r Record) Row(fields []string) []table.Cell {
	row := make([]table.Cell, len(fields))
	for i, f := range fields {
		row[i] = r[f]
	}
	return row
}

// Result represents the outcome of one lookup.
// It's written by a worker into the slot given by Index so the coordinator
// can join results back in input order.
type Result struct {
	// Index is the position of the source row in the input table
	Index int

	// Key is the lookup key derived from that row
	Key Key

	// Record holds the fetched fields. On failure every field is Null.
	Record Record

	// Error contains any error that occurred during the fetch operation.
	// It is reported, never propagated.
	Error error
}
