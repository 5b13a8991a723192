// Package table holds the flat, ordered tabular form shared by the screener,
// the enrichment pass and the exporters.
package table

import (
	"fmt"
	"slices"
)

// Table is an ordered sequence of rows sharing one column set.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// New creates an empty table with the given columns.
func New(columns ...string) Table {
	return Table{Columns: slices.Clone(columns)}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// HasColumn reports whether the named column exists.
func (t Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns a copy of the named column's cells.
func (t Table) Column(name string) ([]Cell, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}

	out := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Append adds a row. The row width must match the column count.
func (t *Table) Append(row []Cell) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Concat joins extra onto base column-wise. Both tables must have the same
// number of rows; row i of the result is row i of base followed by row i of
// extra.
func Concat(base, extra Table) (Table, error) {
	if base.Len() != extra.Len() {
		return Table{}, fmt.Errorf("cannot concat tables with %d and %d rows", base.Len(), extra.Len())
	}

	out := Table{
		Columns: append(slices.Clone(base.Columns), extra.Columns...),
		Rows:    make([][]Cell, base.Len()),
	}
	for i := range base.Rows {
		row := make([]Cell, 0, len(out.Columns))
		row = append(row, base.Rows[i]...)
		row = append(row, extra.Rows[i]...)
		out.Rows[i] = row
	}
	return out, nil
}

// Sanitize returns a copy of t with every NaN or infinite number replaced by
// the empty marker.
func Sanitize(t Table) Table {
	out := Table{
		Columns: slices.Clone(t.Columns),
		Rows:    make([][]Cell, len(t.Rows)),
	}
	for i, row := range t.Rows {
		clean := slices.Clone(row)
		for j, c := range clean {
			if !c.IsFinite() {
				clean[j] = Null()
			}
		}
		out.Rows[i] = clean
	}
	return out
}
