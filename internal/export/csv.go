// Package export writes the final table to its destinations.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"marketsnapshot/internal/table"
)

// DefaultCSVPath is the artifact written once per run.
const DefaultCSVPath = "screener_results.csv"

// WriteCSV writes tbl to path, replacing any existing file. Null cells are
// written as empty fields.
func WriteCSV(path string, tbl table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := EncodeCSV(f, tbl); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// EncodeCSV writes the header row followed by one record per table row.
func EncodeCSV(w io.Writer, tbl table.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(tbl.Columns); err != nil {
		return err
	}

	record := make([]string, len(tbl.Columns))
	for i, row := range tbl.Rows {
		if len(row) != len(tbl.Columns) {
			return fmt.Errorf("row %d has %d cells, header has %d", i, len(row), len(tbl.Columns))
		}
		for j, c := range row {
			record[j] = c.String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
