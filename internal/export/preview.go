package export

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"marketsnapshot/internal/table"
)

// maxPreviewWidth caps a single preview column; descriptions run long.
const maxPreviewWidth = 28

// Preview prints the first n rows of tbl as aligned text. Column widths are
// measured in display cells so wide characters line up.
func Preview(w io.Writer, tbl table.Table, n int) error {
	if n > tbl.Len() {
		n = tbl.Len()
	}
	if n < 0 {
		n = 0
	}

	lines := make([][]string, 0, n+1)
	lines = append(lines, tbl.Columns)
	for _, row := range tbl.Rows[:n] {
		line := make([]string, len(row))
		for j, c := range row {
			line[j] = c.String()
		}
		lines = append(lines, line)
	}

	widths := make([]int, len(tbl.Columns))
	for _, line := range lines {
		for j, s := range line {
			width := runewidth.StringWidth(s)
			if width > maxPreviewWidth {
				width = maxPreviewWidth
			}
			if width > widths[j] {
				widths[j] = width
			}
		}
	}

	var sb strings.Builder
	for _, line := range lines {
		for j, s := range line {
			if j > 0 {
				sb.WriteString("  ")
			}
			s = runewidth.Truncate(s, widths[j], "…")
			if j == len(line)-1 {
				sb.WriteString(s)
				continue
			}
			sb.WriteString(runewidth.FillRight(s, widths[j]))
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
