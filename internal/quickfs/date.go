package quickfs

import (
	"math"
	"strconv"
	"strings"
	"time"

	"marketsnapshot/internal/table"
)

const (
	compactDateLayout = "20060102"
	dateLayout        = "2006-01-02"
)

// FormatCompactDate turns a YYYYMMDD value (number or string) into
// YYYY-MM-DD. A value already in YYYY-MM-DD form is returned unchanged.
// Anything else becomes Null.
func FormatCompactDate(c table.Cell) table.Cell {
	var s string
	switch c.Kind() {
	case table.KindNumber:
		f, _ := c.Float()
		if f != math.Trunc(f) || f < 0 || math.IsInf(f, 0) {
			return table.Null()
		}
		s = strconv.FormatFloat(f, 'f', 0, 64)
	case table.KindString:
		s = strings.TrimSpace(c.String())
	default:
		return table.Null()
	}

	if t, err := time.Parse(compactDateLayout, s); err == nil {
		return table.String(t.Format(dateLayout))
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return table.String(t.Format(dateLayout))
	}
	return table.Null()
}
