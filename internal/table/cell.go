package table

import (
	"math"
	"strconv"
)

// Kind identifies which variant a Cell holds.
type Kind uint8

const (
	// KindNull marks a missing or invalid value. It renders as "".
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

// Cell is a single scalar value in a Table. The zero value is Null.
type Cell struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Null returns the missing-value sentinel.
func Null() Cell { return Cell{} }

// String returns a string cell.
func String(s string) Cell { return Cell{kind: KindString, str: s} }

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{kind: KindNumber, num: f} }

// Bool returns a boolean cell.
func Bool(b bool) Cell { return Cell{kind: KindBool, b: b} }

// Kind reports the variant of the cell.
func (c Cell) Kind() Kind { return c.kind }

// IsNull reports whether the cell is the missing-value sentinel.
func (c Cell) IsNull() bool { return c.kind == KindNull }

// Float returns the numeric value and whether the cell is a number.
func (c Cell) Float() (float64, bool) {
	if c.kind != KindNumber {
		return 0, false
	}
	return c.num, true
}

// IsFinite reports false only for NaN and infinite numbers.
func (c Cell) IsFinite() bool {
	if c.kind != KindNumber {
		return true
	}
	return !math.IsNaN(c.num) && !math.IsInf(c.num, 0)
}

// String renders the cell the way it is written to the output artifact.
func (c Cell) String() string {
	switch c.kind {
	case KindString:
		return c.str
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.b)
	default:
		return ""
	}
}

// FromAny converts a decoded JSON scalar into a Cell. Values that are not
// scalars (slices, maps) yield Null and false; callers normalize those first.
func FromAny(v any) (Cell, bool) {
	switch x := v.(type) {
	case nil:
		return Null(), true
	case string:
		return String(x), true
	case bool:
		return Bool(x), true
	case float64:
		return Number(x), true
	case float32:
		return Number(float64(x)), true
	case int:
		return Number(float64(x)), true
	case int64:
		return Number(float64(x)), true
	case interface{ Float64() (float64, error) }:
		f, err := x.Float64()
		if err != nil {
			return Null(), false
		}
		return Number(f), true
	default:
		return Null(), false
	}
}
