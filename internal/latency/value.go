package latency

import (
	"math"
	"strconv"
)

// Sentinel cells used throughout the history table and both export artifacts.
const (
	// Unreachable marks a probe whose echo requests all went unanswered,
	// and doubles as the degraded value for a host whose transport failed.
	Unreachable Value = "x"

	// NoData marks a probe whose transcript could not be parsed into a
	// round-trip time. It is also the zero-ish placeholder for a slot that
	// never received a reading.
	NoData Value = "N/A"
)

// Value is one latency cell: either a millisecond reading carried verbatim
// as its decimal text, or one of the two sentinels above. Cells travel
// through CSV files unchanged, so the numeric form is never re-rendered.
type Value string

// Numeric reports the cell's millisecond reading. A cell is numeric only if
// it is a plain non-negative decimal: ASCII digits with at most one dot.
// Signs, exponents, hex and empty cells are all non-numeric, as are the
// sentinels.
func (v Value) Numeric() (float64, bool) {
	return Numeric(string(v))
}

// IsSentinel reports whether the cell is one of the two failure markers.
func (v Value) IsSentinel() bool {
	return v == Unreachable || v == NoData
}

// Numeric is the cell-level parse rule shared by averaging and windowing.
// See Value.Numeric for the accepted grammar.
func Numeric(cell string) (float64, bool) {
	if cell == "" {
		return 0, false
	}
	dots := 0
	digits := 0
	for i := 0; i < len(cell); i++ {
		switch c := cell[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
			if dots > 1 {
				return 0, false
			}
		default:
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Average computes the arithmetic mean of the numeric cells and renders it
// as an integer using round-half-to-even, the rounding the accumulated
// history was built with. Non-numeric cells are skipped. ok is false when
// no cell is numeric, in which case avg is empty and the caller decides
// between writing Unreachable and keeping the previous cell.
func Average(cells []string) (avg string, ok bool) {
	var sum float64
	var n int
	for _, c := range cells {
		if f, numeric := Numeric(c); numeric {
			sum += f
			n++
		}
	}
	if n == 0 {
		return "", false
	}
	return strconv.Itoa(int(math.RoundToEven(sum / float64(n)))), true
}
