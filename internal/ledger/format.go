package ledger

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders a stat value for observations and milestone
// summaries: integers without decimals, everything else at two decimal
// places with trailing zeros trimmed. All user-facing numbers go through
// this one formatter so displayed values stay consistent.
func FormatNumber(value float64) string {
	rounded := math.Round(value)
	if math.Abs(value-rounded) < 1e-9 {
		// 'f' with -1 precision renders integer-valued floats without a
		// decimal point and stays exact beyond the int64 range.
		return strconv.FormatFloat(rounded, 'f', -1, 64)
	}
	s := strconv.FormatFloat(value, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// FormatLevel renders an optional level, "unknown" when absent.
func FormatLevel(level *int) string {
	if level == nil {
		return "unknown"
	}
	return strconv.Itoa(*level)
}

// FormatMaybe renders an optional numeric value, "unknown" when absent.
func FormatMaybe(value *float64) string {
	if value == nil {
		return "unknown"
	}
	return FormatNumber(*value)
}
