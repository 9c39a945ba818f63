package analysis

import (
	"fmt"
	"math"
	"strings"
)

// FormatAmount renders a currency figure as a grouped integer, e.g. 3,500,000.
func FormatAmount(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}
	n := int64(math.Round(v))
	s := fmt.Sprintf("%d", n)
	if len(s) > 3 {
		var parts []string
		for len(s) > 3 {
			parts = append([]string{s[len(s)-3:]}, parts...)
			s = s[:len(s)-3]
		}
		parts = append([]string{s}, parts...)
		s = strings.Join(parts, ",")
	}
	if negative {
		return "-" + s
	}
	return s
}

// FormatUnits renders a unit count rounded up to a whole unit, grouped.
func FormatUnits(v float64) string {
	return FormatAmount(math.Ceil(v))
}

// FormatPercent renders a percentage to one decimal, without the sign.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// FormatRatio renders a ratio such as a payback period to one decimal.
func FormatRatio(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// FormatValue renders a resolved quantity to two decimals, trimming a
// trailing ".00" so whole numbers read as integers.
func FormatValue(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimSuffix(s, ".00")
	return s
}

// RoundTo rounds v to n decimal places.
func RoundTo(v float64, n int) float64 {
	p := math.Pow10(n)
	return math.Round(v*p) / p
}
