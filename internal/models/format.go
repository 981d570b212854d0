package models

import (
	"strconv"
	"strings"
)

// FormatCount abbreviates a count for display: 999, 1K, 1.2K, 3M, 4.5M
func FormatCount(n int64) string {
	switch {
	case n < 1000:
		return strconv.FormatInt(n, 10)
	case n < 1000000:
		return abbreviate(n, 1000, "K")
	default:
		return abbreviate(n, 1000000, "M")
	}
}

func abbreviate(n, unit int64, suffix string) string {
	if n%unit == 0 {
		return strconv.FormatInt(n/unit, 10) + suffix
	}
	s := strconv.FormatFloat(float64(n)/float64(unit), 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + suffix
}
