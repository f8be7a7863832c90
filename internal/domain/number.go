package domain

import (
	"strconv"
	"strings"
)

// ParseNumber parses a normalized numeric feature value, returning 0 when
// the value is not numeric
func ParseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// IsNumber reports whether a normalized value parses as a number
func IsNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
