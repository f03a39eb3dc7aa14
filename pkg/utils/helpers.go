package utils

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration safely parses duration string like "5m", falling back on error
func ParseDuration(d string, fallback time.Duration) time.Duration {
	if d == "" {
		return fallback
	}
	duration, err := time.ParseDuration(d)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

// ParseIntInRange parses s as a base-10 integer within [min, max].
func ParseIntInRange(s string, min, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < min || n > max {
		return 0, false
	}
	return n, true
}

// SplitList splits a comma separated list, trimming blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 { return &v }

// Int32Ptr returns a pointer to v
func Int32Ptr(v int32) *int32 { return &v }

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 { return &v }

// StringPtr returns a pointer to v
func StringPtr(v string) *string { return &v }
