package utils

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ParseDuration safely parses duration string like "30s", falling back to def
func ParseDuration(d string, def time.Duration) time.Duration {
	if d == "" {
		return def
	}
	duration, err := time.ParseDuration(d)
	if err != nil {
		return def
	}
	return duration
}

// CleanCell trims whitespace and stray quotes from a CSV cell or header
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `"`, "")
	return strings.TrimPrefix(s, "\ufeff")
}

// ParseNumber parses a decimal number written either as "1234.5", "1,234.5" or the
// Spanish "1.234,5". A lone separator is always decimal: "1,234" and "1.234" both read
// as 1.234. ok is false for empty or non-numeric input.
func ParseNumber(s string) (float64, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, finite(f)
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma > lastDot:
		// comma is the decimal separator, dots group thousands
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot > lastComma:
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, finite(f)
}

// ParseInt parses an integer cell, accepting "2019" and "2019.0".
func ParseInt(s string) (int, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || !finite(f) {
		return 0, false
	}
	return int(f), true
}

// Numeric converts supported types to float64; ok is false for nil, NaN, infinities and
// anything that is not a number or a numeric string.
func Numeric(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, finite(val)
	case float32:
		return float64(val), finite(float64(val))
	case string:
		return ParseNumber(val)
	case *float64:
		if val == nil {
			return 0, false
		}
		return *val, finite(*val)
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Float64 {
			f := rv.Convert(reflect.TypeOf(float64(0))).Float()
			return f, finite(f)
		}
		return 0, false
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
