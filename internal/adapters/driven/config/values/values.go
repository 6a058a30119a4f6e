// Package values converts loosely typed configuration values.
//
// TOML decodes integers as int64, arrays as []any and bare dates as
// toml.LocalDate; values set from the command line arrive as int64, float64,
// bool or string. Every conversion reports whether the value had an
// acceptable type, so callers can tell "missing" from "wrong type".
package values

import (
	"math"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// String accepts only strings.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Int64 accepts integers, and floats without a fractional part.
func Int64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// Int is Int64 narrowed to int.
func Int(v any) (int, bool) {
	n, ok := Int64(v)
	return int(n), ok
}

// Float accepts floats and widens integers, so "epsilon = 1" reads as 1.0.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Bool accepts only booleans.
func Bool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// Strings accepts a []string, or a []any holding only strings.
func Strings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Date accepts a TOML local date or datetime, a time.Time or a YYYY-MM-DD
// string. The time of day is dropped: the result is the calendar date, in
// the value's own zone, at midnight UTC.
func Date(v any) (time.Time, bool) {
	switch d := v.(type) {
	case toml.LocalDate:
		return d.AsTime(time.UTC), true
	case toml.LocalDateTime:
		return d.LocalDate.AsTime(time.UTC), true
	case time.Time:
		y, m, day := d.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), true
	case string:
		t, err := time.Parse(time.DateOnly, strings.TrimSpace(d))
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

// LocalDate converts t to the TOML date written for date-only settings.
func LocalDate(t time.Time) toml.LocalDate {
	return toml.LocalDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}
