// Package coerce converts loosely typed values, as produced by decoding JSON
// or scanning database rows, into the types the reports work with. None of
// the conversions fail: unusable input yields the zero value.
package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// String returns v as a string. ok is false for nil.
func String(v any) (s string, ok bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case []byte:
		return string(t), true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case fmt.Stringer:
		return t.String(), true
	}
	return fmt.Sprintf("%v", v), true
}

// Decimal parses v leniently. Strings are trimmed before parsing; NaN and
// infinities become zero.
func Decimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case decimal.Decimal:
		return t
	case *decimal.Decimal:
		if t != nil {
			return *t
		}
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(t)); err == nil {
			return d
		}
	case float64:
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			return decimal.NewFromFloat(t)
		}
	case float32:
		f := float64(t)
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			return decimal.NewFromFloat32(t)
		}
	case int:
		return decimal.NewFromInt(int64(t))
	case int32:
		return decimal.NewFromInt32(t)
	case int64:
		return decimal.NewFromInt(t)
	}
	return decimal.Zero
}

var timeFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Time parses v as a timestamp. Values without an offset are taken as UTC.
func Time(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t != nil {
			return *t, !t.IsZero()
		}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, format := range timeFormats {
			if ts, err := time.Parse(format, s); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}
