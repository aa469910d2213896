package scale

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/stackplot/pkg/errors"
)

// ToFloat converts a numeric value to float64. nil and empty strings are
// missing data and convert to NaN; non-numeric values are an error.
func ToFloat(v any) (float64, error) { return toFloat(v) }

// toFloat converts numeric domain values. nil and empty strings are
// missing data and convert to NaN.
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeUnsupportedValue, err, "not a number: %q", x)
		}
		return f, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return math.NaN(), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errors.New(errors.ErrCodeUnsupportedValue, "not a number: %q", x)
		}
		return f, nil
	}
	return 0, errors.New(errors.ErrCodeUnsupportedValue, "cannot scale value of type %T", v)
}

// timeLayouts are tried in order when a time scale receives a string.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
}

// toMillis converts a time domain value to Unix milliseconds. Plain
// numbers are taken as milliseconds already.
func toMillis(v any) (float64, error) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return math.NaN(), nil
		}
		return float64(x.UnixNano()) / float64(time.Millisecond), nil
	case *time.Time:
		if x == nil {
			return math.NaN(), nil
		}
		return toMillis(*x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return math.NaN(), nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return toMillis(t)
			}
		}
		return 0, errors.New(errors.ErrCodeUnsupportedValue, "not a time: %q", x)
	}
	return toFloat(v)
}

// fromMillis converts Unix milliseconds back to a UTC time.
func fromMillis(ms float64) time.Time {
	return time.UnixMilli(int64(math.Round(ms))).UTC()
}

// finite reports whether x is neither NaN nor infinite.
func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
