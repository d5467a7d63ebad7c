// Package fields probes loosely-typed JSON objects for a logical field that may be
// spelled several ways. Each lookup takes an ordered list of candidate keys and uses
// the first one that is present with a non-null value.
package fields

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Lookup returns the value of the first present, non-null key
func Lookup(m map[string]interface{}, keys ...string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Int returns the first present key as an int, or 0
func Int(m map[string]interface{}, keys ...string) int {
	i, _ := IntOK(m, keys...)
	return i
}

// IntOK is Int that also reports whether a usable value was found
func IntOK(m map[string]interface{}, keys ...string) (int, bool) {
	v, ok := Lookup(m, keys...)
	if !ok {
		return 0, false
	}
	return parseInt(v)
}

// Float returns the first present key as a float64, or 0
func Float(m map[string]interface{}, keys ...string) float64 {
	f, _ := FloatOK(m, keys...)
	return f
}

// FloatOK is Float that also reports whether a usable value was found
func FloatOK(m map[string]interface{}, keys ...string) (float64, bool) {
	v, ok := Lookup(m, keys...)
	if !ok {
		return 0, false
	}
	return parseFloat(v)
}

// String returns the first present key as a string, or "".
// Numbers are formatted without a trailing ".0" so a numeric round 7 reads "7".
func String(m map[string]interface{}, keys ...string) string {
	v, ok := Lookup(m, keys...)
	if !ok {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// Map returns the first present key holding an object, or nil
func Map(m map[string]interface{}, keys ...string) map[string]interface{} {
	for _, key := range keys {
		if v, ok := Lookup(m, key); ok {
			if mapVal, ok := v.(map[string]interface{}); ok {
				return mapVal
			}
		}
	}
	return nil
}

// Array returns the first present key holding an array, or nil
func Array(m map[string]interface{}, keys ...string) []interface{} {
	for _, key := range keys {
		if v, ok := Lookup(m, key); ok {
			if arrVal, ok := v.([]interface{}); ok {
				return arrVal
			}
		}
	}
	return nil
}

// parseFloat parses a finite float from interface{}. NaN and ±Inf are rejected
// whether they arrive as numbers or as strings such as "NaN" or "infinity".
func parseFloat(v interface{}) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseInt parses an int from interface{}, truncating fractional values
func parseInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i, true
		}
	}

	f, ok := parseFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}
