package kpi

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is the result of coercing a raw field value. Valid is false when the
// value was missing or could not be read as a finite number, so a legitimate
// zero can be told apart from a failed parse.
type Number struct {
	Value float64
	Valid bool
}

// OrZero returns the value, or 0 when the coercion failed.
func (n Number) OrZero() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// Count returns the value as a non-negative whole number. Invalid and negative
// values count as 0.
func (n Number) Count() int64 {
	v := n.OrZero()
	if v <= 0 {
		return 0
	}
	return int64(math.Round(v))
}

// ToNumber coerces a decoded JSON value (or a value read from a columnar file)
// to a Number. Numeric strings are accepted; booleans, objects, NaN and
// infinities are not.
func ToNumber(v any) Number {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return Number{}
		}
		f = parsed
	case string:
		parsed, ok := parseNumber(x)
		if !ok {
			return Number{}
		}
		f = parsed
	default:
		return Number{}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}
	}
	return Number{Value: f, Valid: true}
}

// Field coerces row[key]. A missing key yields an invalid Number.
func (r Row) Field(key string) Number {
	v, ok := r[key]
	if !ok {
		return Number{}
	}
	return ToNumber(v)
}

// Str returns row[key] when it is a string.
func (r Row) Str(key string) (string, bool) {
	s, ok := r[key].(string)
	return s, ok
}

// Text returns row[key] formatted as a string, or "" when the key is missing.
func (r Row) Text(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; keep them out of exponent form.
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
