package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Args is a validated argument bag. Getters return the zero value when a key
// is absent or of another kind; the validator has already enforced declared
// kinds, so handlers only need the zero-value check for optional fields.
type Args map[string]any

func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

func (a Args) Float(key string) float64 {
	f, _ := toFloat(a[key])
	return f
}

// Int truncates a number argument toward zero, saturating at the int range.
func (a Args) Int(key string) int {
	f := a.Float(key)
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Strings returns a string array argument. Non-string elements are formatted.
func (a Args) Strings(key string) []string {
	switch v := a[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case nil:
			default:
				out = append(out, fmt.Sprint(s))
			}
		}
		return out
	}
	return nil
}

func (a Args) Object(key string) map[string]any {
	m, _ := a[key].(map[string]any)
	return m
}

// Objects returns an array-of-object argument, skipping non-object elements.
func (a Args) Objects(key string) []map[string]any {
	switch v := a[key].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// Text formats a scalar argument for use in a query string or a message.
func (a Args) Text(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}
