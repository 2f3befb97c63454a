package firebase

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Firestore REST documents carry typed values, e.g. {"integerValue": "3"}.
// encode and decode translate between those and plain JSON values.

func encodeFields(m map[string]any) map[string]any {
	fields := make(map[string]any, len(m))
	for k, v := range m {
		fields[k] = encode(v)
	}
	return fields
}

func encode(v any) map[string]any {
	switch x := v.(type) {
	case nil:
		return map[string]any{"nullValue": nil}
	case bool:
		return map[string]any{"booleanValue": x}
	case string:
		return map[string]any{"stringValue": x}
	case int:
		return map[string]any{"integerValue": strconv.Itoa(x)}
	case int64:
		return map[string]any{"integerValue": strconv.FormatInt(x, 10)}
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return map[string]any{"integerValue": strconv.FormatInt(int64(x), 10)}
		}
		return map[string]any{"doubleValue": x}
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return map[string]any{"integerValue": strconv.FormatInt(i, 10)}
		}
		f, _ := x.Float64()
		return map[string]any{"doubleValue": f}
	case []any:
		values := make([]any, len(x))
		for i, item := range x {
			values[i] = encode(item)
		}
		return map[string]any{"arrayValue": map[string]any{"values": values}}
	case []string:
		values := make([]any, len(x))
		for i, item := range x {
			values[i] = encode(item)
		}
		return map[string]any{"arrayValue": map[string]any{"values": values}}
	case map[string]any:
		return map[string]any{"mapValue": map[string]any{"fields": encodeFields(x)}}
	default:
		return map[string]any{"stringValue": fmt.Sprint(x)}
	}
}

func decodeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if tv, ok := v.(map[string]any); ok {
			out[k] = decode(tv)
		}
	}
	return out
}

// decode unwraps one typed value. Timestamps and references decode to their
// string form.
func decode(v map[string]any) any {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw := v[k]
		switch k {
		case "nullValue":
			return nil
		case "booleanValue", "doubleValue", "stringValue", "bytesValue", "timestampValue", "referenceValue", "geoPointValue":
			return raw
		case "integerValue":
			switch n := raw.(type) {
			case string:
				if i, err := strconv.ParseInt(n, 10, 64); err == nil {
					return i
				}
				return n
			default:
				return n
			}
		case "arrayValue":
			arr, _ := raw.(map[string]any)
			items, _ := arr["values"].([]any)
			out := make([]any, 0, len(items))
			for _, item := range items {
				if tv, ok := item.(map[string]any); ok {
					out = append(out, decode(tv))
				}
			}
			return out
		case "mapValue":
			mv, _ := raw.(map[string]any)
			fields, _ := mv["fields"].(map[string]any)
			return decodeFields(fields)
		}
	}
	return nil
}
