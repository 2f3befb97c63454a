package tools

import (
	"encoding/json"
	"math"
	"testing"
)

func TestArgsInt(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want int
	}{
		{"absent", nil, 0},
		{"whole", 20.0, 20},
		{"fraction truncates", 7.9, 7},
		{"negative", -3.5, -3},
		{"json number", json.Number("12"), 12},
		{"too large", 1e20, math.MaxInt},
		{"too small", -1e20, math.MinInt},
		{"infinity", math.Inf(1), math.MaxInt},
		{"nan", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Args{}
			if tt.v != nil {
				a["n"] = tt.v
			}
			if got := a.Int("n"); got != tt.want {
				t.Errorf("Int = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArgsText(t *testing.T) {
	a := Args{"s": "x", "n": 10.0, "b": true, "o": map[string]any{"k": 1}}
	for key, want := range map[string]string{"s": "x", "n": "10", "b": "true", "o": `{"k":1}`, "missing": ""} {
		if got := a.Text(key); got != want {
			t.Errorf("Text(%q) = %q, want %q", key, got, want)
		}
	}
}
