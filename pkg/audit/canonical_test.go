package audit

import (
	"testing"
)

func TestCanonicalJSON_StableKeyOrder(t *testing.T) {
	a := map[string]any{"z": 1, "a": 2, "m": 3}
	b := map[string]any{"a": 2, "m": 3, "z": 1}

	ca, err := CanonicalJSON(a)
	if err != nil {
		t.Fatalf("canonical a: %v", err)
	}
	cb, err := CanonicalJSON(b)
	if err != nil {
		t.Fatalf("canonical b: %v", err)
	}
	if string(ca) != string(cb) {
		t.Errorf("canonical mismatch:\n  a=%s\n  b=%s", ca, cb)
	}
	if expected := `{"a":2,"m":3,"z":1}`; string(ca) != expected {
		t.Errorf("expected %s, got %s", expected, ca)
	}
}

func TestCanonicalJSON_NestedAndArrays(t *testing.T) {
	obj := map[string]any{
		"lineItems": []any{
			map[string]any{"quantity": 2, "itemId": "7"},
		},
		"customerId": "42",
		"amount":     1234.5,
	}
	canon, err := CanonicalJSON(obj)
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	expected := `{"amount":1234.5,"customerId":"42","lineItems":[{"itemId":"7","quantity":2}]}`
	if string(canon) != expected {
		t.Errorf("expected %s, got %s", expected, canon)
	}
}

func TestDigest(t *testing.T) {
	d1, err := Digest(map[string]any{"to": "a@example.com", "subject": "hi"})
	if err != nil {
		t.Fatal(err)
	}
	d2, _ := Digest(map[string]any{"subject": "hi", "to": "a@example.com"})
	if d1 != d2 || len(d1) != 64 {
		t.Errorf("digests %q %q", d1, d2)
	}
	if d, _ := Digest(nil); d != "" {
		t.Errorf("nil args digest = %q", d)
	}
}
