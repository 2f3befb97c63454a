package tools

import (
	"errors"
	"strings"
	"testing"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

func invoiceDescriptor() Descriptor {
	return Descriptor{
		Name: "create_invoice",
		Fields: []Field{
			{Name: "customerId", Kind: KindString},
			{Name: "lineItems", Kind: KindArray, Items: &Field{
				Kind: KindObject,
				Properties: []Field{
					{Name: "itemId", Kind: KindString},
					{Name: "quantity", Kind: KindNumber},
				},
				Required: []string{"itemId", "quantity"},
			}},
			{Name: "limit", Kind: KindNumber, Default: float64(10)},
			{Name: "status", Kind: KindString, Enum: []any{"open", "paid"}},
			{Name: "active", Kind: KindBoolean, Default: true},
			{Name: "meta", Kind: KindObject},
		},
		Required: []string{"customerId", "lineItems"},
	}
}

func validItems() []any {
	return []any{map[string]any{"itemId": "1", "quantity": float64(2)}}
}

func TestValidate_MissingRequiredNamesFieldAndKind(t *testing.T) {
	_, err := Validate(invoiceDescriptor(), map[string]any{"lineItems": validItems()})
	var ve *types.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "customerId" {
		t.Errorf("expected field customerId, got %q", ve.Field)
	}
	if !strings.Contains(ve.Reason, "string") {
		t.Errorf("expected reason to name the kind, got %q", ve.Reason)
	}
}

func TestValidate_NullRequiredIsMissing(t *testing.T) {
	_, err := Validate(invoiceDescriptor(), map[string]any{"customerId": nil, "lineItems": validItems()})
	if err == nil {
		t.Fatal("expected error for null required field")
	}
}

func TestValidate_WrongKinds(t *testing.T) {
	tests := []struct {
		name  string
		args  map[string]any
		field string
	}{
		{"number as string", map[string]any{"customerId": "c", "lineItems": validItems(), "limit": "10"}, "limit"},
		{"scalar as array", map[string]any{"customerId": "c", "lineItems": "x"}, "lineItems"},
		{"string as number", map[string]any{"customerId": float64(5), "lineItems": validItems()}, "customerId"},
		{"array as object", map[string]any{"customerId": "c", "lineItems": validItems(), "meta": []any{}}, "meta"},
		{"string as boolean", map[string]any{"customerId": "c", "lineItems": validItems(), "active": "yes"}, "active"},
		{"nested missing", map[string]any{"customerId": "c", "lineItems": []any{map[string]any{"itemId": "1"}}}, "lineItems[0].quantity"},
		{"nested wrong kind", map[string]any{"customerId": "c", "lineItems": []any{
			map[string]any{"itemId": "1", "quantity": float64(1)},
			map[string]any{"itemId": 7.0, "quantity": float64(1)},
		}}, "lineItems[1].itemId"},
		{"element not object", map[string]any{"customerId": "c", "lineItems": []any{"x"}}, "lineItems[0]"},
		{"enum violation", map[string]any{"customerId": "c", "lineItems": validItems(), "status": "void"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(invoiceDescriptor(), tt.args)
			var ve *types.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %q, got %q (%s)", tt.field, ve.Field, ve.Reason)
			}
		})
	}
}

func TestValidate_AppliesDefaultsWithoutMutatingInput(t *testing.T) {
	in := map[string]any{"customerId": "c", "lineItems": validItems()}
	args, err := Validate(invoiceDescriptor(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Int("limit") != 10 {
		t.Errorf("expected default limit 10, got %v", args["limit"])
	}
	if !args.Bool("active") {
		t.Error("expected default active true")
	}
	if _, ok := in["limit"]; ok {
		t.Error("input map was mutated")
	}
}

func TestValidate_ExplicitValueBeatsDefault(t *testing.T) {
	args, err := Validate(invoiceDescriptor(), map[string]any{
		"customerId": "c", "lineItems": validItems(), "limit": float64(3), "active": false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Int("limit") != 3 || args.Bool("active") {
		t.Errorf("explicit values overridden: %v", args)
	}
}

func TestValidate_NullOptionalGetsDefault(t *testing.T) {
	args, err := Validate(invoiceDescriptor(), map[string]any{
		"customerId": "c", "lineItems": validItems(), "limit": nil, "status": nil,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Int("limit") != 10 {
		t.Errorf("expected default for null limit, got %v", args["limit"])
	}
	if args.Has("status") {
		t.Error("expected null optional without default to be dropped")
	}
}

func TestValidate_UndeclaredKeysPassThrough(t *testing.T) {
	args, err := Validate(invoiceDescriptor(), map[string]any{
		"customerId": "c", "lineItems": validItems(), "futureFlag": []any{1, "x"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := args["futureFlag"]; !ok {
		t.Error("undeclared key was dropped")
	}
}

func TestValidate_IntegerTypesCountAsNumbers(t *testing.T) {
	_, err := Validate(invoiceDescriptor(), map[string]any{
		"customerId": "c",
		"lineItems":  []map[string]any{{"itemId": "1", "quantity": 3}},
		"limit":      5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NumericEnum(t *testing.T) {
	d := Descriptor{Name: "x", Fields: []Field{{Name: "n", Kind: KindNumber, Enum: []any{1, 2}}}}
	if _, err := Validate(d, map[string]any{"n": float64(2)}); err != nil {
		t.Errorf("expected 2.0 to match enum 2: %v", err)
	}
	if _, err := Validate(d, map[string]any{"n": float64(3)}); err == nil {
		t.Error("expected 3 to be rejected")
	}
}
