package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestInvocationValidate_RequiresName(t *testing.T) {
	inv := Invocation{}
	err := inv.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if ve.Field != "name" {
		t.Errorf("expected field name, got %q", ve.Field)
	}
}

func TestInvocationValidate_NameTooLong(t *testing.T) {
	inv := Invocation{Name: strings.Repeat("x", MaxToolNameBytes+1)}
	if err := inv.Validate(); err == nil {
		t.Fatal("expected error for oversized name")
	}
}

func TestInvocationValidate_NilArgumentsBecomeEmpty(t *testing.T) {
	inv := Invocation{Name: "echo"}
	if err := inv.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Arguments == nil {
		t.Fatal("expected empty arguments map")
	}
}

func TestDecodeArguments(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{"absent", "", 0, false},
		{"null", "null", 0, false},
		{"object", `{"a":1,"b":"x"}`, 2, false},
		{"array", `[1,2]`, 0, true},
		{"string", `"hi"`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := DecodeArguments(json.RawMessage(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(args) != tt.wantLen {
				t.Errorf("expected %d args, got %d", tt.wantLen, len(args))
			}
		})
	}
}

func TestAsToolError(t *testing.T) {
	plain := errors.New("boom")
	te := AsToolError(plain)
	if te.Kind != KindInternal || te.Message != "boom" {
		t.Errorf("unexpected normalization: %+v", te)
	}
	if !errors.Is(te, plain) {
		t.Error("expected cause to be preserved")
	}

	up := ErrUpstream("SendGrid", 503, "", nil)
	if got := AsToolError(fmt.Errorf("send: %w", up)); got != up {
		t.Error("expected wrapped ToolError to be returned as-is")
	}
	if !up.Retryable {
		t.Error("expected 503 to be retryable")
	}

	inv := AsToolError(&ValidationError{Field: "msg", Reason: "is required"})
	if inv.Kind != KindInvalidArguments {
		t.Errorf("expected invalid_arguments, got %s", inv.Kind)
	}
	if !strings.Contains(inv.Message, "msg") {
		t.Errorf("expected message to name the field, got %q", inv.Message)
	}
}

func TestErrNotConfigured_NamesMissingKeys(t *testing.T) {
	err := ErrNotConfigured("QuickBooks", "QB_ACCESS_TOKEN", "QB_COMPANY_ID")
	if err.Kind != KindNotConfigured {
		t.Fatalf("expected not_configured, got %s", err.Kind)
	}
	if !strings.Contains(err.Message, "QB_ACCESS_TOKEN, QB_COMPANY_ID") {
		t.Errorf("unexpected message %q", err.Message)
	}
}
