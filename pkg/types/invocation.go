// Package types defines the invocation and error shapes shared by every adapter.
package types

import (
	"encoding/json"
	"fmt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Limits
// ──────────────────────────────────────────────────────────────────────────────

const (
	MaxToolNameBytes  = 128
	MaxArgumentsBytes = 1 << 20 // 1 MB
)

// ──────────────────────────────────────────────────────────────────────────────
// Invocation: one request to run a tool
// ──────────────────────────────────────────────────────────────────────────────

type Invocation struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Validate checks the request frame only; argument contents are checked
// against the tool's descriptor later.
func (inv *Invocation) Validate() error {
	if inv.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if len(inv.Name) > MaxToolNameBytes {
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("exceeds %d bytes", MaxToolNameBytes)}
	}
	if inv.Arguments == nil {
		inv.Arguments = map[string]any{}
	}
	return nil
}

// DecodeArguments parses a raw JSON arguments value. Absent and null both mean
// no arguments; anything other than an object is rejected.
func DecodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]any{}, nil
	}
	if len(raw) > MaxArgumentsBytes {
		return nil, &ValidationError{Field: "arguments", Reason: fmt.Sprintf("exceeds %d bytes", MaxArgumentsBytes)}
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, &ValidationError{Field: "arguments", Reason: "must be a JSON object"}
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
