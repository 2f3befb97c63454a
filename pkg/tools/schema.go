// Package tools is the provider-agnostic dispatch core: tool descriptors, the
// registry that holds them, argument validation, handler execution and the
// response envelope every adapter returns.
package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
)

// Kind is the closed set of argument kinds a descriptor may declare.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

func (k Kind) valid() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindArray, KindObject:
		return true
	}
	return false
}

// Field declares one named argument.
type Field struct {
	Name        string
	Kind        Kind
	Description string
	Default     any
	Enum        []any

	// Items describes array elements; nil accepts any element.
	Items *Field

	// Properties and Required describe object values; empty accepts any object.
	Properties []Field
	Required   []string
}

// Descriptor is the advertised shape of one tool.
type Descriptor struct {
	Name        string
	Description string
	Fields      []Field
	Required    []string
}

// Check reports a malformed descriptor. Registration refuses descriptors that
// fail it, so adapters with a broken static tool list never start serving.
func (d Descriptor) Check() error {
	if d.Name == "" {
		return fmt.Errorf("descriptor: name is required")
	}
	return checkShape(d.Name, d.Fields, d.Required)
}

func checkShape(path string, fields []Field, required []string) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if err := checkField(path, f); err != nil {
			return err
		}
		if seen[f.Name] {
			return fmt.Errorf("descriptor %s: field %q declared twice", path, f.Name)
		}
		seen[f.Name] = true
	}
	for _, r := range required {
		if !seen[r] {
			return fmt.Errorf("descriptor %s: required field %q is not declared", path, r)
		}
	}
	return nil
}

func checkField(path string, f Field) error {
	if f.Name == "" {
		return fmt.Errorf("descriptor %s: field name is required", path)
	}
	p := path + "." + f.Name
	if !f.Kind.valid() {
		return fmt.Errorf("descriptor %s: unsupported kind %q", p, f.Kind)
	}
	if f.Default != nil && !matchesKind(f.Kind, f.Default) {
		return fmt.Errorf("descriptor %s: default is not a %s", p, f.Kind)
	}
	for _, v := range f.Enum {
		if !matchesKind(f.Kind, v) {
			return fmt.Errorf("descriptor %s: enum value %v is not a %s", p, v, f.Kind)
		}
	}
	if f.Default != nil && len(f.Enum) > 0 && !inEnum(f.Enum, f.Default) {
		return fmt.Errorf("descriptor %s: default %v is not an allowed value", p, f.Default)
	}
	if f.Items != nil {
		if f.Kind != KindArray {
			return fmt.Errorf("descriptor %s: items declared on a %s", p, f.Kind)
		}
		items := *f.Items
		if items.Name == "" {
			items.Name = "items"
		}
		if err := checkField(p, items); err != nil {
			return err
		}
	}
	if len(f.Properties) > 0 || len(f.Required) > 0 {
		if f.Kind != KindObject {
			return fmt.Errorf("descriptor %s: properties declared on a %s", p, f.Kind)
		}
		return checkShape(p, f.Properties, f.Required)
	}
	return nil
}

func (d Descriptor) clone() Descriptor {
	out := d
	out.Fields = cloneFields(d.Fields)
	out.Required = slices.Clone(d.Required)
	return out
}

func cloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f
		out[i].Enum = slices.Clone(f.Enum)
		out[i].Required = slices.Clone(f.Required)
		out[i].Properties = cloneFields(f.Properties)
		if f.Items != nil {
			items := cloneFields([]Field{*f.Items})[0]
			out[i].Items = &items
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// JSON Schema encoding
// ──────────────────────────────────────────────────────────────────────────────

// InputSchema renders the declared shape as a JSON Schema object.
func (d Descriptor) InputSchema() map[string]any {
	return objectSchema(d.Fields, d.Required)
}

func objectSchema(fields []Field, required []string) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		props[f.Name] = fieldSchema(f)
	}
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func fieldSchema(f Field) map[string]any {
	s := map[string]any{"type": string(f.Kind)}
	if f.Description != "" {
		s["description"] = f.Description
	}
	if f.Default != nil {
		s["default"] = f.Default
	}
	if len(f.Enum) > 0 {
		s["enum"] = f.Enum
	}
	if f.Items != nil {
		s["items"] = fieldSchema(*f.Items)
	}
	if len(f.Properties) > 0 {
		obj := objectSchema(f.Properties, f.Required)
		s["properties"] = obj["properties"]
		s["required"] = obj["required"]
	}
	return s
}

type wireDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

func (d Descriptor) MarshalJSON() ([]byte, error) {
	schema, err := json.Marshal(d.InputSchema())
	if err != nil {
		return nil, fmt.Errorf("descriptor %s schema: %w", d.Name, err)
	}
	return json.Marshal(wireDescriptor{Name: d.Name, Description: d.Description, InputSchema: schema})
}

// UnmarshalJSON reads a descriptor advertised by another adapter. Property
// order is kept as written.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var w wireDescriptor
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	fields, required, err := decodeObjectSchema(w.InputSchema)
	if err != nil {
		return fmt.Errorf("descriptor %s: %w", w.Name, err)
	}
	*d = Descriptor{Name: w.Name, Description: w.Description, Fields: fields, Required: required}
	return nil
}

type wireSchema struct {
	Type        json.RawMessage `json:"type"`
	Description string          `json:"description"`
	Default     any             `json:"default"`
	Enum        []any           `json:"enum"`
	Items       json.RawMessage `json:"items"`
	Properties  json.RawMessage `json:"properties"`
	Required    []string        `json:"required"`
}

func decodeObjectSchema(raw json.RawMessage) ([]Field, []string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil, nil
	}
	var s wireSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, nil, fmt.Errorf("input schema: %w", err)
	}
	fields, err := decodeProperties(s.Properties)
	if err != nil {
		return nil, nil, err
	}
	return fields, s.Required, nil
}

func decodeProperties(raw json.RawMessage) ([]Field, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	names, err := objectKeys(raw)
	if err != nil {
		return nil, fmt.Errorf("properties: %w", err)
	}
	var props map[string]json.RawMessage
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, fmt.Errorf("properties: %w", err)
	}
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		f, err := decodeField(name, props[name])
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func decodeField(name string, raw json.RawMessage) (Field, error) {
	var s wireSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return Field{}, fmt.Errorf("property %s: %w", name, err)
	}
	f := Field{
		Name:        name,
		Kind:        schemaKind(s.Type),
		Description: s.Description,
		Default:     s.Default,
		Enum:        s.Enum,
		Required:    s.Required,
	}
	if len(s.Items) > 0 && string(s.Items) != "null" {
		items, err := decodeField("items", s.Items)
		if err != nil {
			return Field{}, fmt.Errorf("property %s: %w", name, err)
		}
		items.Name = ""
		f.Items = &items
	}
	props, err := decodeProperties(s.Properties)
	if err != nil {
		return Field{}, fmt.Errorf("property %s: %w", name, err)
	}
	f.Properties = props
	return f, nil
}

// schemaKind maps a JSON Schema type onto the closed kind set. "integer" is a
// number; union types use their first non-null member; anything unrecognised
// is read as a string.
func schemaKind(raw json.RawMessage) Kind {
	var t string
	if err := json.Unmarshal(raw, &t); err != nil {
		var union []string
		if json.Unmarshal(raw, &union) == nil {
			for _, u := range union {
				if u != "null" {
					t = u
					break
				}
			}
		}
	}
	switch t {
	case "integer", "number":
		return KindNumber
	case "boolean":
		return KindBoolean
	case "array":
		return KindArray
	case "object":
		return KindObject
	default:
		return KindString
	}
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key")
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Runtime kinds
// ──────────────────────────────────────────────────────────────────────────────

func matchesKind(k Kind, v any) bool {
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindNumber:
		_, ok := toFloat(v)
		return ok
	case KindBoolean:
		_, ok := v.(bool)
		return ok
	case KindArray:
		if v == nil {
			return false
		}
		rk := reflect.TypeOf(v).Kind()
		return rk == reflect.Slice || rk == reflect.Array
	case KindObject:
		if v == nil {
			return false
		}
		t := reflect.TypeOf(v)
		return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
	}
	return false
}

// kindOf names the runtime kind of an argument value for error messages.
func kindOf(v any) string {
	for _, k := range []Kind{KindString, KindNumber, KindBoolean, KindArray, KindObject} {
		if matchesKind(k, v) {
			return string(k)
		}
	}
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func inEnum(enum []any, v any) bool {
	if f, ok := toFloat(v); ok {
		for _, e := range enum {
			if ef, ok := toFloat(e); ok && ef == f {
				return true
			}
		}
		return false
	}
	if v == nil || !reflect.TypeOf(v).Comparable() {
		return false
	}
	for _, e := range enum {
		if e == v {
			return true
		}
	}
	return false
}
