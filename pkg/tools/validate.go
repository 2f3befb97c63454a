package tools

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
)

// Validate checks arguments against the descriptor and returns a copy with
// declared defaults applied. Required fields are checked first, then every
// declared field that is present, both in declaration order; the first
// violation is returned as a *types.ValidationError naming the field and the
// expected kind. Undeclared keys are passed through untouched.
func Validate(d Descriptor, arguments map[string]any) (Args, error) {
	out := make(Args, len(arguments)+len(d.Fields))
	for k, v := range arguments {
		out[k] = v
	}

	if err := checkRequired("", d.Fields, d.Required, out); err != nil {
		return nil, err
	}
	for _, f := range d.Fields {
		v, present := out[f.Name]
		if !present || v == nil {
			if f.Default != nil {
				out[f.Name] = f.Default
			} else if present {
				delete(out, f.Name)
			}
			continue
		}
		if err := checkValue(f.Name, f, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func checkRequired(prefix string, fields []Field, required []string, values map[string]any) error {
	for _, name := range required {
		if v, ok := values[name]; !ok || v == nil {
			return &types.ValidationError{
				Field:  prefix + name,
				Reason: fmt.Sprintf("is required (expected %s)", declaredKind(fields, name)),
			}
		}
	}
	return nil
}

func checkValue(path string, f Field, v any) error {
	if !matchesKind(f.Kind, v) {
		return &types.ValidationError{
			Field:  path,
			Reason: fmt.Sprintf("must be a %s, got %s", f.Kind, kindOf(v)),
		}
	}
	if len(f.Enum) > 0 && !inEnum(f.Enum, v) {
		return &types.ValidationError{
			Field:  path,
			Reason: fmt.Sprintf("must be one of %s", enumList(f.Enum)),
		}
	}

	switch f.Kind {
	case KindArray:
		if f.Items == nil {
			return nil
		}
		rv := reflect.ValueOf(v)
		for i := 0; i < rv.Len(); i++ {
			item := rv.Index(i).Interface()
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if item == nil {
				return &types.ValidationError{
					Field:  itemPath,
					Reason: fmt.Sprintf("must be a %s, got null", f.Items.Kind),
				}
			}
			if err := checkValue(itemPath, *f.Items, item); err != nil {
				return err
			}
		}
	case KindObject:
		if len(f.Properties) == 0 && len(f.Required) == 0 {
			return nil
		}
		obj := toObject(v)
		if err := checkRequired(path+".", f.Properties, f.Required, obj); err != nil {
			return err
		}
		for _, p := range f.Properties {
			pv, ok := obj[p.Name]
			if !ok || pv == nil {
				continue
			}
			if err := checkValue(path+"."+p.Name, p, pv); err != nil {
				return err
			}
		}
	}
	return nil
}

func declaredKind(fields []Field, name string) Kind {
	for _, f := range fields {
		if f.Name == name {
			return f.Kind
		}
	}
	return KindString
}

func enumList(enum []any) string {
	parts := make([]string, len(enum))
	for i, e := range enum {
		parts[i] = fmt.Sprint(e)
	}
	return strings.Join(parts, ", ")
}

func toObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	rv := reflect.ValueOf(v)
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out
}
