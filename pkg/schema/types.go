package schema

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Type validates a single prop value.
type Type interface {
	// Name returns the type string ParseType understands.
	Name() string
	Validate(value any) error
}

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

type numberType struct{}

func (numberType) Name() string { return "number" }

func (numberType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	default:
		return fmt.Errorf("expected number, got %T", value)
	}
}

type intType struct{}

func (intType) Name() string { return "int" }

func (intType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		// JSON numbers decode as float64.
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got %v", v)
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

type boolType struct{}

func (boolType) Name() string { return "bool" }

func (boolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

type objectType struct{}

func (objectType) Name() string { return "object" }

func (objectType) Validate(value any) error {
	if value != nil && reflect.TypeOf(value).Kind() == reflect.Map {
		return nil
	}
	return fmt.Errorf("expected object, got %T", value)
}

type sliceType struct {
	elem Type
}

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected list, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

type oneOfType struct {
	values []string
}

func (t oneOfType) Name() string { return "oneof(" + strings.Join(t.values, "|") + ")" }

func (t oneOfType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected one of %v, got %T", t.values, value)
	}
	if !slices.Contains(t.values, s) {
		return fmt.Errorf("expected one of %v, got %q", t.values, s)
	}
	return nil
}

type requiredType struct {
	Type
}

func (t requiredType) Name() string { return t.Type.Name() + "!" }

type customType struct {
	name     string
	validate func(any) error
}

func (t customType) Name() string { return t.name }

func (t customType) Validate(value any) error { return t.validate(value) }

// String accepts strings.
func String() Type { return stringType{} }

// Number accepts any numeric value.
func Number() Type { return numberType{} }

// Int accepts integers, including whole float64 values.
func Int() Type { return intType{} }

// Bool accepts booleans.
func Bool() Type { return boolType{} }

// Object accepts nested maps such as style records.
func Object() Type { return objectType{} }

// Slice accepts lists whose elements all match elem.
func Slice(elem Type) Type { return sliceType{elem: elem} }

// OneOf accepts one of the given strings.
func OneOf(values ...string) Type { return oneOfType{values: values} }

// Required marks a prop that must be present.
func Required(t Type) Type {
	if IsRequired(t) {
		return t
	}
	return requiredType{Type: t}
}

// IsRequired reports whether t was wrapped by Required.
func IsRequired(t Type) bool {
	_, ok := t.(requiredType)
	return ok
}

// Custom creates a type with a user-defined check. Custom types cannot be
// parsed back from their name.
func Custom(name string, validate func(any) error) Type {
	return customType{name: name, validate: validate}
}

// ParseType converts a type string to a Type. It understands "string",
// "number", "int", "bool", "object", "[T]", "oneof(a|b)" and a trailing "!"
// for required props.
func ParseType(typeStr string) (Type, error) {
	s := strings.TrimSpace(typeStr)
	if strings.HasSuffix(s, "!") {
		t, err := ParseType(strings.TrimSuffix(s, "!"))
		if err != nil {
			return nil, err
		}
		return Required(t), nil
	}

	if len(s) > 2 && s[0] == '[' && s[len(s)-1] == ']' {
		elem, err := ParseType(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}

	if strings.HasPrefix(s, "oneof(") && strings.HasSuffix(s, ")") {
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "oneof("), ")")
		if inner == "" {
			return nil, fmt.Errorf("oneof needs at least one value")
		}
		return OneOf(strings.Split(inner, "|")...), nil
	}

	switch s {
	case "string":
		return String(), nil
	case "number", "float":
		return Number(), nil
	case "int":
		return Int(), nil
	case "bool":
		return Bool(), nil
	case "object":
		return Object(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts prop names to type strings into a Schema.
// Example: {"label": "string!", "size": "number"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("prop %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
