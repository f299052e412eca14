package schema

import (
	"fmt"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
)

// Type defines the contract for property validation.
// Implementations determine how a dynamic value is checked against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "[int]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value domain.Value) error
}

// --- Built-in Type Implementations ---

// kindType accepts values of a single kind.
type kindType struct {
	name string
	kind domain.Kind
}

func (t *kindType) Name() string { return t.name }

func (t *kindType) Validate(value domain.Value) error {
	if value.Kind() != t.kind {
		return fmt.Errorf("expected %s, got %s", t.name, value.Kind())
	}
	return nil
}

// DoubleType validates numbers. Integers are accepted since they widen losslessly.
type DoubleType struct{}

func (t *DoubleType) Name() string { return "double" }

func (t *DoubleType) Validate(value domain.Value) error {
	if _, ok := value.AsDouble(); !ok {
		return fmt.Errorf("expected double, got %s", value.Kind())
	}
	return nil
}

// ArrayType validates arrays of a specific element type.
type ArrayType struct {
	elemType Type
}

func (t *ArrayType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *ArrayType) Validate(value domain.Value) error {
	elems, ok := value.AsArray()
	if !ok {
		return fmt.Errorf("expected array, got %s", value.Kind())
	}
	for i, elem := range elems {
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// OptionalType marks a field that may be absent. Present values must still match.
type OptionalType struct {
	inner Type
}

func (t *OptionalType) Name() string { return t.inner.Name() + "?" }

func (t *OptionalType) Validate(value domain.Value) error {
	return t.inner.Validate(value)
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(domain.Value) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value domain.Value) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &kindType{name: "string", kind: domain.KindString} }

// Int creates an integer type validator.
func Int() Type { return &kindType{name: "int", kind: domain.KindInt} }

// Double creates a numeric type validator.
func Double() Type { return &DoubleType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &kindType{name: "bool", kind: domain.KindBool} }

// Object creates a validator accepting any object value.
func Object() Type { return &kindType{name: "object", kind: domain.KindObject} }

// Array creates an array type validator for elements of the given type.
func Array(elemType Type) Type {
	return &ArrayType{elemType: elemType}
}

// Optional wraps a type so that a missing field is not an error.
func Optional(t Type) Type {
	return &OptionalType{inner: t}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(domain.Value) error) Type {
	return &CustomType{name: name, validate: validate}
}

func isOptional(t Type) bool {
	_, ok := t.(*OptionalType)
	return ok
}

// ParseType converts a string type name to a Type.
// Supports "string", "int", "double", "bool", "object", arrays such as "[string]"
// and a trailing "?" for optional fields.
func ParseType(typeStr string) (Type, error) {
	if inner, ok := strings.CutSuffix(typeStr, "?"); ok && inner != "" {
		t, err := ParseType(inner)
		if err != nil {
			return nil, err
		}
		return Optional(t), nil
	}

	// Handle array types: [string], [int], etc.
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Array(elemType), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "double":
		return Double(), nil
	case "bool":
		return Bool(), nil
	case "object":
		return Object(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of field names to type strings into a Schema.
// Example: {"placeholder": "string?", "isOn": "bool"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema)
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
