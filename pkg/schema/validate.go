package schema

import "github.com/aretw0/canopy/pkg/domain"

// Schema is a map of property names to their expected types.
// Example: {"title": String(), "isOn": Optional(Bool())}
type Schema map[string]Type

// Validate checks if a property bag conforms to the schema.
// Returns an error with all validation failures found. Properties not named
// by the schema are ignored.
func Validate(schema Schema, props map[string]domain.Value) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error
	for _, fieldName := range sortedKeys(schema) {
		fieldType := schema[fieldName]
		value, exists := props[fieldName]
		if !exists {
			if isOptional(fieldType) {
				continue
			}
			errs = append(errs, &ValidationError{Key: fieldName, Reason: "required"})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  &value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateFields validates only specific fields of the bag against the schema.
// Missing fields are treated as an error unless they are optional.
func ValidateFields(schema Schema, props map[string]domain.Value, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	var errs []error
	for _, fieldName := range fields {
		fieldType, exists := schema[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{Key: fieldName, Reason: "not defined in schema"})
			continue
		}

		value, fieldExists := props[fieldName]
		if !fieldExists {
			if !isOptional(fieldType) {
				errs = append(errs, &ValidationError{Key: fieldName, Reason: "required"})
			}
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  &value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
