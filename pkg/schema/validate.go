package schema

import "sort"

// Schema maps prop names to their expected types.
type Schema map[string]Type

// Validate checks props against the schema. Unlisted props pass, listed props
// are checked when present and Required ones must be present. All failures
// are reported, ordered by prop name.
func Validate(schema Schema, props map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		typ := schema[key]
		value, exists := props[key]
		if !exists {
			if IsRequired(typ) {
				errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			}
			continue
		}
		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
