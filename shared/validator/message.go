package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required": "{field} is required",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"gt":       "{field} must be greater than {param}",
	"min":      "{field} must be at least {param}",
	"max":      "{field} must be at most {param}",
	"len":      "{field} must be exactly {param} characters",
	"oneof":    "{field} must be one of {param}",
	"email":    "{field} must be a valid email address",
	"day":      "{field} must be a date formatted as YYYY-MM-DD",
	"uuid":     "{field} must be a valid UUID",
}

// message renders the first validation error. Nested fields keep their path,
// e.g. rooms[1].assigned_guests.
func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	for _, valErr := range valErrors {
		template, ok := messages[valErr.Tag()]
		if !ok {
			continue
		}

		return strings.NewReplacer("{field}", fieldPath(valErr), "{param}", valErr.Param()).Replace(template)
	}

	return valErrors.Error()
}

// fieldPath drops the root struct name from the namespace. Plain variables
// have no namespace and are reported as "value".
func fieldPath(valErr val.FieldError) string {
	_, path, found := strings.Cut(valErr.Namespace(), ".")
	if found {
		return path
	}

	if valErr.Field() != "" {
		return valErr.Field()
	}

	return "value"
}
