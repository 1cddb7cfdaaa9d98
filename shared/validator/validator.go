package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"pms/shared/failure"
	"pms/shared/timezone"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

// validateDay accepts calendar dates in YYYY-MM-DD form.
func validateDay(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := timezone.ParseDay(value)

	return err == nil
}

// jsonName reports fields by their JSON name so messages match the request.
func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")

	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}

	return name
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	if err := validate.RegisterValidation("day", validateDay); err != nil {
		panic(err)
	}
}

// Validate decodes a JSON body from r into data and validates it. Decoding
// and validation problems are both reported as 400 failures.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
