package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"traveltrust/shared/amount"
	"traveltrust/shared/failure"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

// validateAmount accepts decimal strings in the native unit with at most
// eighteen fractional digits. Zero passes; positivity is a domain rule.
func validateAmount(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := amount.ParseEther(str)

	return err == nil
}

var rules = map[string]val.Func{
	"amount": validateAmount,
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	for tag, rule := range rules {
		if err := validate.RegisterValidation(tag, rule); err != nil {
			panic(err)
		}
	}
}

// Validate decodes a single JSON object into data, rejecting unknown fields
// and trailing content, and then validates it. Every failure is a 400.
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(data); err != nil {
		if errors.Is(err, io.EOF) {
			return failure.BadRequestFromString("Request body is required")
		}

		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	if decoder.More() {
		return failure.BadRequestFromString("Request body must contain a single JSON object")
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
