package validator

import (
	"errors"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required": "{field} is required",
	"oneof":    "{field} must be one of {param}",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"min":      "{field} must be greater than or equal to {param}",
	"max":      "{field} must be less than or equal to {param}",
	"eth_addr": "{field} must be a valid address",
	"amount":   "{field} must be a non-negative decimal with at most 18 fractional digits",
	"numeric":  "{field} must be numeric",
}

// Length rules read differently on text fields such as descriptions and notes.
var stringMessages = map[string]string{
	"min": "{field} must be at least {param} characters",
	"max": "{field} must be at most {param} characters",
}

// jsonName reports fields by the name clients send.
func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	if name == "" {
		return field.Name
	}

	return name
}

// message renders one sentence per failing field, joined with "; ".
func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(valErrors))

	for _, valErr := range valErrors {
		template := messages[valErr.Tag()]
		if valErr.Kind() == reflect.String && stringMessages[valErr.Tag()] != "" {
			template = stringMessages[valErr.Tag()]
		}

		if template == "" {
			parts = append(parts, valErr.Error())

			continue
		}

		field := valErr.Field()
		if field == "" {
			field = "value"
		}

		parts = append(parts, strings.NewReplacer("{field}", field, "{param}", valErr.Param()).Replace(template))
	}

	return strings.Join(parts, "; ")
}
