package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tabclean/internal/operations"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates a request struct by its validate tags. Failures come back
// as one validation operation error listing every offending field.
func Struct(step string, s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return operations.NewValidationError(step, err.Error())
	}

	messages := make([]string, 0, len(fieldErrs))
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, formatFieldError(fe))
		fields = append(fields, fe.Field())
	}
	return operations.NewValidationError(step, strings.Join(messages, "; ")).
		WithContext("fields", fields)
}

// Var validates a single value against a tag expression
func Var(step, field string, value interface{}, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return operations.NewValidationError(step, formatTag(field, fieldErrs[0].Tag(), fieldErrs[0].Param()))
		}
		return operations.NewValidationError(step, err.Error())
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	return formatTag(fe.Field(), fe.Tag(), fe.Param())
}

// formatTag formats validation error messages
func formatTag(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "number", "numeric":
		return fmt.Sprintf("%s must contain only digits", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
