// AngelaMos | 2026
// validation.go

package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Enum is implemented by closed string enumerations.
type Enum interface {
	Valid() bool
}

// NewValidator returns a validator that reports json field names and
// understands the "enum" tag. Enum values contain spaces, so oneof cannot
// express them.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("enum", validateEnum); err != nil {
		panic(fmt.Sprintf("validation: register enum tag: %v", err))
	}

	return v
}

func validateEnum(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.CanInterface() {
		return false
	}
	e, ok := field.Interface().(Enum)
	return ok && e.Valid()
}

func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe.Field(), fe))
	}
	return strings.Join(msgs, "; ")
}

func formatFieldError(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "enum", "oneof":
		return fmt.Sprintf("%s has an unsupported value", field)
	default:
		return fmt.Sprintf("%s failed on '%s'", field, fe.Tag())
	}
}

// ValidateOptional checks a tri-state field. Absent fields pass, null
// passes only when nullable, and values are checked against tag.
func ValidateOptional[T any](
	v *validator.Validate,
	field string,
	o Optional[T],
	tag string,
	nullable bool,
) error {
	if !o.Set {
		return nil
	}

	if o.Null {
		if nullable {
			return nil
		}
		return ValidationError(field + " cannot be null")
	}

	if tag == "" {
		return nil
	}

	if err := v.Var(o.Value, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return ValidationError(formatFieldError(field, verrs[0]))
		}
		return ValidationError(fmt.Sprintf("%s: %v", field, err))
	}

	return nil
}
