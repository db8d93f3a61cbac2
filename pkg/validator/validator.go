package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to echo.Validator
type Validator struct {
	validate *validator.Validate
}

// New returns a validator reporting json field names in its messages
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate implements echo.Validator
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return &Error{cause: err}
	}
	return nil
}

// Error wraps validation failures with a single human readable message
type Error struct {
	cause error
}

func (e *Error) Error() string {
	errs, ok := e.cause.(validator.ValidationErrors)
	if !ok {
		return e.cause.Error()
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, describe(fe))
	}
	return strings.Join(msgs, "; ")
}

func (e *Error) Unwrap() error {
	return e.cause
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("campo '%s' é obrigatório", field)
	case "min":
		return fmt.Sprintf("campo '%s' deve ter no mínimo %s caracteres", field, fe.Param())
	case "max":
		return fmt.Sprintf("campo '%s' deve ter no máximo %s caracteres", field, fe.Param())
	case "gte":
		return fmt.Sprintf("campo '%s' deve ser maior ou igual a %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("campo '%s' deve ser um de: %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("campo '%s' deve ser um e-mail válido", field)
	default:
		return fmt.Sprintf("campo '%s' é inválido (%s)", field, fe.Tag())
	}
}
