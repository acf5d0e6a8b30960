package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in messages follow the JSON tags.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &echoValidator{v: v}
}

// requestError lists every field of a request body that failed validation.
// Authority values are not checked here: an unknown or blank authority is
// reported by the member service, after the username availability check.
type requestError struct {
	problems []string
	fields   []string
}

func (e *requestError) Error() string {
	return strings.Join(e.problems, "; ")
}

// Fields names the offending JSON fields, in declaration order.
func (e *requestError) Fields() []string {
	return e.fields
}

// Validate satisfies the echo.Validator interface. Field failures come back
// as *requestError.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	re := &requestError{}
	for _, fe := range ve {
		re.fields = append(re.fields, fe.Field())
		re.problems = append(re.problems, fieldError(fe))
	}
	return re
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch {
	case fe.Tag() == "required" && fe.Kind() == reflect.Slice:
		return field + " must be provided"
	case fe.Tag() == "required":
		return field + " must be provided and non-empty"
	case fe.Tag() == "min" && field == "authorities":
		return "authorities must name at least one of USER, ADMIN"
	case fe.Tag() == "min":
		return fmt.Sprintf("%s must have at least %s element(s)", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
