// Package validate wraps go-playground/validator with JSON field names and a
// flat error map suited to API responses.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks request structs.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the account rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// accounttype accepts the two account kinds the directory stores.
	_ = v.RegisterValidation("accounttype", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "EMAIL", "SOCIAL":
			return true
		}
		return false
	})

	return &Validator{validate: v}
}

// Struct validates s and returns a *ValidationError for rule failures.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return newValidationError(verrs)
	}
	return err
}

// ValidationError maps JSON field names to a human-readable message.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func newValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			fields[field] = "is required"
		case "email":
			fields[field] = "must be a valid email address"
		case "min":
			fields[field] = fmt.Sprintf("must be at least %s characters long", fe.Param())
		case "max":
			fields[field] = fmt.Sprintf("must be at most %s characters long", fe.Param())
		case "accounttype":
			fields[field] = "must be EMAIL or SOCIAL"
		case "required_if":
			fields[field] = "is required for this account type"
		default:
			fields[field] = "is invalid"
		}
	}
	return &ValidationError{Fields: fields}
}
