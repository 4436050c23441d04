package serverutils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Session ids end up in file names and storage keys.
	if err := v.RegisterValidation("sessionid", func(fl validator.FieldLevel) bool {
		return sessionIDPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("serverutils: register sessionid validation: %v", err))
	}
	return v
}

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, tag := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", field, tag))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Has reports whether field failed validation, optionally on a specific tag.
func (e *ValidationError) Has(field string, tag ...string) bool {
	got, ok := e.Fields[field]
	if !ok {
		return false
	}
	return len(tag) == 0 || got == tag[0]
}

func ValidateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = fe.Tag()
	}
	return out
}

func IsValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}
