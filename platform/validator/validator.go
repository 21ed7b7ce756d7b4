// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"errors"
	"strings"

	"conciergerie_backend/platform/apperr"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance.
// Domain-specific validation rules can be registered using RegisterValidation.
func New() *Validator {
	return &Validator{
		v: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// Fields converts a validation error into a field-level error map keyed by
// the struct field's JSON-style name (lower-camel of the Go field name).
// Non-validation errors produce a single "_" entry so callers always get
// a map back, never a panic.
func Fields(err error) apperr.FieldErrors {
	result := apperr.FieldErrors{}
	if err == nil {
		return result
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		result.Add("_", err.Error())
		return result
	}

	for _, fe := range verrs {
		result.Add(lowerCamel(fe.Field()), messageFor(fe))
	}
	return result
}

func lowerCamel(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "ce champ est requis"
	case "email":
		return "adresse email invalide"
	case "oneof":
		return "valeur non autorisée (attendu: " + fe.Param() + ")"
	case "min":
		return "valeur trop petite (min " + fe.Param() + ")"
	case "max":
		return "valeur trop grande (max " + fe.Param() + ")"
	case "dive":
		return "élément invalide"
	default:
		return "champ invalide (" + fe.Tag() + ")"
	}
}
