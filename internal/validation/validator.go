// Package validation configures request validation and converts its failures to domain errors.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var registerOnce sync.Once

// RegisterBindingValidators installs the custom tags and JSON field naming on gin's validator.
// Safe to call repeatedly.
func RegisterBindingValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			configure(v)
		}
	})
}

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a standalone validator with the same configuration gin uses.
// It reads the binding tags, so request structs validate the same way outside gin.
func New() *Validator {
	v := validator.New()
	v.SetTagName("binding")
	configure(v)
	return &Validator{v: v}
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return FromBindingError(err)
	}
	return nil
}

// FromBindingError converts errors returned by gin's ShouldBind* into validation errors.
func FromBindingError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for _, e := range validationErrs {
			fields[fieldPath(e)] = friendlyMessage(e)
		}
		return domainerrors.ValidationWithDetails("validation failed", fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return domainerrors.FieldError(typeErr.Field, fmt.Sprintf("must be of type %s", typeErr.Type.String()))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || strings.Contains(err.Error(), "EOF") {
		return domainerrors.Validation("malformed JSON body")
	}

	return domainerrors.Validation(err.Error())
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	numeric := false
	switch e.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		numeric = true
	}

	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. It may contain only letters, numbers and @/./+/-/_ characters."
	case "min":
		if numeric {
			return "Ensure this value is greater than or equal to " + e.Param() + "."
		}
		return "Ensure this field has at least " + e.Param() + " characters."
	case "max":
		if numeric {
			return "Ensure this value is less than or equal to " + e.Param() + "."
		}
		return "Ensure this field has no more than " + e.Param() + " characters."
	case "oneof":
		return "Must be one of: " + e.Param() + "."
	default:
		return "Invalid value."
	}
}
