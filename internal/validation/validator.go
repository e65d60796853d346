// Package validation wraps go-playground/validator for service request
// structs, converting failures into coded domain errors with per-field
// messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/familes/familes-server/internal/domain"
	domainerrors "github.com/familes/familes-server/internal/errors"
)

// Validator validates request structs against their validate tags.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the FamiLes custom validations
// registered. Field names in error details come from json tags.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(jsonFieldName)

	// League invite codes: fixed length, restricted alphabet.
	_ = v.RegisterValidation("joincode", func(fl validator.FieldLevel) bool {
		return domain.ValidJoinCode(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate checks s and returns a VALIDATION domain error carrying a
// field-to-message map, or nil.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = messageFor(fe)
	}
	return domainerrors.ValidationWithDetails("validation failed", details)
}

// jsonFieldName resolves the reported field name from the json tag,
// stripping options like omitempty.
func jsonFieldName(fld reflect.StructField) string {
	name := fld.Tag.Get("json")
	if name == "" || name == "-" {
		return fld.Name
	}
	if idx := strings.IndexByte(name, ','); idx >= 0 {
		return name[:idx]
	}
	return name
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "joincode":
		return fmt.Sprintf("must be %d characters from the invite code alphabet", domain.JoinCodeLength)
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}
