package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks settings structs tagged with `validate` and reports
// failures by their `flag` names.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a validator that names fields after their CLI flags.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("flag"); name != "" {
			return name
		}
		return fld.Name
	})
	return &Validator{v: v}
}

// Validate returns nil or an error listing every invalid setting.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	lines := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		lines = append(lines, fmt.Sprintf("--%s %s", fe.Field(), friendlyMessage(fe)))
	}
	return errors.New(strings.Join(lines, "\n"))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "must not be empty"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be >= " + e.Param()
	case "lte":
		return "must be <= " + e.Param()
	case "gt":
		return "must be > " + e.Param()
	case "lt":
		return "must be < " + e.Param()
	default:
		return "is invalid"
	}
}
