package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks the validate tags of v and returns a BadRequest naming
// the first offending field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return BadRequest("invalid input")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return BadRequest("%s is required", fe.Field())
	case "min":
		return BadRequest("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return BadRequest("%s must be at most %s characters", fe.Field(), fe.Param())
	case "uuid", "uuid4":
		return BadRequest("%s must be a valid id", fe.Field())
	}
	return BadRequest("%s is invalid", fe.Field())
}
