package service

import (
	"github.com/go-playground/validator/v10"
)

// validate reads the same `binding` tags that gin checks in the handlers
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return v
}

func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
