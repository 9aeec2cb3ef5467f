package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidCredentials = errors.New("could not authenticate user")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrUnauthorized       = errors.New("error on password change")
	ErrForbidden          = errors.New("not authorized to perform this action")
	ErrTodoNotFound       = errors.New("to-do not found")
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError reports request fields that failed their constraints
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Fields lists the struct fields that failed, in declaration order
func (e *ValidationError) Fields() []string {
	var verrs validator.ValidationErrors
	if !errors.As(e.Err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}
