package service

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrValidation            = errors.New("validation failed")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrUserNotFound          = errors.New("user not found")
	ErrExerciseNotFound      = errors.New("exercise not found")
	ErrForbidden             = errors.New("not allowed")
)

// ValidationError reports an invalid input field. errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// forbidden builds e.g. "not allowed to update this exercise"
func forbidden(action string) error {
	return fmt.Errorf("%w to %s this exercise", ErrForbidden, action)
}
