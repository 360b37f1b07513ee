package service

import (
	"errors"
	"fmt"

	"github.com/admin-console-api/internal/validation"
)

var (
	ErrEmptyEmail        = errors.New("email is required")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidTheme      = errors.New("invalid theme")
	ErrUserNotFound      = errors.New("user not found")
	ErrUpdateFailed      = errors.New("failed to update user")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrUnknownResource   = errors.New("unknown resource")
)

// InputError is a rejected request value. It unwraps to its Kind sentinel.
type InputError struct {
	Kind  error
	Field validation.ValidationError
}

func (e *InputError) Error() string { return e.Field.Message }

func (e *InputError) Unwrap() error { return e.Kind }

func inputError(kind error, field *validation.ValidationError) error {
	return &InputError{Kind: kind, Field: *field}
}

// LoadError is a failed collection read. Its message is what the console shows.
type LoadError struct {
	Collection string
	Err        error
}

func (e *LoadError) Error() string { return fmt.Sprintf("Failed to load %s.", e.Collection) }

func (e *LoadError) Unwrap() error { return e.Err }

// InviteError carries the store failure of an invite verbatim
type InviteError struct {
	Err error
}

func (e *InviteError) Error() string { return "Failed to invite user. Error: " + e.Err.Error() }

func (e *InviteError) Unwrap() error { return e.Err }
