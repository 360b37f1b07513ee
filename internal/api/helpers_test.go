package api_test

import "github.com/admin-console-api/internal/validation"

func validationField(field, msg string) validation.ValidationError {
	return validation.ValidationError{Field: field, Message: msg}
}
