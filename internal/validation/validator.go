package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/admin-console-api/internal/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator checks console input before it reaches the store
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

// inviteInput carries the tags for an invite request
type inviteInput struct {
	Email string `validate:"required,email,max=320"`
}

// ValidateInvite checks the trimmed invite email. An empty email reports
// "email is required", anything else that is not an address reports
// "invalid email format".
func (v *Validator) ValidateInvite(email string) *ValidationError {
	email = strings.TrimSpace(email)
	if err := v.v.Struct(inviteInput{Email: email}); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() == "required" {
			return &ValidationError{Field: "email", Message: "email is required"}
		}
		return &ValidationError{Field: "email", Message: "invalid email format", Value: email}
	}
	return nil
}

// ValidateStatus checks a user status value
func (v *Validator) ValidateStatus(status string) *ValidationError {
	if status == "" {
		return &ValidationError{Field: "status", Message: "status is required"}
	}
	if !models.ValidStatuses[status] {
		return &ValidationError{
			Field:   "status",
			Message: "invalid status, must be one of: pending, approved, revoked",
			Value:   status,
		}
	}
	return nil
}

// ValidateRole checks a user role value
func (v *Validator) ValidateRole(role string) *ValidationError {
	if role == "" {
		return &ValidationError{Field: "role", Message: "role is required"}
	}
	if !models.ValidRoles[role] {
		return &ValidationError{
			Field:   "role",
			Message: "invalid role, must be one of: admin, editor, viewer",
			Value:   role,
		}
	}
	return nil
}

// ValidateCredentials checks a password sign-in request
func (v *Validator) ValidateCredentials(email, password string) []ValidationError {
	var errs []ValidationError
	if err := v.v.Var(strings.TrimSpace(email), "required,email"); err != nil {
		errs = append(errs, ValidationError{Field: "email", Message: "a valid email is required"})
	}
	if password == "" {
		errs = append(errs, ValidationError{Field: "password", Message: "password is required"})
	}
	return errs
}
