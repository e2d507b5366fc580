package usecase

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordLength = 72
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateRegisterUserInput(input RegisterUserInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if !isValidEmail(input.Email) {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if input.Password == "" {
		errors = append(errors, ValidationError{"password", "is required"})
	} else if len(input.Password) < MinPasswordLength {
		errors = append(errors, ValidationError{"password", fmt.Sprintf("must have at least %d characters", MinPasswordLength)})
	} else if len(input.Password) > MaxPasswordLength {
		errors = append(errors, ValidationError{"password", fmt.Sprintf("must not exceed %d bytes", MaxPasswordLength)})
	}

	return errors
}

func ValidateAssignLeadsInput(input AssignLeadsInput, max int) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.UserID) == "" {
		errors = append(errors, ValidationError{"user_id", "is required"})
	}
	if input.Count < 1 {
		errors = append(errors, ValidationError{"count", "must be at least 1"})
	} else if input.Count > max {
		errors = append(errors, ValidationError{"count", fmt.Sprintf("must not exceed %d", max)})
	}

	return errors
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return false
	}
	// ParseAddress also accepts "Name <a@b>"; only a bare address is an account identity.
	return addr.Address == strings.TrimSpace(email)
}

func validationError(errs []ValidationError) error {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
	}
}
