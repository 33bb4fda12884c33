package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("User not found")

	// ErrDuplicateEmail is what the store adapter reports on a unique-index
	// violation; the service maps it to the operation-specific message.
	ErrDuplicateEmail = errors.New("duplicate email")

	ErrEmailTaken        = errors.New("Email already exists")
	ErrEmailTakenByOther = errors.New("Another user with this email already exists")
)

// ValidationError carries every field-rule violation found in a payload,
// in field order.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Violations, ", ") }
