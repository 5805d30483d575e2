package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no reservation matches the requested id.
var ErrNotFound = errors.New("reservation not found")

// ValidationError reports a missing or invalid required reservation field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid reservation: field %q is required", e.Field)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
