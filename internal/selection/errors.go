package selection

import (
	"errors"
	"fmt"
)

// Field names reported by ValidationError.
const (
	FieldDate   = "date"
	FieldPerson = "person"
	FieldDishes = "dishes"
)

// ValidationError reports a rejected request. Nothing was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a rejected-input error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
