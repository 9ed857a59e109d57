package model

import (
	"errors"
	"fmt"
)

// ErrLotNotFound is returned when no lot has the requested id.
var ErrLotNotFound = errors.New("lot not found")

// ValidationError reports bad or missing input on create.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "is required"}
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
