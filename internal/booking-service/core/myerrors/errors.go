package myerrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")

	ErrNotFound        = errors.New("not found")
	ErrProfileNotFound = fmt.Errorf("profile %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrDriverNotFound  = fmt.Errorf("driver %w", ErrNotFound)
	ErrCheckoutExpired = fmt.Errorf("checkout %w", ErrNotFound)

	ErrUnauthenticated  = errors.New("not authenticated")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrInvalidCreds     = errors.New("invalid email or password")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrDuplicate        = errors.New("record already exists")
	ErrUnknownProvider  = errors.New("unknown oauth provider")
	ErrForbidden        = errors.New("operation not allowed")
	ErrInvalidBookingID = errors.New("invalid booking ID format")

	ErrDriverRequired   = errors.New("please select a driver first")
	ErrInvalidState     = errors.New("action not allowed in the current state")
	ErrAlreadySubmitted = errors.New("booking already submitted")
	ErrNotCancellable   = errors.New("only confirmed bookings can be cancelled")
	ErrNotRateable      = errors.New("only completed, unrated bookings can be reviewed")

	ErrDBConnClosed = errors.New("failed to connect to db")
)

// ValidationError is a field-level validation failure. It is detected
// locally and never reaches a collaborator.
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

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// FieldOf returns the offending field of a validation error, if any.
func FieldOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
