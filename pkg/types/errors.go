package types

import (
	"errors"
	"fmt"
)

// Validation errors. Detected locally; they never reach the network.
var (
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrWeakPassword      = errors.New("weak password")
	ErrInvalidDateRange  = errors.New("end date is before start date")
	ErrTooLong           = errors.New("value too long")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrOccupancyConflict = errors.New("apartment is not eligible for this contract")
	ErrInvalidStatus     = errors.New("invalid apartment status")
)

// Session and submission errors.
var (
	ErrAuthRequired     = errors.New("authentication required")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
)

// Remote errors. ErrRemoteFailure is the only kind that originates from the
// transport.
var (
	ErrRemoteFailure = errors.New("remote failure")
	ErrNotFound      = errors.New("entity not found")
)

// FieldError is a validation failure tied to a form field. It unwraps to one
// of the validation sentinels.
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

// NewFieldError builds a FieldError for field wrapping kind.
func NewFieldError(field string, kind error, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason, Err: kind}
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Field, e.Err, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

// RemoteError carries a failure reported by the server or the network.
// Message is the server-provided text, passed through verbatim when present.
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap exposes both ErrRemoteFailure and the underlying cause, if any.
// A 404 additionally matches ErrNotFound.
func (e *RemoteError) Unwrap() []error {
	errs := []error{ErrRemoteFailure}
	if e.Status == 404 {
		errs = append(errs, ErrNotFound)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// RemoteMessage returns the server-provided message carried by err, or
// fallback when err carries none.
func RemoteMessage(err error, fallback string) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}
