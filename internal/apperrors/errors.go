package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidFrequency indicates an unrecognized recurrence frequency.
var ErrInvalidFrequency = errors.New("invalid frequency")

// ErrInvalidRange indicates a date range whose lower bound is after its upper bound.
var ErrInvalidRange = errors.New("invalid date range")

// ErrStorageUnavailable indicates a transient storage failure. Safe to retry.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrConcurrentModification indicates that a recurrence was advanced by another
// caller between read and write. Retry from a freshly read recurrence.
var ErrConcurrentModification = errors.New("concurrent modification")

// ErrRecurrenceInactive indicates a materialization request for a recurrence
// that is disabled or expired.
var ErrRecurrenceInactive = errors.New("recurrence is not active")

// AppError carries an HTTP-equivalent status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError. err may be nil.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transient condition the caller may retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrConcurrentModification)
}

// HTTPStatus maps an error onto the status code a handler should answer with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidFrequency), errors.Is(err, ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConcurrentModification), errors.Is(err, ErrRecurrenceInactive):
		return http.StatusConflict
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
