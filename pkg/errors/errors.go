package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error types
var (
	ErrNotFound            = errors.New("resource not found")
	ErrBadRequest          = errors.New("bad request")
	ErrInternal            = errors.New("internal server error")
	ErrValidation          = errors.New("validation error")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrNoSuitableLocation  = errors.New("no suitable location")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Retryable  bool              `json:"retryable,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Common error constructors

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Err:        ErrInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func Validation(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// Duplicate reports a unique-key violation (product name, location slot,
// batch number or barcode).
func Duplicate(message string) *AppError {
	return &AppError{
		Err:        ErrDuplicateKey,
		Code:       "DUPLICATE_KEY",
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NoSuitableLocation is the normal outcome of an allocation that found no
// eligible storage location.
func NoSuitableLocation(category string, quantity int) *AppError {
	return &AppError{
		Err:        ErrNoSuitableLocation,
		Code:       "NO_SUITABLE_LOCATION",
		Message:    fmt.Sprintf("no %s location can hold %d units", category, quantity),
		StatusCode: http.StatusUnprocessableEntity,
		Details: map[string]string{
			"category": category,
			"quantity": fmt.Sprintf("%d", quantity),
		},
	}
}

// InsufficientStock reports the products an order could not be filled for.
// Details map product IDs to the missing quantity.
func InsufficientStock(missing map[string]string) *AppError {
	return &AppError{
		Err:        ErrInsufficientStock,
		Code:       "INSUFFICIENT_STOCK",
		Message:    "insufficient stock to fulfill order",
		StatusCode: http.StatusConflict,
		Details:    missing,
	}
}

// ConcurrencyConflict reports lock contention; callers may retry.
func ConcurrencyConflict(message string) *AppError {
	return &AppError{
		Err:        ErrConcurrencyConflict,
		Code:       "CONCURRENCY_CONFLICT",
		Message:    message,
		StatusCode: http.StatusConflict,
		Retryable:  true,
	}
}

func InvalidStatus(entity, from, to string) *AppError {
	msg := fmt.Sprintf("invalid %s status %q", entity, to)
	if from != "" {
		msg = fmt.Sprintf("cannot change %s status from %q to %q", entity, from, to)
	}
	return &AppError{
		Err:        ErrInvalidStatus,
		Code:       "INVALID_STATUS",
		Message:    msg,
		StatusCode: http.StatusBadRequest,
	}
}

func CapacityExceeded(locationID string, requested int) *AppError {
	return &AppError{
		Err:        ErrCapacityExceeded,
		Code:       "CAPACITY_EXCEEDED",
		Message:    fmt.Sprintf("location %s cannot take %d more units", locationID, requested),
		StatusCode: http.StatusConflict,
	}
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Code returns the AppError code carried by err, or "" if there is none.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
