package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuthentication = errors.New("authentication failed")
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrTransientStore = errors.New("store unavailable")
	ErrConfiguration  = errors.New("configuration error")

	// ErrDuplicate marks a detected duplicate. Callers treat it as success.
	ErrDuplicate = errors.New("duplicate")
)

type AppError struct {
	Err     error  // taxonomy sentinel
	Message string // human-readable message
	Field   string // optional offending field
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Authentication(message string) *AppError {
	return &AppError{Err: ErrAuthentication, Message: message}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Field: field}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

// Transient wraps a store failure that the caller may retry.
func Transient(op string, err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrTransientStore, err),
		Message: fmt.Sprintf("%s: store unavailable", op),
	}
}

func MissingConfig(key string) *AppError {
	return &AppError{
		Err:     ErrConfiguration,
		Message: fmt.Sprintf("%s is not configured", key),
		Field:   key,
	}
}

func Duplicate(resource, id string) *AppError {
	return &AppError{
		Err:     ErrDuplicate,
		Message: fmt.Sprintf("%s %s already recorded", resource, id),
	}
}

// StatusCode maps an error to the HTTP status used by REST routes.
// Webhook routes override authentication failures with 400.
func StatusCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrDuplicate):
		return http.StatusOK
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
