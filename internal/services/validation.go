package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/imaginify/backend/internal/apperror"
)

const maxRequestBody = 1_048_576

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// ValidateRequest validates s and reports the first failing field as a
// validation AppError.
func (vh *ValidationHelper) ValidateRequest(s any) error {
	err := vh.validator.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return apperror.ValidationFailed(first.Field(),
			fmt.Sprintf("Field Validation Failed on '%s' tag", first.Tag()))
	}
	return err
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] Failed to encode response: %v", err)
	}
}

// SendErrorResponse sends a JSON error response. Field details are filled in
// when validationErr comes from the validator or is a field-level AppError.
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	errorResp := ErrorResponse{Error: message}

	var fieldErrs validator.ValidationErrors
	var appErr *apperror.AppError
	switch {
	case validationErr == nil:
	case errors.As(validationErr, &fieldErrs):
		errorResp.Details = make(map[string]string)
		for _, err := range fieldErrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	case errors.As(validationErr, &appErr) && appErr.Field != "":
		errorResp.Details = map[string]string{appErr.Field: appErr.Message}
	}

	WriteJSON(w, statusCode, errorResp)
}

// SendAppError maps err onto its status code and client-safe message.
func SendAppError(w http.ResponseWriter, err error) {
	status := apperror.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[HTTP] Internal error: %v", err)
	}
	SendErrorResponse(w, apperror.Message(err), status, err)
}

// DecodeJSON reads exactly one JSON object from the request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "Invalid request body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return apperror.ValidationFailed("body", "Request body must only contain a single JSON object")
	}
	return nil
}
