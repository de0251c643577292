// Package errors provides the structured error type returned across the planner's
// request boundary.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeTripNotFound    ErrorCode = "TRIP_NOT_FOUND"
	ErrCodeTripStoreFailed ErrorCode = "TRIP_STORE_FAILED"

	ErrCodeMissingMandatoryField ErrorCode = "MISSING_MANDATORY_FIELD"
	ErrCodeUnknownField          ErrorCode = "UNKNOWN_FIELD"
	ErrCodeUnknownProvider       ErrorCode = "UNKNOWN_PROVIDER"
	ErrCodeInvalidRequest        ErrorCode = "INVALID_REQUEST"

	ErrCodeModelTimeout      ErrorCode = "MODEL_TIMEOUT"
	ErrCodeModelFailed       ErrorCode = "MODEL_FAILED"
	ErrCodeRepairUnavailable ErrorCode = "REPAIR_UNAVAILABLE"
	ErrCodeMalformedOutput   ErrorCode = "MALFORMED_OUTPUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewTripNotFoundError reports that no trip document exists for uid.
func NewTripNotFoundError(uid string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTripNotFound,
		Message:   "Trip details not found for the given UID",
		Details:   fmt.Sprintf("uid: %s", uid),
		Retryable: false,
		Metadata:  map[string]interface{}{"uid": uid},
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewTripStoreFailedError wraps a document store failure other than absence.
func NewTripStoreFailedError(uid string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTripStoreFailed,
		Message:   "Trip document store error",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"uid": uid},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUnknownFieldError reports a field name with no routing entry.
func NewUnknownFieldError(field string, known []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownField,
		Message:   "Unsupported trip field",
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Metadata:  map[string]interface{}{"supported": known},
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownProviderError reports a provider id that is not registered.
func NewUnknownProviderError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownProvider,
		Message:   "Provider not registered",
		Details:   fmt.Sprintf("provider: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError reports a malformed client request.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Helpers
// ==========================

// As extracts a *StandardError from err's chain.
func As(err error) (*StandardError, bool) {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	se, ok := As(err)
	return ok && se.Code == code
}

// HTTPStatus maps an error to the status code returned at the API boundary.
func HTTPStatus(err error) int {
	se, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch se.Code {
	case ErrCodeTripNotFound:
		return http.StatusNotFound
	case ErrCodeUnknownField, ErrCodeUnknownProvider, ErrCodeInvalidRequest, ErrCodeMissingMandatoryField:
		return http.StatusBadRequest
	case ErrCodeModelTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeTripStoreFailed, ErrCodeModelFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory groups codes for metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeTripNotFound, ErrCodeTripStoreFailed:
		return "trip_store"
	case ErrCodeUnknownField, ErrCodeUnknownProvider, ErrCodeInvalidRequest, ErrCodeMissingMandatoryField:
		return "validation"
	case ErrCodeModelTimeout, ErrCodeModelFailed, ErrCodeRepairUnavailable, ErrCodeMalformedOutput:
		return "upstream"
	default:
		return "unknown"
	}
}
