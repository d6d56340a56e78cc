package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable codes carried in every error response body.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeMediaType    = "UNSUPPORTED_MEDIA_TYPE"

	CodeBikeUnavailable = "BIKE_UNAVAILABLE"
	CodeInfrastructure  = "INFRASTRUCTURE_ERROR"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func newAppError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func NotFoundWithID(resource, id string) *AppError {
	e := newAppError(CodeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", resource))
	e.Details = map[string]any{"resource": resource, "id": id}
	return e
}

// Validation is a client-fixable problem with the request content. details
// carries either missing_fields or a reason.
func Validation(message string, details map[string]any) *AppError {
	e := newAppError(CodeValidation, http.StatusUnprocessableEntity, message)
	e.Details = details
	return e
}

func InvalidInput(message string) *AppError {
	return newAppError(CodeInvalidInput, http.StatusBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return newAppError(CodeUnauthorized, http.StatusUnauthorized, message)
}

func Conflict(message string) *AppError {
	return newAppError(CodeConflict, http.StatusConflict, message)
}

func Internal(message string, err error) *AppError {
	e := newAppError(CodeInternal, http.StatusInternalServerError, message)
	e.Err = err
	return e
}

func Timeout(message string) *AppError {
	return newAppError(CodeTimeout, http.StatusGatewayTimeout, message)
}

func RateLimited(message string) *AppError {
	return newAppError(CodeRateLimited, http.StatusTooManyRequests, message)
}

func UnsupportedMediaType(message string) *AppError {
	return newAppError(CodeMediaType, http.StatusUnsupportedMediaType, message)
}

func Unavailable(service string) *AppError {
	return newAppError(CodeUnavailable, http.StatusServiceUnavailable, fmt.Sprintf("%s is temporarily unavailable", service))
}

// BikeUnavailable reports a bike that exists but is administratively
// withdrawn from rental.
func BikeUnavailable(bikeID string) *AppError {
	e := newAppError(CodeBikeUnavailable, http.StatusConflict, "Bike is not available for booking")
	e.Details = map[string]any{"bike_id": bikeID}
	return e
}

// Infrastructure wraps a failure of a backing store or broker. Callers may
// retry the request; nothing was persisted.
func Infrastructure(message string, err error) *AppError {
	e := newAppError(CodeInfrastructure, http.StatusServiceUnavailable, message)
	e.Err = err
	return e
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError unwraps err to an AppError, treating anything else as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsRetriable reports whether the caller may safely resubmit the request.
func IsRetriable(err error) bool {
	return HasCode(err, CodeInfrastructure) || HasCode(err, CodeUnavailable) || HasCode(err, CodeTimeout)
}
