package webutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes returned in the "code" field of error bodies.
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeInternalServer      = "INTERNAL_SERVER_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeConflict            = "CONFLICT"
	CodeExistingUser        = "EXISTING_USER"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidPassword     = "INVALID_PASSWORD"
	CodeInvalidEmail        = "INVALID_EMAIL"
	CodeInvalidDate         = "INVALID_DATE"
	CodeInvalidDescription  = "INVALID_DESCRIPTION"
	CodeTaskNotFound        = "TASK_NOT_FOUND"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeMissingAuthHeader   = "AUTHORIZATION_HEADER_NOT_FOUND"
	CodeMalformedAuthHeader = "INVALID_AUTHORIZATION_HEADER"
	CodeUnsupportedScheme   = "INVALID_AUTHENTICATION_SCHEME"
)

const (
	msgBadRequest     = "Bad Request"
	msgNotFound       = "Resource not found"
	msgInternalServer = "Internal Server Error"
	msgUnauthorized   = "Unauthorized"
	msgConflict       = "Conflict"
)

// Represents an error with an associated HTTP status code, a machine-readable
// code and a user-facing message.
type HTTPError struct {
	cause   error          // The underlying error, can be nil
	Code    int            // HTTP status code
	ErrCode string         // Machine-readable error code
	Message string         // User-facing error message
	Details map[string]any // Optional structured context
}

// Implements the error interface.
// It returns the Message, which is intended for the HTTP response.
func (he HTTPError) Error() string {
	return he.Message
}

// Provides compatibility for errors.Is and errors.As.
func (he HTTPError) Unwrap() error {
	return he.cause
}

// WithDetails attaches structured context to the error body.
func (he *HTTPError) WithDetails(details map[string]any) *HTTPError {
	he.Details = details
	return he
}

// Body returns the JSON error representation.
func (he *HTTPError) Body() ErrorResponse {
	return ErrorResponse{
		Code:    he.ErrCode,
		Message: he.Message,
		Details: he.Details,
	}
}

// ErrorResponse is the wire shape of every error.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Returns the defaultVal if the initial value is empty.
func defaultIfEmpty(initial, defaultVal string) string {
	if initial == "" {
		return defaultVal
	}
	return initial
}

// Creates a new HTTPError with a status, code and message.
// The message provided will be used directly. If a default message is desired
// for an empty input message, use the specific ErrXxx constructors.
func NewHTTPError(status int, code, message string) *HTTPError {
	return &HTTPError{
		cause:   errors.New(message), // Base error is the message itself
		Code:    status,
		ErrCode: code,
		Message: message,
	}
}

// Creates a new HTTPError that wraps an existing error (cause).
// The message is a user-facing message for this specific HTTP error context.
func NewHTTPErrorWrap(status int, code, message string, cause error) *HTTPError {
	return &HTTPError{
		cause:   cause,
		Code:    status,
		ErrCode: code,
		Message: message,
	}
}

func ErrBadRequest(code, message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, defaultIfEmpty(code, CodeBadRequest), defaultIfEmpty(message, msgBadRequest))
}

func ErrBadRequestWrap(code, message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusBadRequest, defaultIfEmpty(code, CodeBadRequest), defaultIfEmpty(message, msgBadRequest), cause)
}

func ErrNotFound(code, message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, defaultIfEmpty(code, CodeNotFound), defaultIfEmpty(message, msgNotFound))
}

func ErrNotFoundWrap(code, message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusNotFound, defaultIfEmpty(code, CodeNotFound), defaultIfEmpty(message, msgNotFound), cause)
}

func ErrInternalServer(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, CodeInternalServer, defaultIfEmpty(message, msgInternalServer))
}

func ErrInternalServerWrap(message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusInternalServerError, CodeInternalServer, msgInternalServer, fmt.Errorf("%s: %w", message, cause))
}

func ErrUnauthorized(code, message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, defaultIfEmpty(code, CodeUnauthorized), defaultIfEmpty(message, msgUnauthorized))
}

func ErrUnauthorizedWrap(code, message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusUnauthorized, defaultIfEmpty(code, CodeUnauthorized), defaultIfEmpty(message, msgUnauthorized), cause)
}

func ErrConflict(code, message string) *HTTPError {
	return NewHTTPError(http.StatusConflict, defaultIfEmpty(code, CodeConflict), defaultIfEmpty(message, msgConflict))
}
