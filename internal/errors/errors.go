package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of the
// innermost AppError when there is one.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode wraps err under the given code. The original error stays reachable
// through Unwrap.
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is (or wraps) an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code of the outermost AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeParseFailure      = "PARSE_FAILURE"
	CodeConnectionFailure = "CONNECTION_FAILURE"
	CodeQueryFailure      = "QUERY_FAILURE"
	CodeEndpointFailure   = "ENDPOINT_FAILURE"
	CodeRenderFailure     = "RENDER_FAILURE"
	CodeNoDataset         = "NO_DATASET"
	CodeSessionBusy       = "SESSION_BUSY"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func ParseFailure(message string, cause error) *AppError {
	return &AppError{Code: CodeParseFailure, Message: message, Cause: cause}
}

func ConnectionFailure(message string, cause error) *AppError {
	return &AppError{Code: CodeConnectionFailure, Message: message, Cause: cause}
}

func QueryFailure(message string, cause error) *AppError {
	return &AppError{Code: CodeQueryFailure, Message: message, Cause: cause}
}

func EndpointFailure(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeEndpointFailure,
		Message: fmt.Sprintf("%s endpoint error", service),
		Cause:   cause,
	}
}

func RenderFailure(message string, cause error) *AppError {
	return &AppError{Code: CodeRenderFailure, Message: message, Cause: cause}
}

func NoDataset() *AppError {
	return New(CodeNoDataset, "no dataset loaded")
}

func SessionBusy() *AppError {
	return New(CodeSessionBusy, "another action is still running for this session")
}

// HTTPStatus maps an error code onto the status the HTTP surfaces answer with
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeParseFailure, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNoDataset, CodeSessionBusy:
		return http.StatusConflict
	case CodeConnectionFailure, CodeQueryFailure, CodeEndpointFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
