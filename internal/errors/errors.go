package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"

	// ErrCodeLockTimeout indicates another authorization session held the auth lock for too long.
	ErrCodeLockTimeout ErrorCode = "lock_timeout"
	// ErrCodeBrowserLaunch indicates the authorization URL could not be opened in a browser.
	ErrCodeBrowserLaunch ErrorCode = "browser_launch_failed"
	// ErrCodeCallbackTimeout indicates the user did not complete the login in time.
	ErrCodeCallbackTimeout ErrorCode = "callback_timeout"
	// ErrCodeStateMismatch indicates the callback echoed an unexpected state value.
	ErrCodeStateMismatch ErrorCode = "state_mismatch"
	// ErrCodeMalformedCallback indicates the callback was missing expected fields.
	ErrCodeMalformedCallback ErrorCode = "malformed_callback"
	// ErrCodeAuthorizationDenied indicates the provider redirected back with an error.
	ErrCodeAuthorizationDenied ErrorCode = "authorization_denied"
	// ErrCodeSerialization indicates a persisted value could not be decoded.
	ErrCodeSerialization ErrorCode = "serialization"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the config key or parameter that caused the error (optional)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with the given code and a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return Newf(ErrCodeNotFound, format, args...)
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError {
	return Newf(ErrCodeValidation, format, args...)
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return Newf(ErrCodeInternal, format, args...)
}

// Serialization reports a persisted value for field that could not be decoded.
func Serialization(field string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeSerialization,
		Message: fmt.Sprintf("decode %s", field),
		Cause:   cause,
		Field:   field,
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool {
	return isCode(err, ErrCodeTimeout)
}

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool {
	return isCode(err, ErrCodeCanceled)
}

// IsLockTimeout checks if an error is a LockTimeout error.
func IsLockTimeout(err error) bool {
	return isCode(err, ErrCodeLockTimeout)
}

// IsBrowserLaunch checks if an error is a BrowserLaunch error.
func IsBrowserLaunch(err error) bool {
	return isCode(err, ErrCodeBrowserLaunch)
}

// IsCallbackTimeout checks if an error is a CallbackTimeout error.
func IsCallbackTimeout(err error) bool {
	return isCode(err, ErrCodeCallbackTimeout)
}

// IsStateMismatch checks if an error is a StateMismatch error.
func IsStateMismatch(err error) bool {
	return isCode(err, ErrCodeStateMismatch)
}

// IsMalformedCallback checks if an error is a MalformedCallback error.
func IsMalformedCallback(err error) bool {
	return isCode(err, ErrCodeMalformedCallback)
}

// IsAuthorizationDenied checks if an error is an AuthorizationDenied error.
func IsAuthorizationDenied(err error) bool {
	return isCode(err, ErrCodeAuthorizationDenied)
}

// IsSerialization checks if an error is a Serialization error.
func IsSerialization(err error) bool {
	return isCode(err, ErrCodeSerialization)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
