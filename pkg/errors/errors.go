package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrCanceled     ErrorCode = "CANCELED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Library scanning errors. Both abort a run before any selection.
	ErrNoLibraryFound ErrorCode = "NO_LIBRARY_FOUND"
	ErrNoItemsFound   ErrorCode = "NO_ITEMS_FOUND"
	ErrManifestParse  ErrorCode = "MANIFEST_PARSE"

	// Per-item errors. None of these abort the batch.
	ErrNotResolvable         ErrorCode = "NOT_RESOLVABLE"
	ErrDirectoryNotFound     ErrorCode = "DIRECTORY_NOT_FOUND"
	ErrLinkStrategyExhausted ErrorCode = "LINK_STRATEGY_EXHAUSTED"
	ErrVerificationFailed    ErrorCode = "VERIFICATION_FAILED"

	// ErrIncomplete is returned by commands whose report has rows that are
	// neither linked nor planned.
	ErrIncomplete ErrorCode = "INCOMPLETE"

	// Backup errors abort the mutating run.
	ErrBackupFailed ErrorCode = "BACKUP_FAILED"

	// Compatibility runtime errors
	ErrRuntimeUnavailable ErrorCode = "RUNTIME_UNAVAILABLE"
	ErrRuntimeExec        ErrorCode = "RUNTIME_EXEC"

	// FileSystem errors
	ErrFileNotFound  ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
)

// GamelinkError represents a structured error with code and details
type GamelinkError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *GamelinkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *GamelinkError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *GamelinkError) Is(target error) bool {
	var targetErr *GamelinkError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new GamelinkError with the given code and message
func New(code ErrorCode, message string) *GamelinkError {
	return &GamelinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new GamelinkError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *GamelinkError {
	return &GamelinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a GamelinkError
func Wrap(err error, code ErrorCode, message string) *GamelinkError {
	if err == nil {
		return nil
	}
	return &GamelinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *GamelinkError {
	if err == nil {
		return nil
	}
	return &GamelinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *GamelinkError) WithDetail(key string, value interface{}) *GamelinkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *GamelinkError) WithDetails(details map[string]interface{}) *GamelinkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var glErr *GamelinkError
	if errors.As(err, &glErr) {
		return glErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a GamelinkError
func GetErrorCode(err error) ErrorCode {
	var glErr *GamelinkError
	if errors.As(err, &glErr) {
		return glErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a GamelinkError
func GetErrorDetails(err error) map[string]interface{} {
	var glErr *GamelinkError
	if errors.As(err, &glErr) {
		return glErr.Details
	}
	return nil
}

// IsFatal reports whether the error aborts a whole run rather than one item.
func IsFatal(err error) bool {
	switch GetErrorCode(err) {
	case ErrNoLibraryFound, ErrNoItemsFound, ErrBackupFailed, ErrConfigLoad, ErrConfigParse, ErrConfigValid:
		return true
	}
	return false
}
