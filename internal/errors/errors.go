package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents application-specific error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
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

// Wrap wraps an existing error with AppError
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// CodeOf returns the code of the outermost AppError in the chain, or "" if none
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether any AppError in the chain carries the given code
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// Common error codes
const (
	CodeInternal      = "INTERNAL_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidArg    = "INVALID_ARGUMENT"
	CodeExternal      = "EXTERNAL_ERROR"
	CodeConflict      = "CONFLICT"
	CodeDependency    = "DEPENDENCY_ERROR"
	CodeConfig        = "CONFIG_ERROR"
	CodeDiscovery     = "DISCOVERY_FAILED"
	CodeAcquisition   = "ACQUISITION_FAILED"
	CodeTranscription = "TRANSCRIPTION_FAILED"
	CodePersistence   = "PERSISTENCE_FAILED"
	CodeStorage       = "STORAGE_ERROR"
)
