// Package apperr provides coded errors shared by the pipeline stages.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies a failure class of the notes pipeline.
type Code string

const (
	CodeTranscriptionEmpty     Code = "TRANSCRIPTION_EMPTY"
	CodeTranscriptionProcess   Code = "TRANSCRIPTION_PROCESS_FAILURE"
	CodeProviderUnavailable    Code = "PROVIDER_UNAVAILABLE"
	CodeCredentialMissing      Code = "CREDENTIAL_MISSING"
	CodeConfirmationRequired   Code = "CONFIRMATION_REQUIRED"
	CodeChunkProcessingFailure Code = "CHUNK_PROCESSING_FAILURE"
	CodeAllChunksFailed        Code = "ALL_CHUNKS_FAILED"
	CodeConfigInvalid          Code = "CONFIG_INVALID"
)

// AppError is an error with a stable code and an optional cause.
type AppError struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another AppError by code so sentinels work with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Cause == nil && t.Message == ""
}

// New creates an AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates an AppError with a formatted message.
func Newf(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps err with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// Sentinel returns a bare error for code, usable as an errors.Is target.
func Sentinel(code Code) error {
	return &AppError{Code: code}
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries code anywhere in its chain.
func IsCode(err error, code Code) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}
