package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Storage session errors
	ErrorTypeClientInit ErrorType = "ClientInitError"
	ErrorTypeConnection ErrorType = "ConnectionError"

	// Upload related errors
	ErrorTypeBucketMissing ErrorType = "BucketMissing"
	ErrorTypeUpload        ErrorType = "UploadError"
	ErrorTypeFileNotFound  ErrorType = "FileNotFound"

	// Verification is reported, never returned as a failed upload
	ErrorTypeVerificationMismatch ErrorType = "VerificationMismatch"

	// Configuration errors (missing or invalid flags)
	ErrorTypeConfig ErrorType = "Configuration"
)

// AppError represents an application error with type information
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError creates a new AppError
func NewError(errType ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the ErrorType carried by err, or "" if err is not an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// Is reports whether err is an AppError of the given type.
func Is(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

// Convenience functions for creating specific error types

// NewClientInitError creates a storage client construction error
func NewClientInitError(err error) *AppError {
	return NewError(ErrorTypeClientInit, "Client instance error", err)
}

// NewConnectionError creates a transport-level error
func NewConnectionError(err error) *AppError {
	return NewError(ErrorTypeConnection, "Connection error", err)
}

// NewBucketMissingError creates an error for a bucket that does not exist
func NewBucketMissingError(bucket string) *AppError {
	return NewError(ErrorTypeBucketMissing, fmt.Sprintf("Bucket %s does not exist", bucket), nil)
}

// NewUploadError creates an unclassified upload error
func NewUploadError(err error) *AppError {
	return NewError(ErrorTypeUpload, "Upload failed", err)
}

// NewFileNotFoundError creates an error for a missing local file
func NewFileNotFoundError(path string, err error) *AppError {
	return NewError(ErrorTypeFileNotFound, fmt.Sprintf("File %s not found", path), err)
}

// NewVerificationMismatchError creates a digest mismatch error
func NewVerificationMismatchError(local, remote string) *AppError {
	return NewError(ErrorTypeVerificationMismatch, fmt.Sprintf("local MD5 %s does not match remote ETag %s", local, remote), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, err error) *AppError {
	return NewError(ErrorTypeConfig, message, err)
}
