package service

import (
	"fmt"

	"s3-upload-helper/internal/pkg/errors"
)

// Outcome is the result of one upload attempt: either Success carrying the
// store's ETag, or Failure carrying a typed reason. The ETag is only
// meaningful when Success reports true.
type Outcome struct {
	etag string
	err  *errors.AppError
}

// Succeeded builds a successful outcome
func Succeeded(etag string) Outcome {
	return Outcome{etag: etag}
}

// Failed builds a failed outcome. A nil err is treated as an UploadError.
func Failed(err *errors.AppError) Outcome {
	if err == nil {
		err = errors.NewUploadError(nil)
	}
	return Outcome{err: err}
}

// Success reports whether the upload completed
func (o Outcome) Success() bool {
	return o.err == nil
}

// ETag returns the identifier reported by the store, or "" on failure
func (o Outcome) ETag() string {
	return o.etag
}

// Err returns the failure, or nil on success
func (o Outcome) Err() *errors.AppError {
	return o.err
}

// Reason returns the failure kind, or "" on success
func (o Outcome) Reason() errors.ErrorType {
	if o.err == nil {
		return ""
	}
	return o.err.Type
}

// Label is the outcome name used in metrics and summaries
func (o Outcome) Label() string {
	if o.err == nil {
		return "Ok"
	}
	return string(o.err.Type)
}

func (o Outcome) String() string {
	if o.err == nil {
		return fmt.Sprintf("Success{ETag: %s}", o.etag)
	}
	return fmt.Sprintf("Failure{Reason: %s}", o.err.Type)
}
