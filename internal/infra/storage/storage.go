package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"

	"github.com/minio/minio-go/v7/pkg/s3utils"
)

// Backend is a session with an S3-compatible object store
type Backend interface {
	// Name identifies the client library, e.g. "minio"
	Name() string

	// BucketExists reports whether the bucket exists (HEAD Bucket)
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// PutObject performs a single PUT of the reader's content
	PutObject(ctx context.Context, input PutInput) (PutResult, error)
}

// PutInput describes one object upload
type PutInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// PutResult is what the store reports after a successful PUT
type PutResult struct {
	Bucket string
	Key    string
	ETag   string
	Size   int64
}

// ErrInvalidInput marks errors caused by malformed names or credentials
// rather than by the store or the network.
var ErrInvalidInput = errors.New("storage: invalid input")

// CheckBucketName rejects bucket names no S3-compatible store accepts,
// before any request is sent
func CheckBucketName(bucket string) error {
	if err := s3utils.CheckValidBucketName(bucket); err != nil {
		return fmt.Errorf("%w: bucket %q: %v", ErrInvalidInput, bucket, err)
	}
	return nil
}

// CheckObjectName rejects empty or non UTF-8 object keys
func CheckObjectName(key string) error {
	if err := s3utils.CheckValidObjectName(key); err != nil {
		return fmt.Errorf("%w: object %q: %v", ErrInvalidInput, key, err)
	}
	return nil
}

// CheckPutInput validates the bucket and key of an upload
func CheckPutInput(input PutInput) error {
	if err := CheckBucketName(input.Bucket); err != nil {
		return err
	}
	return CheckObjectName(input.Key)
}

// IsConnectionError reports whether err is a transport-level failure
// reaching the storage endpoint.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
