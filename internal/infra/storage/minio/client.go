package minio

import (
	"context"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"s3-upload-helper/internal/infra/storage"
)

// maxSinglePutSize is the largest object S3 accepts in one PUT (5 GiB)
const maxSinglePutSize = 5 * 1024 * 1024 * 1024

// Client implements storage.Backend with minio-go
type Client struct {
	client *minio.Client
}

// Option configures the underlying minio client
type Option func(*minio.Options)

// WithMaxRetries caps the client's own retry loop
func WithMaxRetries(n int) Option {
	return func(o *minio.Options) {
		o.MaxRetries = n
	}
}

// WithRegion skips the bucket location lookup by pinning the region
func WithRegion(region string) Option {
	return func(o *minio.Options) {
		o.Region = region
	}
}

// WithTransport overrides the HTTP transport
func WithTransport(rt http.RoundTripper) Option {
	return func(o *minio.Options) {
		o.Transport = rt
	}
}

// NewClient creates a client for endpoint (host:port, no scheme).
// Construction does not touch the network.
func NewClient(endpoint, key, secret string, useSSL bool, opts ...Option) (*Client, error) {
	options := &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	}
	for _, opt := range opts {
		opt(options)
	}

	c, err := minio.New(endpoint, options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	return &Client{client: c}, nil
}

// Name implements storage.Backend
func (c *Client) Name() string {
	return "minio"
}

// BucketExists implements storage.Backend
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if err := storage.CheckBucketName(bucket); err != nil {
		return false, err
	}
	ok, err := c.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, translate(err)
	}
	return ok, nil
}

// PutObject implements storage.Backend. Multipart is disabled so the ETag
// stays the MD5 of the object bytes.
func (c *Client) PutObject(ctx context.Context, input storage.PutInput) (storage.PutResult, error) {
	if err := storage.CheckPutInput(input); err != nil {
		return storage.PutResult{}, err
	}
	if input.Size > maxSinglePutSize {
		return storage.PutResult{}, fmt.Errorf("%w: %d bytes exceeds the single PUT limit", storage.ErrInvalidInput, input.Size)
	}

	info, err := c.client.PutObject(ctx, input.Bucket, input.Key, input.Body, input.Size, minio.PutObjectOptions{
		ContentType:      input.ContentType,
		DisableMultipart: true,
	})
	if err != nil {
		return storage.PutResult{}, translate(err)
	}

	return storage.PutResult{
		Bucket: info.Bucket,
		Key:    info.Key,
		ETag:   info.ETag,
		Size:   info.Size,
	}, nil
}

// translate marks client-side validation failures as storage.ErrInvalidInput
func translate(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "InvalidBucketName", "XMinioInvalidObjectName", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	return err
}
