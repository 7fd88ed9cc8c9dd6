package oss

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"s3-upload-helper/internal/infra/storage"
)

// Client implements storage.Backend for Alibaba Cloud OSS and other
// endpoints speaking the OSS protocol
type Client struct {
	client *oss.Client
}

// NewClient creates an OSS client for endpoint (host[:port], no scheme)
func NewClient(endpoint, accessKey, secretKey string) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" || strings.Contains(endpoint, "/") {
		return nil, fmt.Errorf("%w: endpoint %q must be host[:port]", storage.ErrInvalidInput, endpoint)
	}
	client, err := oss.New("http://"+endpoint, accessKey, secretKey, oss.Timeout(10, 120))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	return &Client{client: client}, nil
}

// Name implements storage.Backend
func (c *Client) Name() string {
	return "oss"
}

// BucketExists implements storage.Backend
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := storage.CheckBucketName(bucket); err != nil {
		return false, err
	}
	ok, err := c.client.IsBucketExist(bucket)
	if err != nil {
		return false, translate(err)
	}
	return ok, nil
}

// PutObject implements storage.Backend. OSS does not return the ETag in a
// form the SDK exposes for simple uploads, so it is read back with a HEAD.
func (c *Client) PutObject(ctx context.Context, input storage.PutInput) (storage.PutResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.PutResult{}, err
	}
	if err := storage.CheckPutInput(input); err != nil {
		return storage.PutResult{}, err
	}
	bucket, err := c.client.Bucket(input.Bucket)
	if err != nil {
		return storage.PutResult{}, translate(err)
	}

	listener := &failureListener{}
	options := []oss.Option{
		oss.ContentLength(input.Size),
		oss.Progress(listener),
	}
	if input.ContentType != "" {
		options = append(options, oss.ContentType(input.ContentType))
	}

	if err := bucket.PutObject(input.Key, input.Body, options...); err != nil {
		if listener.failed {
			return storage.PutResult{}, fmt.Errorf("transfer failed after %d bytes: %w", listener.consumed, translate(err))
		}
		return storage.PutResult{}, translate(err)
	}

	meta, err := bucket.GetObjectMeta(input.Key)
	if err != nil {
		return storage.PutResult{}, translate(err)
	}

	return storage.PutResult{
		Bucket: input.Bucket,
		Key:    input.Key,
		ETag:   strings.Trim(meta.Get(oss.HTTPHeaderEtag), `"`),
		Size:   input.Size,
	}, nil
}

// failureListener counts bytes acknowledged before a failed transfer
type failureListener struct {
	consumed int64
	failed   bool
}

// ProgressChanged is called when upload progress changes
func (l *failureListener) ProgressChanged(event *oss.ProgressEvent) {
	switch event.EventType {
	case oss.TransferDataEvent, oss.TransferCompletedEvent:
		l.consumed = event.ConsumedBytes
	case oss.TransferFailedEvent:
		l.consumed = event.ConsumedBytes
		l.failed = true
	}
}

func translate(err error) error {
	var srvErr oss.ServiceError
	if errors.As(err, &srvErr) {
		switch srvErr.Code {
		case "InvalidBucketName", "InvalidObjectName", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
	}
	return err
}
