package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"s3-upload-helper/internal/infra/storage"
)

// API is the subset of the S3 client used here
type API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client implements storage.Backend with the AWS SDK
type Client struct {
	api API
}

// NewClient builds a path-style client for endpoint (host:port, no scheme).
// Requests are sent over plain HTTP.
func NewClient(ctx context.Context, endpoint, region, accessKey, secretKey string) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" || strings.Contains(endpoint, "/") {
		return nil, fmt.Errorf("%w: endpoint %q must be host[:port]", storage.ErrInvalidInput, endpoint)
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load SDK config: %v", storage.ErrInvalidInput, err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("http://" + endpoint)
		o.UsePathStyle = true // Required for MinIO
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return NewFromAPI(client), nil
}

// NewFromAPI wraps an existing S3 API implementation
func NewFromAPI(api API) *Client {
	return &Client{api: api}
}

// Name implements storage.Backend
func (c *Client) Name() string {
	return "s3"
}

// BucketExists implements storage.Backend
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if err := storage.CheckBucketName(bucket); err != nil {
		return false, err
	}
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return true, nil
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	if statusCode(err) == http.StatusNotFound {
		return false, nil
	}
	return false, translate(err)
}

// PutObject implements storage.Backend. The body is streamed with an
// unsigned payload so it does not have to be seekable over plain HTTP.
func (c *Client) PutObject(ctx context.Context, input storage.PutInput) (storage.PutResult, error) {
	if err := storage.CheckPutInput(input); err != nil {
		return storage.PutResult{}, err
	}
	params := &s3.PutObjectInput{
		Bucket:        aws.String(input.Bucket),
		Key:           aws.String(input.Key),
		Body:          input.Body,
		ContentLength: aws.Int64(input.Size),
	}
	if input.ContentType != "" {
		params.ContentType = aws.String(input.ContentType)
	}

	out, err := c.api.PutObject(ctx, params, s3.WithAPIOptions(v4.SwapComputePayloadSHA256ForUnsignedPayloadMiddleware))
	if err != nil {
		return storage.PutResult{}, translate(err)
	}

	return storage.PutResult{
		Bucket: input.Bucket,
		Key:    input.Key,
		ETag:   strings.Trim(aws.ToString(out.ETag), `"`),
		Size:   input.Size,
	}, nil
}

// translate marks request validation and credential failures as
// storage.ErrInvalidInput and leaves everything else untouched
func translate(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidBucketName", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
	}
	var paramErr smithy.InvalidParamsError
	if errors.As(err, &paramErr) {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	return err
}

// statusCode extracts the HTTP status of a failed call, or 0
func statusCode(err error) int {
	var re interface{ HTTPStatusCode() int }
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}
