package config

import (
	"fmt"
	"strings"

	"s3-upload-helper/internal/pkg/errors"
)

const (
	DefaultEndpoint  = "localhost:9000"
	DefaultAccessKey = "minioadmin"
	DefaultSecretKey = "minioadmin"
	DefaultProvider  = ProviderMinIO
	DefaultRegion    = "us-east-1"
	DefaultLogFile   = "s3.log"

	// DefaultChunkSize is the read size used when hashing the local file
	DefaultChunkSize = 8192
)

// Storage client implementations selectable with --provider
const (
	ProviderMinIO = "minio"
	ProviderS3    = "s3"
	ProviderOSS   = "oss"
)

// UploadConfig holds everything one upload-and-verify run needs.
// It is passed by value to the upload service and never mutated afterwards.
type UploadConfig struct {
	// Storage session
	Endpoint  string
	AccessKey string
	SecretKey string
	Provider  string
	Region    string

	// Transfer
	Bucket      string
	RemotePath  string
	LocalFile   string
	ContentType string
	IOLimit     int64 // bytes per second, 0 for unlimited
	ChunkSize   int   // hashing buffer size

	// Output
	LogFile     string
	MetricsFile string
	Quiet       bool
	Lang        string

	// AI diagnosis on failure
	AIDiagnose bool
	AIAPIKey   string
}

// SetDefaults sets default values for configuration fields
func (c *UploadConfig) SetDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.AccessKey == "" {
		c.AccessKey = DefaultAccessKey
	}
	if c.SecretKey == "" {
		c.SecretKey = DefaultSecretKey
	}
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
}

// Validate checks that the required fields are present.
// Bucket name syntax and file existence are left to the upload itself.
func (c *UploadConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "--bucket")
	}
	if strings.Trim(strings.TrimSpace(c.RemotePath), "/") == "" {
		missing = append(missing, "--s3path")
	}
	if strings.TrimSpace(c.LocalFile) == "" {
		missing = append(missing, "--file")
	}
	if len(missing) > 0 {
		return errors.NewConfigError(fmt.Sprintf("required flag(s) not set: %s", strings.Join(missing, ", ")), nil)
	}

	switch c.Provider {
	case ProviderMinIO, ProviderS3, ProviderOSS:
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown provider %q (want minio, s3 or oss)", c.Provider), nil)
	}
	return nil
}

// NormalizeEndpoint strips a leading http:// or https:// scheme and any
// trailing slash, keeping host:port. The scheme is informational only:
// connections are always made without transport encryption.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	lower := strings.ToLower(endpoint)
	for _, scheme := range []string{"http://", "https://"} {
		if strings.HasPrefix(lower, scheme) {
			endpoint = endpoint[len(scheme):]
			break
		}
	}
	return strings.TrimRight(endpoint, "/")
}

// ObjectKey returns the remote path as an object key, without leading slashes.
func (c UploadConfig) ObjectKey() string {
	return strings.TrimLeft(c.RemotePath, "/")
}

// Destination renders bucket and key the way log lines name an upload target.
func (c UploadConfig) Destination() string {
	return c.Bucket + "/" + c.ObjectKey()
}
