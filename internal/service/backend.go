package service

import (
	"context"
	"fmt"

	"s3-upload-helper/internal/config"
	"s3-upload-helper/internal/infra/storage"
	"s3-upload-helper/internal/infra/storage/minio"
	"s3-upload-helper/internal/infra/storage/oss"
	"s3-upload-helper/internal/infra/storage/s3"
)

// BackendFactory opens a storage session for a resolved configuration
type BackendFactory func(ctx context.Context, cfg config.UploadConfig) (storage.Backend, error)

// NewBackend picks the client library named by cfg.Provider. Transport
// encryption is always disabled.
func NewBackend(ctx context.Context, cfg config.UploadConfig) (storage.Backend, error) {
	var (
		backend storage.Backend
		err     error
	)
	switch cfg.Provider {
	case config.ProviderMinIO, "":
		backend, err = minio.NewClient(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, false, minio.WithRegion(cfg.Region))
	case config.ProviderS3:
		backend, err = s3.NewClient(ctx, cfg.Endpoint, cfg.Region, cfg.AccessKey, cfg.SecretKey)
	case config.ProviderOSS:
		backend, err = oss.NewClient(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	default:
		err = fmt.Errorf("%w: unknown provider %q", storage.ErrInvalidInput, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return backend, nil
}
