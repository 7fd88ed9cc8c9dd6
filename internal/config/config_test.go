package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s3-upload-helper/internal/pkg/errors"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"localhost:9000", "localhost:9000"},
		{"http://localhost:9000", "localhost:9000"},
		{"https://s3.example.com:443", "s3.example.com:443"},
		{"HTTP://minio:9000/", "minio:9000"},
		{"  minio.internal:9000  ", "minio.internal:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEndpoint(tt.in))
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(&Flags{
		Bucket:     "data",
		RemotePath: "/report.txt",
		LocalFile:  "report.txt",
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultAccessKey, cfg.AccessKey)
	assert.Equal(t, DefaultSecretKey, cfg.SecretKey)
	assert.Equal(t, ProviderMinIO, cfg.Provider)
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
	assert.Equal(t, int64(0), cfg.IOLimit)
	assert.Equal(t, "report.txt", cfg.ObjectKey())
	assert.Equal(t, "data/report.txt", cfg.Destination())
}

func TestResolveKeepsExplicitValues(t *testing.T) {
	cfg, err := Resolve(&Flags{
		Endpoint:   "https://play.min.io:9000",
		AccessKey:  "AKIA",
		SecretKey:  "secret",
		Provider:   "S3",
		Bucket:     "data",
		RemotePath: "dir/report.txt",
		LocalFile:  "report.txt",
		IOLimitStr: "10MB/s",
	})
	require.NoError(t, err)

	// the resolver keeps the raw endpoint; the upload normalizes it
	assert.Equal(t, "https://play.min.io:9000", cfg.Endpoint)
	assert.Equal(t, "AKIA", cfg.AccessKey)
	assert.Equal(t, "secret", cfg.SecretKey)
	assert.Equal(t, ProviderS3, cfg.Provider)
	assert.Equal(t, int64(10_000_000), cfg.IOLimit)
}

func TestResolveMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		flags   Flags
		missing []string
	}{
		{
			name:    "all missing",
			flags:   Flags{},
			missing: []string{"--bucket", "--s3path", "--file"},
		},
		{
			name:    "bucket only",
			flags:   Flags{RemotePath: "a", LocalFile: "b"},
			missing: []string{"--bucket"},
		},
		{
			name:    "path of only slashes",
			flags:   Flags{Bucket: "data", RemotePath: "///", LocalFile: "b"},
			missing: []string{"--s3path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := tt.flags
			_, err := Resolve(&flags)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrorTypeConfig))
			for _, name := range tt.missing {
				assert.Contains(t, err.Error(), name)
			}
		})
	}
}

func TestResolveUnknownProvider(t *testing.T) {
	_, err := Resolve(&Flags{Bucket: "b", RemotePath: "k", LocalFile: "f", Provider: "gcs"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeConfig))
}

func TestParseIOLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"-1", 0, false},
		{"0", 0, false},
		{"1KB", 1000, false},
		{"1KiB/s", 1024, false},
		{"100MB/s", 100_000_000, false},
		{"fast", 0, true},
		{"8EB/s", 8_000_000_000_000_000_000, false},
		{"10EB/s", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIOLimit(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
