package minio

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s3-upload-helper/internal/infra/storage"
	"s3-upload-helper/internal/infra/storage/storagetest"
)

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c, err := NewClient(endpoint, "minioadmin", "minioadmin", false, WithMaxRetries(1), WithRegion("us-east-1"))
	require.NoError(t, err)
	return c
}

func TestBucketExists(t *testing.T) {
	srv := storagetest.NewServer(t, "data")
	c := newTestClient(t, srv.Endpoint())

	ok, err := c.BucketExists(context.Background(), "data")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.BucketExists(context.Background(), "missing-bucket")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutObjectReturnsETag(t *testing.T) {
	srv := storagetest.NewServer(t, "data")
	c := newTestClient(t, srv.Endpoint())

	body := []byte("hello world")
	res, err := c.PutObject(context.Background(), storage.PutInput{
		Bucket:      "data",
		Key:         "report.txt",
		Body:        bytes.NewReader(body),
		Size:        int64(len(body)),
		ContentType: "text/plain",
	})
	require.NoError(t, err)

	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", res.ETag)
	assert.Equal(t, 1, srv.PutCount())

	stored, ok := srv.Object("data", "report.txt")
	require.True(t, ok)
	assert.Equal(t, body, stored)
}

func TestInvalidEndpoint(t *testing.T) {
	_, err := NewClient("localhost:9000/some/path", "k", "s", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))
}

func TestInvalidBucketName(t *testing.T) {
	srv := storagetest.NewServer(t, "data")
	c := newTestClient(t, srv.Endpoint())

	_, err := c.BucketExists(context.Background(), "Bad_Bucket!")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))

	_, err = c.PutObject(context.Background(), storage.PutInput{Bucket: "Bad_Bucket!", Key: "k", Body: bytes.NewReader([]byte("x")), Size: 1})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))
	assert.Equal(t, 0, srv.PutCount())
}

func TestUnreachableEndpoint(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	c := newTestClient(t, addr)
	_, err = c.BucketExists(context.Background(), "data")
	require.Error(t, err)
	assert.True(t, storage.IsConnectionError(err))
}
