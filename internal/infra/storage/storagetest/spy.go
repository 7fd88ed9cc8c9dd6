package storagetest

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sync"

	"s3-upload-helper/internal/infra/storage"
)

// Spy is an in-memory storage.Backend that records every call
type Spy struct {
	mu sync.Mutex

	Buckets map[string]bool
	Objects map[string][]byte

	// Injected failures
	BucketExistsErr error
	PutErr          error

	// ETagFunc overrides the reported ETag when set
	ETagFunc func(body []byte) string

	BucketExistsCalls int
	PutCalls          int
	LastPut           storage.PutInput
}

// NewSpy returns a spy holding the given buckets
func NewSpy(buckets ...string) *Spy {
	s := &Spy{Buckets: map[string]bool{}, Objects: map[string][]byte{}}
	for _, b := range buckets {
		s.Buckets[b] = true
	}
	return s
}

// Name implements storage.Backend
func (s *Spy) Name() string {
	return "spy"
}

// BucketExists implements storage.Backend
func (s *Spy) BucketExists(ctx context.Context, bucket string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BucketExistsCalls++
	if s.BucketExistsErr != nil {
		return false, s.BucketExistsErr
	}
	return s.Buckets[bucket], nil
}

// PutObject implements storage.Backend
func (s *Spy) PutObject(ctx context.Context, input storage.PutInput) (storage.PutResult, error) {
	s.mu.Lock()
	s.PutCalls++
	s.LastPut = input
	putErr := s.PutErr
	s.mu.Unlock()

	if putErr != nil {
		return storage.PutResult{}, putErr
	}

	body, err := io.ReadAll(input.Body)
	if err != nil {
		return storage.PutResult{}, err
	}

	s.mu.Lock()
	s.Objects[input.Bucket+"/"+input.Key] = body
	s.mu.Unlock()

	etag := ""
	if s.ETagFunc != nil {
		etag = s.ETagFunc(body)
	} else {
		sum := md5.Sum(body)
		etag = hex.EncodeToString(sum[:])
	}
	return storage.PutResult{
		Bucket: input.Bucket,
		Key:    input.Key,
		ETag:   etag,
		Size:   int64(len(body)),
	}, nil
}
