package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsConnectionError(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("AccessDenied"), false},
		{"invalid input", fmt.Errorf("%w: bad bucket", ErrInvalidInput), false},
		{"op error", refused, true},
		{"url error", &url.Error{Op: "Head", URL: "http://127.0.0.1:1/data", Err: refused}, true},
		{"wrapped", fmt.Errorf("head bucket: %w", refused), true},
		{"dns", &net.DNSError{Err: "no such host", Name: "minio.invalid"}, true},
		{"deadline", context.DeadlineExceeded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConnectionError(tt.err))
		})
	}
}

func TestCheckPutInput(t *testing.T) {
	tests := []struct {
		name    string
		input   PutInput
		wantErr bool
	}{
		{"valid", PutInput{Bucket: "data", Key: "reports/report.txt"}, false},
		{"invalid characters", PutInput{Bucket: "Bad_Bucket!", Key: "k"}, true},
		{"too short", PutInput{Bucket: "ab", Key: "k"}, true},
		{"empty bucket", PutInput{Bucket: "", Key: "k"}, true},
		{"empty key", PutInput{Bucket: "data", Key: " "}, true},
		{"non utf-8 key", PutInput{Bucket: "data", Key: "\xff\xfe"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPutInput(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.False(t, IsConnectionError(err))
		})
	}
}
