package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with cause",
			err:  NewConnectionError(stderrors.New("dial tcp: connection refused")),
			want: "[ConnectionError] Connection error: dial tcp: connection refused",
		},
		{
			name: "without cause",
			err:  NewBucketMissingError("missing-bucket"),
			want: "[BucketMissing] Bucket missing-bucket does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestTypeOfThroughWrapping(t *testing.T) {
	inner := NewFileNotFoundError("report.txt", fs.ErrNotExist)
	wrapped := fmt.Errorf("upload: %w", inner)

	assert.Equal(t, ErrorTypeFileNotFound, TypeOf(wrapped))
	assert.True(t, Is(wrapped, ErrorTypeFileNotFound))
	assert.False(t, Is(wrapped, ErrorTypeUpload))
	assert.True(t, stderrors.Is(wrapped, fs.ErrNotExist))
}

func TestTypeOfPlainError(t *testing.T) {
	assert.Equal(t, ErrorType(""), TypeOf(stderrors.New("boom")))
	assert.False(t, Is(nil, ErrorTypeUpload))
}
