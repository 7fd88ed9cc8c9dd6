package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnoseWithoutKey(t *testing.T) {
	_, err := NewQwenClient("").Diagnose(context.Background(), "UploadError", "log")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestDiagnose(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"qwen-max-latest",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Start the MinIO server.  "}}]}`)
	}))
	defer srv.Close()

	c := NewQwenClient("sk-test", WithBaseURL(srv.URL+"/"))
	out, err := c.Diagnose(context.Background(), "ConnectionError", "ERR connection refused")
	require.NoError(t, err)
	assert.Equal(t, "Start the MinIO server.", out)

	assert.Equal(t, DefaultModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Contains(t, string(got.Messages[1].Content), "ERR connection refused")
}

func TestDiagnoseServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	_, err := NewQwenClient("sk-bad", WithBaseURL(srv.URL+"/")).Diagnose(context.Background(), "UploadError", "log")
	require.Error(t, err)
}
