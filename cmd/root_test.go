package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s3-upload-helper/internal/config"
	"s3-upload-helper/internal/infra/ai"
	"s3-upload-helper/internal/infra/storage"
	"s3-upload-helper/internal/infra/storage/storagetest"
	"s3-upload-helper/internal/pkg/lang"
	"s3-upload-helper/internal/service"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	lang.Set("en")
	os.Exit(m.Run())
}

type harness struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
	spy    *storagetest.Spy
	dir    string
}

func newHarness(t *testing.T, buckets ...string) *harness {
	t.Helper()
	return &harness{spy: storagetest.NewSpy(buckets...), dir: t.TempDir()}
}

func (h *harness) runner() *runner {
	return &runner{
		stdout: &h.stdout,
		stderr: &h.stderr,
		newBackend: func(context.Context, config.UploadConfig) (storage.Backend, error) {
			return h.spy, nil
		},
	}
}

func (h *harness) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (h *harness) logFile() string {
	return filepath.Join(h.dir, "s3.log")
}

func (h *harness) args(extra ...string) []string {
	return append([]string{"--lang", "en", "--log-file", h.logFile()}, extra...)
}

func TestMissingRequiredFlags(t *testing.T) {
	h := newHarness(t)
	code := run(context.Background(), h.args(), h.runner())

	assert.Equal(t, service.ExitUsage, code)
	assert.Contains(t, h.stderr.String(), "required flag(s) not set: --bucket, --s3path, --file")
	assert.Equal(t, 0, h.spy.BucketExistsCalls)
	assert.NoFileExists(t, h.logFile())
}

func TestUnknownFlag(t *testing.T) {
	h := newHarness(t)
	code := run(context.Background(), []string{"--no-such-flag"}, h.runner())
	assert.Equal(t, service.ExitUsage, code)
	assert.Contains(t, h.stderr.String(), "no-such-flag")
}

func TestStrayArgument(t *testing.T) {
	h := newHarness(t)
	code := run(context.Background(), []string{"upload-now"}, h.runner())
	assert.Equal(t, service.ExitUsage, code)
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	code := run(context.Background(), []string{"version"}, h.runner())
	assert.Equal(t, service.ExitOK, code)
	assert.Contains(t, h.stdout.String(), "S3 Upload Helper v")
}

func TestUploadSuccess(t *testing.T) {
	h := newHarness(t, "data")
	path := h.file(t, "report.txt", "hello world")

	code := run(context.Background(), h.args("--bucket", "data", "--s3path", "report.txt", "-f", path), h.runner())
	require.Equal(t, service.ExitOK, code, h.stdout.String()+h.stderr.String())

	out := h.stdout.String()
	assert.Contains(t, out, "File MD5 hash is valid")
	assert.Contains(t, out, "[DONE]")
	assert.NotContains(t, out, "[ERROR]")
	assert.Contains(t, out, "5eb63bbbe01eeed093cb22bb8f5acdc3")

	logData, err := os.ReadFile(h.logFile())
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Run started at")
	assert.Contains(t, string(logData), "File MD5 hash is valid")
	assert.Contains(t, string(logData), "Run ended at")
	assert.Equal(t, 1, h.spy.PutCalls)
}

func TestUploadBucketMissing(t *testing.T) {
	h := newHarness(t, "data")
	path := h.file(t, "report.txt", "hello world")

	code := run(context.Background(), h.args("--bucket", "missing-bucket", "--s3path", "report.txt", "--file", path), h.runner())
	assert.Equal(t, service.ExitUploadFailed, code)
	assert.Equal(t, 0, h.spy.PutCalls)
	assert.Contains(t, h.stdout.String(), "Bucket missing-bucket does not exist")
	assert.Contains(t, h.stdout.String(), "Failed to upload the file")
	assert.Contains(t, h.stdout.String(), "[ERROR]")
}

func TestUploadVerificationMismatch(t *testing.T) {
	h := newHarness(t, "data")
	h.spy.ETagFunc = func([]byte) string { return "ffffffffffffffffffffffffffffffff" }
	path := h.file(t, "report.txt", "hello world")

	code := run(context.Background(), h.args("--bucket", "data", "--s3path", "report.txt", "-f", path), h.runner())
	assert.Equal(t, service.ExitVerifyFailed, code)
	assert.Contains(t, h.stdout.String(), "File MD5 hash is not valid")
}

func TestQuietKeepsStdoutToWarnings(t *testing.T) {
	h := newHarness(t, "data")
	path := h.file(t, "report.txt", "hello world")

	code := run(context.Background(), h.args("-q", "--bucket", "data", "--s3path", "report.txt", "-f", path), h.runner())
	require.Equal(t, service.ExitOK, code)
	assert.Empty(t, h.stdout.String())

	logData, err := os.ReadFile(h.logFile())
	require.NoError(t, err)
	assert.Contains(t, string(logData), "File MD5 hash is valid")
}

func TestInvalidIOLimit(t *testing.T) {
	h := newHarness(t, "data")
	path := h.file(t, "report.txt", "hello world")

	code := run(context.Background(), h.args("--bucket", "data", "--s3path", "k", "-f", path, "--io-limit", "fast"), h.runner())
	assert.Equal(t, service.ExitUsage, code)
	assert.Contains(t, h.stderr.String(), "--io-limit")
}

func TestAIDiagnoseOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"1","object":"chat.completion","created":1,"model":"qwen-max-latest",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Create the bucket first."}}]}`)
	}))
	defer srv.Close()

	h := newHarness(t)
	r := h.runner()
	r.aiOptions = []ai.Option{ai.WithBaseURL(srv.URL + "/")}
	path := h.file(t, "report.txt", "hello world")

	code := run(context.Background(), h.args("--bucket", "data", "--s3path", "k", "-f", path,
		"--ai-diagnose", "--ai-api-key", "sk-test"), r)
	assert.Equal(t, service.ExitUploadFailed, code)
	assert.Contains(t, h.stdout.String(), "[AI] Diagnosis:")
	assert.Contains(t, h.stdout.String(), "Create the bucket first.")
}

func TestAIDiagnoseWithoutKey(t *testing.T) {
	t.Setenv("DASHSCOPE_API_KEY", "")
	h := newHarness(t)
	path := h.file(t, "report.txt", "hello world")

	code := run(context.Background(), h.args("--bucket", "data", "--s3path", "k", "-f", path, "--ai-diagnose"), h.runner())
	assert.Equal(t, service.ExitUploadFailed, code)
	assert.Contains(t, h.stdout.String(), "[AI] Skipped")
}

func TestUploadAgainstFakeEndpoint(t *testing.T) {
	srv := storagetest.NewServer(t, "data")
	h := newHarness(t)
	r := h.runner()
	r.newBackend = nil
	path := h.file(t, "report.txt", "hello world")

	code := run(context.Background(), h.args("--s3url", "http://"+srv.Endpoint(),
		"--bucket", "data", "--s3path", "/reports/report.txt", "-f", path), r)
	require.Equal(t, service.ExitOK, code, h.stdout.String())

	stored, ok := srv.Object("data", "reports/report.txt")
	require.True(t, ok)
	assert.Equal(t, "hello world", string(stored))
}
