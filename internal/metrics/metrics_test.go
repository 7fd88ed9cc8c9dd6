package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCollects(t *testing.T) {
	r := NewRecorder()
	r.ObserveOutcome("minio", "Ok")
	r.ObserveOutcome("minio", "Ok")
	r.ObserveOutcome("minio", "BucketMissing")
	r.ObserveUploaded(11)
	r.ObserveVerification(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues("minio", "Ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("minio", "BucketMissing")))
	assert.Equal(t, 11.0, testutil.ToFloat64(r.uploadedBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.verifyMatch))

	r.ObserveVerification(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.verifyMatch))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveOutcome("s3", "UploadError")
	r.ObservePhase("upload", 250*time.Millisecond)
	r.MarkRunEnd(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "s3upload.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `s3upload_runs_total{outcome="UploadError",provider="s3"} 1`)
	assert.Contains(t, out, `s3upload_phase_duration_seconds_count{phase="upload"} 1`)
	assert.Contains(t, out, "s3upload_last_run_timestamp_seconds 1.7e+09")
}
