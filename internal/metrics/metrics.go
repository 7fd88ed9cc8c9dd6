// Package metrics records per-run upload metrics and writes them in the
// node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors for a single run
type Recorder struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	uploadedBytes prometheus.Gauge
	phaseDuration *prometheus.HistogramVec
	verifyMatch   prometheus.Gauge
	lastRun       prometheus.Gauge
}

// NewRecorder creates a recorder backed by its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "s3upload_runs_total",
				Help: "Upload runs by outcome kind.",
			},
			[]string{"provider", "outcome"},
		),
		uploadedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "s3upload_uploaded_bytes",
			Help: "Bytes sent in the last successful upload.",
		}),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "s3upload_phase_duration_seconds",
				Help:    "Duration of each phase of a run.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		verifyMatch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "s3upload_verification_match",
			Help: "1 when the local MD5 matched the ETag, 0 otherwise.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "s3upload_last_run_timestamp_seconds",
			Help: "Unix time the last run ended.",
		}),
	}

	r.registry.MustRegister(r.runs, r.uploadedBytes, r.phaseDuration, r.verifyMatch, r.lastRun)
	r.registry.MustRegister(prometheus.NewBuildInfoCollector())
	return r
}

// ObserveOutcome counts a finished upload attempt
func (r *Recorder) ObserveOutcome(provider, outcome string) {
	r.runs.WithLabelValues(provider, outcome).Inc()
}

// ObserveUploaded sets the byte count of the last successful upload
func (r *Recorder) ObserveUploaded(n int64) {
	r.uploadedBytes.Set(float64(n))
}

// ObservePhase records how long a phase ("bucket_check", "upload", "verify") took
func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	r.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// ObserveVerification records whether the hashes matched
func (r *Recorder) ObserveVerification(match bool) {
	if match {
		r.verifyMatch.Set(1)
		return
	}
	r.verifyMatch.Set(0)
}

// MarkRunEnd stamps the end of the run
func (r *Recorder) MarkRunEnd(t time.Time) {
	r.lastRun.Set(float64(t.Unix()))
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile atomically writes all metrics to path
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
