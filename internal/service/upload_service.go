package service

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"s3-upload-helper/internal/config"
	"s3-upload-helper/internal/infra/storage"
	"s3-upload-helper/internal/log"
	"s3-upload-helper/internal/metrics"
	"s3-upload-helper/internal/pkg/digest"
	"s3-upload-helper/internal/pkg/errors"
	"s3-upload-helper/internal/pkg/progress"
	"s3-upload-helper/internal/pkg/ratelimit"
)

// Log modules
const (
	moduleRun     = "RUN"
	moduleStorage = "STORAGE"
	moduleUpload  = "UPLOAD"
	moduleVerify  = "VERIFY"
)

// Process exit codes
const (
	ExitOK           = 0
	ExitUploadFailed = 1
	ExitUsage        = 2
	ExitVerifyFailed = 3
)

// UploadService handles the upload-and-verify workflow
type UploadService struct {
	logger     *log.LogContext
	newBackend BackendFactory
	metrics    *metrics.Recorder
	progress   io.Writer
	now        func() time.Time
}

// Option configures an UploadService
type Option func(*UploadService)

// WithBackendFactory replaces NewBackend
func WithBackendFactory(f BackendFactory) Option {
	return func(s *UploadService) { s.newBackend = f }
}

// WithMetrics records phase durations and outcomes into r
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *UploadService) { s.metrics = r }
}

// WithProgress draws a progress line on w while the file is sent
func WithProgress(w io.Writer) Option {
	return func(s *UploadService) { s.progress = w }
}

// WithClock overrides time.Now for run timestamps
func WithClock(now func() time.Time) Option {
	return func(s *UploadService) { s.now = now }
}

// NewUploadService creates a service logging through logger
func NewUploadService(logger *log.LogContext, opts ...Option) *UploadService {
	s := &UploadService{
		logger:     logger,
		newBackend: NewBackend,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report summarizes one run
type Report struct {
	Outcome      Outcome
	Uploaded     storage.PutResult
	ContentType  string
	Verification *digest.Verification
	VerifyErr    error
	Started      time.Time
	Ended        time.Time
}

// Verified reports whether the local digest matched the ETag
func (r Report) Verified() bool {
	return r.Outcome.Success() && r.VerifyErr == nil && r.Verification != nil && r.Verification.Match
}

// ExitCode maps the report to the process exit status
func (r Report) ExitCode() int {
	switch {
	case !r.Outcome.Success():
		return ExitUploadFailed
	case !r.Verified():
		return ExitVerifyFailed
	default:
		return ExitOK
	}
}

// Run performs one full cycle: upload, then verify on success. Start and end
// timestamps bracket everything else written to the log.
func (s *UploadService) Run(ctx context.Context, cfg config.UploadConfig) Report {
	report := Report{Started: s.now()}
	s.logger.WriteLog(moduleRun, "Run started at %s", report.Started.Format(time.ANSIC))

	var res transfer
	report.Outcome, res = s.upload(ctx, cfg)
	report.Uploaded = res.result
	report.ContentType = res.contentType

	if report.Outcome.Success() {
		start := time.Now()
		v, err := s.Verify(cfg, report.Outcome.ETag())
		s.observePhase("verify", start)
		report.VerifyErr = err
		if err == nil {
			report.Verification = &v
		}
	}

	report.Ended = s.now()
	s.logger.WriteLog(moduleRun, "Run ended at %s", report.Ended.Format(time.ANSIC))

	if s.metrics != nil {
		s.metrics.ObserveOutcome(cfg.Provider, report.Outcome.Label())
		if report.Outcome.Success() {
			s.metrics.ObserveUploaded(report.Uploaded.Size)
			s.metrics.ObserveVerification(report.Verified())
		}
		s.metrics.MarkRunEnd(report.Ended)
		if cfg.MetricsFile != "" {
			if err := s.metrics.WriteTextfile(cfg.MetricsFile); err != nil {
				s.logger.WriteWarn(moduleRun, "Failed to write metrics to %s: %v", cfg.MetricsFile, err)
			}
		}
	}

	return report
}

// Upload checks the bucket and sends the local file with a single PUT.
// Every failure is logged and returned as a Failure outcome.
func (s *UploadService) Upload(ctx context.Context, cfg config.UploadConfig) Outcome {
	outcome, _ := s.upload(ctx, cfg)
	return outcome
}

type transfer struct {
	result      storage.PutResult
	contentType string
}

func (s *UploadService) upload(ctx context.Context, cfg config.UploadConfig) (Outcome, transfer) {
	// 1. Normalize endpoint
	cfg.Endpoint = config.NormalizeEndpoint(cfg.Endpoint)
	key := cfg.ObjectKey()

	// 2. Open the storage session
	backend, err := s.newBackend(ctx, cfg)
	if err != nil {
		appErr := errors.NewClientInitError(err)
		if storage.IsConnectionError(err) {
			appErr = errors.NewConnectionError(err)
		}
		return s.fail(appErr), transfer{}
	}
	s.logger.WriteLog(moduleStorage, "Using %s client for %s", backend.Name(), cfg.Endpoint)

	// 3. Check the bucket, never create it
	start := time.Now()
	exists, err := backend.BucketExists(ctx, cfg.Bucket)
	s.observePhase("bucket_check", start)
	if err != nil {
		return s.fail(classify(err)), transfer{}
	}
	if !exists {
		return s.fail(errors.NewBucketMissingError(cfg.Bucket)), transfer{}
	}

	// 4. Open the local file
	f, err := os.Open(cfg.LocalFile)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return s.fail(errors.NewFileNotFoundError(cfg.LocalFile, err)), transfer{}
		}
		return s.fail(errors.NewUploadError(err)), transfer{}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return s.fail(errors.NewUploadError(err)), transfer{}
	}
	if info.IsDir() {
		return s.fail(errors.NewUploadError(stderrors.New(cfg.LocalFile + " is a directory"))), transfer{}
	}

	contentType := cfg.ContentType
	if contentType == "" {
		contentType = detectContentType(cfg.LocalFile)
	}

	// 5. Single PUT
	var body io.Reader = ratelimit.NewReader(ctx, f, cfg.IOLimit)
	var tracker *progress.Tracker
	if s.progress != nil && !cfg.Quiet {
		tracker = progress.NewTracker(info.Size(), s.progress)
		body = progress.NewReader(body, tracker)
	}

	start = time.Now()
	res, err := backend.PutObject(ctx, storage.PutInput{
		Bucket:      cfg.Bucket,
		Key:         key,
		Body:        body,
		Size:        info.Size(),
		ContentType: contentType,
	})
	s.observePhase("upload", start)
	if tracker != nil {
		tracker.Complete()
	}
	if err != nil {
		return s.fail(classify(err)), transfer{}
	}

	s.logger.WriteLog(moduleUpload, "File %s successfully uploaded to %s", cfg.LocalFile, cfg.Destination())
	return Succeeded(res.ETag), transfer{result: res, contentType: contentType}
}

// Verify hashes the local file in chunks and compares it with etag
func (s *UploadService) Verify(cfg config.UploadConfig, etag string) (digest.Verification, error) {
	v, err := digest.VerifyFile(cfg.LocalFile, etag, cfg.ChunkSize)
	if err != nil {
		s.logger.WriteError(moduleVerify, err, "Failed to compute the MD5 of %s", cfg.LocalFile)
		return v, err
	}

	if v.Match {
		s.logger.WriteLog(moduleVerify, "File MD5 hash is valid")
		return v, nil
	}

	s.logger.WriteWarn(moduleVerify, "File MD5 hash is not valid")
	if v.Multipart {
		s.logger.WriteWarn(moduleVerify, "ETag %s was produced by a multipart upload and is not the MD5 of the content", v.RemoteETag)
	} else {
		s.logger.WriteWarn(moduleVerify, "%s", errors.NewVerificationMismatchError(v.LocalMD5, v.RemoteETag).Message)
	}
	return v, nil
}

// fail logs appErr the way each failure kind is reported, then the
// generic failure line
func (s *UploadService) fail(appErr *errors.AppError) Outcome {
	switch appErr.Type {
	case errors.ErrorTypeBucketMissing:
		s.logger.WriteError(moduleStorage, nil, "%s. Create bucket before running this script", appErr.Message)
	case errors.ErrorTypeFileNotFound:
		s.logger.WriteError(moduleUpload, nil, "%s", appErr.Message)
	case errors.ErrorTypeClientInit, errors.ErrorTypeConnection:
		s.logger.WriteError(moduleStorage, appErr.Err, "%s", appErr.Message)
	default:
		s.logger.WriteError(moduleUpload, appErr.Err, "%s", appErr.Message)
	}
	s.logger.WriteLog(moduleUpload, "Failed to upload the file")
	return Failed(appErr)
}

func (s *UploadService) observePhase(phase string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObservePhase(phase, time.Since(start))
	}
}

// classify maps a storage error onto the failure taxonomy
func classify(err error) *errors.AppError {
	switch {
	case storage.IsConnectionError(err):
		return errors.NewConnectionError(err)
	case stderrors.Is(err, storage.ErrInvalidInput):
		return errors.NewClientInitError(err)
	default:
		return errors.NewUploadError(err)
	}
}

func detectContentType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}
