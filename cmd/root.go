package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gioco-play/easy-i18n/i18n"
	"github.com/spf13/cobra"

	"s3-upload-helper/internal/config"
	"s3-upload-helper/internal/infra/ai"
	"s3-upload-helper/internal/log"
	"s3-upload-helper/internal/metrics"
	"s3-upload-helper/internal/pkg/errors"
	"s3-upload-helper/internal/pkg/lang"
	"s3-upload-helper/internal/service"
)

// exitError carries a process exit code out of a command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// runner holds what a command invocation needs besides its flags
type runner struct {
	stdout io.Writer
	stderr io.Writer

	// overridable in tests
	newBackend service.BackendFactory
	aiOptions  []ai.Option
}

// newRootCmd builds the upload command with its subcommands
func newRootCmd(r *runner) *cobra.Command {
	flags := &config.Flags{}

	rootCmd := &cobra.Command{
		Use:   "s3-upload-helper",
		Short: "Upload a file to S3-compatible storage and verify its MD5",
		Long: `S3 Upload Helper uploads a single local file to an S3-compatible object store
(MinIO, AWS S3, Alibaba Cloud OSS) with one PUT, then verifies the upload by
comparing the local MD5 with the ETag returned by the store.

Examples:
  # Upload to a local MinIO
  s3-upload-helper --bucket data --s3path reports/report.txt -f ./report.txt

  # Upload through the AWS SDK with a 10MB/s cap
  s3-upload-helper --provider s3 --s3url http://s3.local:9000 --bucket data \
    --s3path report.txt -f ./report.txt --io-limit 10MB/s

  # Show version
  s3-upload-helper version`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.upload(cmd.Context(), cmd, flags)
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&flags.Endpoint, "s3url", config.DefaultEndpoint, "S3 endpoint host[:port], a leading http:// or https:// is stripped")
	f.StringVar(&flags.AccessKey, "s3key", config.DefaultAccessKey, "S3 access key")
	f.StringVar(&flags.SecretKey, "s3secret", config.DefaultSecretKey, "S3 secret key")
	f.StringVar(&flags.Bucket, "bucket", "", "target bucket (required)")
	f.StringVar(&flags.RemotePath, "s3path", "", "destination object key (required)")
	f.StringVarP(&flags.LocalFile, "file", "f", "", "local file to upload (required)")
	f.StringVar(&flags.Provider, "provider", config.DefaultProvider, "client library: minio, s3 (AWS SDK) or oss (Alibaba Cloud)")
	f.StringVar(&flags.Region, "region", config.DefaultRegion, "region used to sign requests")
	f.StringVar(&flags.ContentType, "content-type", "", "object content type, detected from the file when unset")
	f.StringVar(&flags.IOLimitStr, "io-limit", "", "upload bandwidth limit, e.g. 10MB/s (empty or -1 for unlimited)")
	f.IntVar(&flags.ChunkSize, "chunk-size", config.DefaultChunkSize, "read size in bytes used when hashing the local file")
	f.StringVar(&flags.LogFileName, "log-file", config.DefaultLogFile, "log file, appended to on every run")
	f.StringVar(&flags.MetricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	f.BoolVarP(&flags.Quiet, "quiet", "q", false, "only print warnings and errors to stdout")
	f.StringVar(&flags.LangFlag, "lang", "", "language: zh (Chinese) or en (English), auto-detect if unset")
	f.BoolVar(&flags.AIDiagnose, "ai-diagnose", false, "ask Qwen to diagnose a failed run")
	f.StringVar(&flags.AIAPIKey, "ai-api-key", "", "DashScope API key for --ai-diagnose (default $DASHSCOPE_API_KEY)")

	rootCmd.SetOut(r.stdout)
	rootCmd.SetErr(r.stderr)
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		i18n.Fprintf(r.stderr, "Invalid arguments: %v\n", err)
		fmt.Fprintln(r.stderr, c.UsageString())
		return &exitError{code: service.ExitUsage, err: err}
	})

	rootCmd.AddCommand(newVersionCmd(r))
	return rootCmd
}

func (r *runner) upload(ctx context.Context, cmd *cobra.Command, flags *config.Flags) error {
	lang.Set(flags.LangFlag)

	cfg, err := config.Resolve(flags)
	if err != nil {
		i18n.Fprintf(r.stderr, "Invalid arguments: %v\n", err)
		fmt.Fprintln(r.stderr, cmd.UsageString())
		return &exitError{code: service.ExitUsage, err: err}
	}

	terminal := isTerminal(r.stdout)
	if !cfg.Quiet {
		outputHeader(r.stdout)
	}

	lc, err := log.NewLogContext(cfg.LogFile,
		log.WithStdout(r.stdout),
		log.WithQuiet(cfg.Quiet),
		log.WithColor(terminal),
	)
	if err != nil {
		appErr := errors.NewConfigError("cannot open log file", err)
		fmt.Fprintln(r.stderr, appErr)
		return &exitError{code: service.ExitUsage, err: appErr}
	}
	defer lc.Close()

	opts := []service.Option{}
	if r.newBackend != nil {
		opts = append(opts, service.WithBackendFactory(r.newBackend))
	}
	if cfg.MetricsFile != "" {
		opts = append(opts, service.WithMetrics(metrics.NewRecorder()))
	}
	if terminal {
		opts = append(opts, service.WithProgress(r.stdout))
	}

	report := service.NewUploadService(lc, opts...).Run(ctx, *cfg)

	if !cfg.Quiet {
		printSummary(r.stdout, *cfg, report)
		i18n.Fprintf(r.stdout, "Log file: %s\n", lc.GetFileName())
	}

	code := report.ExitCode()
	if code != service.ExitOK && cfg.AIDiagnose {
		r.diagnose(ctx, *cfg, report, lc)
	}
	if code != service.ExitOK {
		return &exitError{code: code, err: failureError(report)}
	}
	return nil
}

// diagnose sends this run's log lines to Qwen and prints the answer
func (r *runner) diagnose(ctx context.Context, cfg config.UploadConfig, report service.Report, lc *log.LogContext) {
	if cfg.AIAPIKey == "" {
		i18n.Fprintf(r.stdout, "[AI] Skipped: no API key (set --ai-api-key or DASHSCOPE_API_KEY)\n")
		return
	}

	kind := string(report.Outcome.Reason())
	if kind == "" {
		kind = string(errors.ErrorTypeVerificationMismatch)
	}

	i18n.Fprintf(r.stdout, "[AI] Diagnosing the failure with Qwen...\n")
	suggestion, err := ai.NewQwenClient(cfg.AIAPIKey, r.aiOptions...).Diagnose(ctx, kind, lc.ErrorSummary())
	if err != nil {
		i18n.Fprintf(r.stdout, "[AI] Diagnosis failed: %v\n", err)
		return
	}
	i18n.Fprintf(r.stdout, "[AI] Diagnosis:\n%s\n", suggestion)
}

func failureError(report service.Report) error {
	if !report.Outcome.Success() {
		return report.Outcome.Err()
	}
	if report.VerifyErr != nil {
		return report.VerifyErr
	}
	v := report.Verification
	return errors.NewVerificationMismatchError(v.LocalMD5, v.RemoteETag)
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, r *runner) int {
	rootCmd := newRootCmd(r)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return service.ExitOK
	}

	var exitErr *exitError
	if stderrors.As(err, &exitErr) {
		return exitErr.code
	}
	// cobra reports unknown subcommands and stray arguments this way
	fmt.Fprintln(r.stderr, "Error:", err)
	return service.ExitUsage
}

// Execute runs the root command and exits with its status.
// This is called by main.main().
func Execute() {
	lang.Set("")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], &runner{stdout: os.Stdout, stderr: os.Stderr})
	stop()
	os.Exit(code)
}
