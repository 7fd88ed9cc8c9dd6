package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02 15:04:05"

const moduleField = "module"

// LogContext is the logging handle of one run. Every entry is appended to
// the log file and mirrored to stdout; a copy is kept in memory so the run's
// own lines can be summarized after a failure.
type LogContext struct {
	logger      zerolog.Logger
	logFile     *os.File
	logFileName string
	runID       string

	mu      sync.Mutex
	content bytes.Buffer
}

// Option configures a LogContext.
type Option func(*options)

type options struct {
	stdout io.Writer
	quiet  bool
	color  bool
}

// WithStdout overrides the mirror writer. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// WithQuiet only mirrors warnings and errors to stdout. The log file still
// receives every entry.
func WithQuiet(quiet bool) Option {
	return func(o *options) {
		o.quiet = quiet
	}
}

// WithColor toggles colored level names on the stdout mirror.
func WithColor(enabled bool) Option {
	return func(o *options) {
		o.color = enabled
	}
}

// NewLogContext opens (or creates) logFileName in append mode.
// A relative name is resolved against the working directory.
func NewLogContext(logFileName string, opts ...Option) (*LogContext, error) {
	o := &options{stdout: os.Stdout, color: true}
	for _, opt := range opts {
		opt(o)
	}

	if dir := filepath.Dir(logFileName); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %v", err)
		}
	}

	logFile, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	lc := &LogContext{
		logFile:     logFile,
		logFileName: logFileName,
		runID:       uuid.NewString(),
	}

	var stdout io.Writer = newConsoleWriter(o.stdout, !o.color, moduleField, "run")
	if o.quiet {
		stdout = warnOnly{zerolog.LevelWriterAdapter{Writer: stdout}}
	}
	multi := zerolog.MultiLevelWriter(
		newConsoleWriter(logFile, true, moduleField),
		stdout,
		newConsoleWriter(&lockedBuffer{lc: lc}, true, moduleField, "run"),
	)
	lc.logger = zerolog.New(multi).With().Timestamp().Str("run", lc.runID).Logger()

	return lc, nil
}

// newConsoleWriter renders "2006-01-02 15:04:05 INF MODULE message key=value" lines.
func newConsoleWriter(out io.Writer, noColor bool, exclude ...string) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: timeFormat,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			moduleField,
			zerolog.MessageFieldName,
		},
		FieldsExclude: exclude,
	}
}

// WriteLog writes an info entry with a module prefix and timestamp
func (lc *LogContext) WriteLog(module string, format string, args ...interface{}) {
	lc.logger.Info().Str(moduleField, module).Msgf(format, args...)
}

// WriteWarn writes a warning entry
func (lc *LogContext) WriteWarn(module string, format string, args ...interface{}) {
	lc.logger.Warn().Str(moduleField, module).Msgf(format, args...)
}

// WriteError writes an error entry, attaching err when it is not nil
func (lc *LogContext) WriteError(module string, err error, format string, args ...interface{}) {
	ev := lc.logger.Error().Str(moduleField, module)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msgf(format, args...)
}

// RunID returns the identifier attached to every entry of this run
func (lc *LogContext) RunID() string {
	return lc.runID
}

// GetFileName returns the log file path
func (lc *LogContext) GetFileName() string {
	return lc.logFileName
}

// Content returns the entries written by this run, without colors
func (lc *LogContext) Content() string {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.content.String()
}

// Close flushes and closes the log file
func (lc *LogContext) Close() error {
	if lc.logFile == nil {
		return nil
	}
	lc.logFile.Sync()
	err := lc.logFile.Close()
	lc.logFile = nil
	return err
}

// ErrorSummary extracts up to 20 lines that look like failures from this
// run's entries. If none match, the last 20 lines are returned.
func (lc *LogContext) ErrorSummary() string {
	return ExtractErrorSummary(lc.Content())
}

// ExtractErrorSummary extracts error lines from log content
func ExtractErrorSummary(logContent string) string {
	if logContent == "" {
		return ""
	}

	lines := strings.Split(strings.TrimRight(logContent, "\n"), "\n")
	errorLines := []string{}

	for i := len(lines) - 1; i >= 0 && len(errorLines) < 20; i-- {
		line := strings.ToLower(lines[i])
		if strings.Contains(line, "error") || strings.Contains(line, "failed") ||
			strings.Contains(line, "timeout") || strings.Contains(line, "refused") ||
			strings.Contains(line, "not found") || strings.Contains(line, "does not exist") ||
			strings.Contains(line, " err ") || strings.Contains(line, " wrn ") {
			errorLines = append([]string{lines[i]}, errorLines...)
		}
	}
	if len(errorLines) == 0 {
		start := len(lines) - 20
		if start < 0 {
			start = 0
		}
		errorLines = lines[start:]
	}

	return strings.Join(errorLines, "\n")
}

type lockedBuffer struct {
	lc *LogContext
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.lc.mu.Lock()
	defer b.lc.mu.Unlock()
	return b.lc.content.Write(p)
}

// warnOnly drops entries below warning level
type warnOnly struct {
	zerolog.LevelWriter
}

func (w warnOnly) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.LevelWriter.WriteLevel(level, p)
}

func (w warnOnly) Write(p []byte) (int, error) {
	return len(p), nil
}
