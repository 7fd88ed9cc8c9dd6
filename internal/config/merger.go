package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"s3-upload-helper/internal/pkg/errors"
)

// Flags represents command line flags as bound by the root command
type Flags struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	RemotePath  string
	LocalFile   string
	Provider    string
	Region      string
	ContentType string
	IOLimitStr  string
	ChunkSize   int
	LogFileName string
	MetricsFile string
	Quiet       bool
	LangFlag    string
	AIDiagnose  bool
	AIAPIKey    string
}

// Resolve turns command line flags into a validated UploadConfig.
// Missing required flags are reported together as one configuration error.
func Resolve(flags *Flags) (*UploadConfig, error) {
	ioLimit, err := ParseIOLimit(flags.IOLimitStr)
	if err != nil {
		return nil, err
	}

	cfg := &UploadConfig{
		Endpoint:    strings.TrimSpace(flags.Endpoint),
		AccessKey:   flags.AccessKey,
		SecretKey:   flags.SecretKey,
		Provider:    strings.ToLower(strings.TrimSpace(flags.Provider)),
		Region:      flags.Region,
		Bucket:      strings.TrimSpace(flags.Bucket),
		RemotePath:  strings.TrimSpace(flags.RemotePath),
		LocalFile:   flags.LocalFile,
		ContentType: flags.ContentType,
		IOLimit:     ioLimit,
		ChunkSize:   flags.ChunkSize,
		LogFile:     flags.LogFileName,
		MetricsFile: flags.MetricsFile,
		Quiet:       flags.Quiet,
		Lang:        flags.LangFlag,
		AIDiagnose:  flags.AIDiagnose,
		AIAPIKey:    flags.AIAPIKey,
	}

	// Environment fallback for the AI key only
	if cfg.AIDiagnose && cfg.AIAPIKey == "" {
		cfg.AIAPIKey = os.Getenv("DASHSCOPE_API_KEY")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseIOLimit parses a bandwidth limit such as "100MB", "100MB/s" or "1GiB/s".
// An empty string, "0" or "-1" mean unlimited and yield 0.
func ParseIOLimit(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" || s == "-1" {
		return 0, nil
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/s"), "/S")
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, errors.NewConfigError("invalid --io-limit value '"+s+"'", err)
	}
	if n > math.MaxInt64 {
		return 0, errors.NewConfigError(fmt.Sprintf("--io-limit value '%s' is too large", s), nil)
	}
	return int64(n), nil
}
