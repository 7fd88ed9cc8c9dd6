package version

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
)

// Variables injected at compile time with -ldflags "-X"
var (
	BuildVersion = "unknown"
	BuildTime    = "unknown"
	GitCommit    = "unknown"
)

// Name is the product name shown in headers and version output
const Name = "S3 Upload Helper"

// Info struct stores application version information
type Info struct {
	Version   string
	BuildTime string
	GitCommit string
}

// Get gets version number, prefers compile-time injected version, then the
// VERSION file, then the module version recorded by `go install`
func Get() string {
	if BuildVersion != "unknown" {
		return BuildVersion
	}

	if data, err := os.ReadFile("VERSION"); err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			return v
		}
	}

	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return strings.TrimPrefix(bi.Main.Version, "v")
	}
	return "0.0.0"
}

// GetInfo gets complete version information
func GetInfo() Info {
	return Info{
		Version:   Get(),
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}
}

// String renders the one-line version banner
func (i Info) String() string {
	return fmt.Sprintf("%s v%s (commit %s, built %s)", Name, i.Version, i.GitCommit, i.BuildTime)
}

// Print writes version information to w
func Print(w io.Writer) {
	fmt.Fprintln(w, GetInfo().String())
}
