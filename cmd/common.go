package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gioco-play/easy-i18n/i18n"
	"golang.org/x/term"

	"s3-upload-helper/internal/config"
	"s3-upload-helper/internal/pkg/format"
	"s3-upload-helper/internal/service"
	"s3-upload-helper/pkg/version"
)

// outputHeader displays the tool header
func outputHeader(w io.Writer) {
	bar := strings.Repeat("#", 80)
	title := version.Name
	subtitle := "MinIO / AWS S3 / Alibaba Cloud OSS"
	ver := "v" + version.Get()
	timeStr := format.Timestamp(time.Now())

	i18n.Fprintf(w, "%s\n", bar)
	// center display
	pad := (80 - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", pad), title)
	pad2 := (80 - len(subtitle)) / 2
	if pad2 < 0 {
		pad2 = 0
	}
	fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", pad2), subtitle)
	fmt.Fprintf(w, "%sVersion: %s    Time: %s\n", strings.Repeat(" ", 10), ver, timeStr)
	i18n.Fprintf(w, "%s\n", bar)
}

// printSummary renders the run as a [DONE]/[ERROR] table
func printSummary(w io.Writer, cfg config.UploadConfig, report service.Report) {
	rows := []format.Row{
		{Item: "Endpoint", Msg: config.NormalizeEndpoint(cfg.Endpoint), Status: format.StatusDone},
		{Item: "Provider", Msg: cfg.Provider, Status: format.StatusDone},
		{Item: "Local file", Msg: cfg.LocalFile, Status: format.StatusDone},
		{Item: "Destination", Msg: cfg.Destination(), Status: format.StatusDone},
	}

	if report.Outcome.Success() {
		rows = append(rows,
			format.Row{Item: "Size", Msg: format.Bytes(report.Uploaded.Size), Status: format.StatusDone},
			format.Row{Item: "Upload", Msg: "ETag " + report.Outcome.ETag(), Status: format.StatusDone},
		)
	} else {
		rows = append(rows, format.Row{
			Item:    "Upload",
			Msg:     string(report.Outcome.Reason()),
			Suggest: "check the log file",
			Status:  format.StatusError,
		})
	}

	switch {
	case !report.Outcome.Success():
		rows = append(rows, format.Row{Item: "Verification", Msg: "-", Status: format.StatusSkip})
	case report.Verified():
		rows = append(rows, format.Row{Item: "Verification", Msg: "MD5 " + report.Verification.LocalMD5, Status: format.StatusDone})
	default:
		msg := "MD5 could not be computed"
		if v := report.Verification; v != nil {
			msg = fmt.Sprintf("MD5 %s != ETag %s", v.LocalMD5, v.RemoteETag)
		}
		rows = append(rows, format.Row{Item: "Verification", Msg: msg, Suggest: "check the log file", Status: format.StatusError})
	}

	rows = append(rows, format.Row{
		Item:   "Run",
		Msg:    format.Duration(report.Ended.Sub(report.Started)),
		Status: format.StatusDone,
	})

	format.Table(w, rows)
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
