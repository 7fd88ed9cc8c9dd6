package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Duration formats time.Duration to human-readable format
// Examples: "2h30m15s", "45m30s", "30s"
func Duration(d time.Duration) string {
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	} else if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// Bytes formats a byte count with IEC units, e.g. "1.5 MiB"
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// Timestamp renders t the way run boundaries are logged
func Timestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
