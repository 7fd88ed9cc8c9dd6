package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gioco-play/easy-i18n/i18n"

	"s3-upload-helper/internal/pkg/format"
)

// refreshInterval limits how often the progress line is redrawn
const refreshInterval = 500 * time.Millisecond

// Tracker tracks upload progress and draws a single refreshing line
type Tracker struct {
	out              io.Writer
	totalBytes       int64
	transferredBytes int64

	mu         sync.Mutex
	startTime  time.Time
	lastUpdate time.Time
	lastBytes  int64
	startOnce  sync.Once
	completed  bool
}

// NewTracker creates a tracker for totalBytes. A nil out disables drawing.
func NewTracker(totalBytes int64, out io.Writer) *Tracker {
	if out == nil {
		out = io.Discard
	}
	return &Tracker{out: out, totalBytes: totalBytes}
}

// Update adds n transferred bytes and redraws when due
func (pt *Tracker) Update(n int64) {
	pt.startOnce.Do(func() {
		now := time.Now()
		pt.mu.Lock()
		pt.startTime = now
		pt.lastUpdate = now
		pt.mu.Unlock()
	})

	atomic.AddInt64(&pt.transferredBytes, n)
	pt.displayProgress(false)
}

// Transferred returns the number of bytes seen so far
func (pt *Tracker) Transferred() int64 {
	return atomic.LoadInt64(&pt.transferredBytes)
}

// Complete clears the progress line and prints final statistics.
// Only the first call prints.
func (pt *Tracker) Complete() {
	pt.mu.Lock()
	if pt.completed {
		pt.mu.Unlock()
		return
	}
	pt.completed = true
	start := pt.startTime
	pt.mu.Unlock()

	total := pt.Transferred()
	fmt.Fprint(pt.out, "\r"+strings.Repeat(" ", 100)+"\r")

	i18n.Fprintf(pt.out, "Upload completed!\n")
	i18n.Fprintf(pt.out, "  Total uploaded: %s\n", format.Bytes(total))
	if start.IsZero() {
		return
	}

	duration := time.Since(start)
	i18n.Fprintf(pt.out, "  Duration: %s\n", format.Duration(duration))
	if secs := duration.Seconds(); secs > 0 {
		i18n.Fprintf(pt.out, "  Average speed: %s/s\n", format.Bytes(int64(float64(total)/secs)))
	}
}

func (pt *Tracker) displayProgress(force bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.startTime.IsZero() || pt.completed {
		return
	}

	now := time.Now()
	if !force && now.Sub(pt.lastUpdate) < refreshInterval {
		return
	}

	transferred := atomic.LoadInt64(&pt.transferredBytes)
	elapsed := now.Sub(pt.lastUpdate).Seconds()
	var speed float64
	if elapsed > 0 {
		speed = float64(transferred-pt.lastBytes) / elapsed
	}

	if pt.totalBytes > 0 {
		percentage := float64(transferred) * 100.0 / float64(pt.totalBytes)
		fmt.Fprintf(pt.out, "\rProgress: %s / %s (%.1f%%) - %s/s - Duration: %s",
			format.Bytes(transferred),
			format.Bytes(pt.totalBytes),
			percentage,
			format.Bytes(int64(speed)),
			format.Duration(now.Sub(pt.startTime)),
		)
	} else {
		fmt.Fprintf(pt.out, "\rProgress: %s - %s/s - Duration: %s",
			format.Bytes(transferred),
			format.Bytes(int64(speed)),
			format.Duration(now.Sub(pt.startTime)),
		)
	}

	pt.lastUpdate = now
	pt.lastBytes = transferred
}
