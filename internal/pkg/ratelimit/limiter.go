package ratelimit

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// Reader wraps an io.Reader with a bytes-per-second limit
type Reader struct {
	ctx     context.Context
	reader  io.Reader
	limiter *rate.Limiter
}

// NewReader returns r unchanged when bytesPerSec <= 0, otherwise a Reader
// that waits on a token bucket sized to one second of traffic.
func NewReader(ctx context.Context, r io.Reader, bytesPerSec int64) io.Reader {
	if bytesPerSec <= 0 {
		return r
	}
	burst := int(bytesPerSec)
	if int64(burst) != bytesPerSec || burst <= 0 {
		burst = int(^uint(0) >> 1)
	}
	return &Reader{
		ctx:     ctx,
		reader:  r,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), burst),
	}
}

// Read implements io.Reader. Reads larger than the burst are shortened so
// WaitN never rejects them.
func (rl *Reader) Read(p []byte) (int, error) {
	if burst := rl.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}
	n, err := rl.reader.Read(p)
	if n > 0 {
		if werr := rl.limiter.WaitN(rl.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// Limit returns the configured rate in bytes per second
func (rl *Reader) Limit() int64 {
	return int64(rl.limiter.Limit())
}
