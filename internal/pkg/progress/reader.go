package progress

import "io"

// Reader wraps an io.Reader and reports every read to a Tracker
type Reader struct {
	reader  io.Reader
	tracker *Tracker
}

// NewReader creates a new progress reader
func NewReader(reader io.Reader, tracker *Tracker) *Reader {
	return &Reader{reader: reader, tracker: tracker}
}

// Read implements io.Reader
func (pr *Reader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 {
		pr.tracker.Update(int64(n))
	}
	return n, err
}
