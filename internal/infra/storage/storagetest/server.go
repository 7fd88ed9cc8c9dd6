// Package storagetest provides an in-process S3-compatible endpoint and a spy
// backend for tests.
package storagetest

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Server is a minimal path-style S3 endpoint: HEAD/GET bucket, GET service,
// PUT and HEAD object. ETags are the quoted hex MD5 of the stored bytes.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	buckets map[string]map[string][]byte
	puts    int

	// ETagFunc overrides the ETag returned for a PUT when set
	ETagFunc func(body []byte) string
}

// NewServer starts a server holding the given (empty) buckets.
// It is closed when the test ends.
func NewServer(t testing.TB, buckets ...string) *Server {
	t.Helper()
	s := &Server{buckets: map[string]map[string][]byte{}}
	for _, b := range buckets {
		s.buckets[b] = map[string][]byte{}
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint returns host:port without scheme
func (s *Server) Endpoint() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// PutCount returns how many PUT Object requests were received
func (s *Server) PutCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// Object returns the stored bytes of bucket/key
func (s *Server) Object(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	objects, ok := s.buckets[bucket]
	if !ok {
		return nil, false
	}
	data, ok := objects[key]
	return data, ok
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" {
		s.listBuckets(w, r)
		return
	}
	bucket, key, _ := strings.Cut(path, "/")

	s.mu.Lock()
	objects, ok := s.buckets[bucket]
	s.mu.Unlock()
	if !ok {
		writeError(w, r, http.StatusNotFound, "NoSuchBucket", bucket)
		return
	}

	switch {
	case key == "" && r.Method == http.MethodGet && r.URL.Query().Has("location"):
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/"></LocationConstraint>`)
	case key == "" && r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case key != "" && r.Method == http.MethodPut:
		body, err := readBody(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "IncompleteBody", bucket)
			return
		}
		s.mu.Lock()
		objects[key] = body
		s.puts++
		s.mu.Unlock()
		w.Header().Set("ETag", s.etag(body))
		w.WriteHeader(http.StatusOK)
	case key != "" && r.Method == http.MethodHead:
		s.mu.Lock()
		body, found := objects[key]
		s.mu.Unlock()
		if !found {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("ETag", s.etag(body))
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
	default:
		writeError(w, r, http.StatusNotImplemented, "NotImplemented", bucket)
	}
}

func (s *Server) etag(body []byte) string {
	if s.ETagFunc != nil {
		return s.ETagFunc(body)
	}
	sum := md5.Sum(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// listBuckets answers GET service. prefix, marker and max-keys are honored
// the way OSS and S3 page bucket listings.
func (s *Server) listBuckets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	prefix := query.Get("prefix")
	marker := query.Get("marker")
	maxKeys := 1000
	if v := query.Get("max-keys"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, "InvalidArgument", "")
			return
		}
		maxKeys = n
	}

	s.mu.Lock()
	names := make([]string, 0, len(s.buckets))
	for name := range s.buckets {
		if strings.HasPrefix(name, prefix) && name > marker {
			names = append(names, name)
		}
	}
	s.mu.Unlock()
	sort.Strings(names)

	truncated := len(names) > maxKeys
	if truncated {
		names = names[:maxKeys]
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListAllMyBucketsResult>`)
	fmt.Fprintf(&b, `<Prefix>%s</Prefix><Marker>%s</Marker><MaxKeys>%d</MaxKeys><IsTruncated>%t</IsTruncated>`,
		prefix, marker, maxKeys, truncated)
	if truncated && len(names) > 0 {
		fmt.Fprintf(&b, `<NextMarker>%s</NextMarker>`, names[len(names)-1])
	}
	b.WriteString(`<Owner><ID>test</ID><DisplayName>test</DisplayName></Owner><Buckets>`)
	for _, name := range names {
		fmt.Fprintf(&b, `<Bucket><Name>%s</Name><CreationDate>2024-01-01T00:00:00.000Z</CreationDate></Bucket>`, name)
	}
	b.WriteString(`</Buckets></ListAllMyBucketsResult>`)
	w.Header().Set("Content-Type", "application/xml")
	io.WriteString(w, b.String())
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, bucket string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message><BucketName>%s</BucketName><Resource>%s</Resource><RequestId>1</RequestId></Error>`,
		code, code, bucket, r.URL.Path)
}

// readBody returns the payload, decoding aws-chunked streaming uploads
func readBody(r *http.Request) ([]byte, error) {
	chunked := strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") ||
		strings.Contains(r.Header.Get("Content-Encoding"), "aws-chunked")
	if !chunked {
		return io.ReadAll(r.Body)
	}

	var out bytes.Buffer
	br := bufio.NewReader(r.Body)
	for {
		header, err := br.ReadString('\n')
		if err != nil {
			return nil, err
		}
		sizeHex, _, _ := strings.Cut(strings.TrimSpace(header), ";")
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, br, size); err != nil {
			return nil, err
		}
		if _, err := br.Discard(2); err != nil {
			return nil, err
		}
	}
}
