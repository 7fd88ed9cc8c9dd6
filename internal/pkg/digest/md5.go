package digest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// DefaultChunkSize is the buffer size used when none is given
const DefaultChunkSize = 8192

var multipartETag = regexp.MustCompile(`^[0-9a-f]{32}-[0-9]+$`)

// Verification is the result of comparing a local digest with a remote ETag
type Verification struct {
	LocalMD5   string
	RemoteETag string
	Match      bool
	// Multipart is set when the ETag has the "<md5>-<parts>" form, which is
	// not an MD5 of the object bytes and can never match a plain digest.
	Multipart bool
}

// FileMD5 returns the hex MD5 digest of the file at path, reading it in
// chunks of chunkSize bytes. The file is closed on every return path.
func FileMD5(path string, chunkSize int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sum, err := ReaderMD5(f, chunkSize)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return sum, nil
}

// ReaderMD5 returns the hex MD5 digest of everything read from r.
func ReaderMD5(r io.Reader, chunkSize int) (string, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	h := md5.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NormalizeETag lowercases an ETag and strips surrounding quotes and a weak
// validator prefix.
func NormalizeETag(etag string) string {
	etag = strings.TrimSpace(etag)
	etag = strings.TrimPrefix(etag, "W/")
	etag = strings.Trim(etag, `"`)
	return strings.ToLower(etag)
}

// IsMultipartETag reports whether etag has the multipart upload form.
func IsMultipartETag(etag string) bool {
	return multipartETag.MatchString(NormalizeETag(etag))
}

// Compare compares a local hex digest with a remote ETag, case-insensitively.
func Compare(localMD5, remoteETag string) Verification {
	local := strings.ToLower(strings.TrimSpace(localMD5))
	remote := NormalizeETag(remoteETag)
	return Verification{
		LocalMD5:   local,
		RemoteETag: remote,
		Match:      local != "" && local == remote,
		Multipart:  IsMultipartETag(remote),
	}
}

// VerifyFile hashes the file at path and compares the digest with remoteETag.
func VerifyFile(path, remoteETag string, chunkSize int) (Verification, error) {
	sum, err := FileMD5(path, chunkSize)
	if err != nil {
		return Verification{RemoteETag: NormalizeETag(remoteETag)}, err
	}
	return Compare(sum, remoteETag), nil
}
