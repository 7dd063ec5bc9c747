// Package fetch retrieves source documents from files, URLs, or stdin.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// MaxSourceBytes caps how much of any source is read, to keep a
// pathological document from exhausting memory.
const MaxSourceBytes = 64 * 1024 * 1024

// RequestTimeout bounds a whole HTTP fetch.
const RequestTimeout = 30 * time.Second

// httpClient is shared across fetches; safe for concurrent use.
var httpClient = &http.Client{Timeout: RequestTimeout}

// limitedReader enforces MaxSourceBytes on a stream and reports the
// source in its error. Reads are clamped to one byte past the limit so
// a stream of exactly MaxSourceBytes drains to a clean EOF; only a
// stream that actually yields more data fails.
type limitedReader struct {
	io.ReadCloser
	remaining int64
	source    string
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, fmt.Errorf("content from %q exceeds %d byte limit", l.source, MaxSourceBytes)
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.ReadCloser.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return 0, fmt.Errorf("content from %q exceeds %d byte limit", l.source, MaxSourceBytes)
	}
	return n, err
}

// Open returns a reader for a source:
//   - "-" reads standard input
//   - "http://" / "https://" prefixes fetch via HTTP
//   - anything else is a local file path
//
// ctx cancels an in-flight HTTP fetch.
func Open(ctx context.Context, source string) (io.ReadCloser, error) {
	switch {
	case source == "-":
		return &limitedReader{ReadCloser: os.Stdin, remaining: MaxSourceBytes, source: "stdin"}, nil
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return openURL(ctx, source)
	default:
		return openFile(source)
	}
}

func openURL(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %q: %w", url, err)
	}
	req.Header.Set("User-Agent", "typograf/0.1")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch of %q failed: %s", url, resp.Status)
	}

	// reject oversized bodies early when the server declares a length
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if size, err := strconv.ParseInt(cl, 10, 64); err == nil && size > MaxSourceBytes {
			resp.Body.Close()
			return nil, fmt.Errorf("content from %q too large (%d bytes)", url, size)
		}
	}

	return &limitedReader{ReadCloser: resp.Body, remaining: MaxSourceBytes, source: url}, nil
}

func openFile(path string) (io.ReadCloser, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file %q does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access file %q: %w", path, err)
	}
	if info.Size() > MaxSourceBytes {
		return nil, fmt.Errorf("file %q too large (%d bytes)", path, info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	return f, nil
}
