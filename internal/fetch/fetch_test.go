package fetch_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"typograf/internal/fetch"
)

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	const content = "<p>Water is H2O</p>"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("setup write failed: %v", err)
	}

	rc, err := fetch.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(data) != content {
		t.Errorf("read %q, want %q", data, content)
	}
}

func TestOpenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.html")
	_, err := fetch.Open(context.Background(), path)
	if err == nil {
		t.Fatal("Open() succeeded on a missing file")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("error %q does not mention missing file", err)
	}
}

func TestOpenURL(t *testing.T) {
	const body = "<html><body><p>21st</p></body></html>"
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		io.WriteString(w, body)
	}))
	defer srv.Close()

	rc, err := fetch.Open(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(data) != body {
		t.Errorf("read %q, want %q", data, body)
	}
	if !strings.HasPrefix(gotAgent, "typograf/") {
		t.Errorf("User-Agent = %q, want typograf/* prefix", gotAgent)
	}
}

func TestOpenURLStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := fetch.Open(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Open() succeeded on a 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error %q does not carry the HTTP status", err)
	}
}

func TestOpenURLDeclaredTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "999999999999")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if _, err := fetch.Open(context.Background(), srv.URL); err == nil {
		t.Error("Open() accepted a body declared larger than the limit")
	}
}

func TestOpenURLCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "late")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := fetch.Open(ctx, srv.URL); err == nil {
		t.Error("Open() succeeded with a canceled context")
	}
}
