package spinner_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"typograf/internal/spinner"
)

// syncBuffer makes bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartStop(t *testing.T) {
	var buf syncBuffer
	s := spinner.New(&buf, "fetching")

	if s.IsActive() {
		t.Error("IsActive() = true before Start")
	}

	s.Start(context.Background())
	if !s.IsActive() {
		t.Error("IsActive() = false after Start")
	}

	time.Sleep(300 * time.Millisecond)
	s.Stop()

	if s.IsActive() {
		t.Error("IsActive() = true after Stop")
	}
	if out := buf.String(); !bytes.Contains([]byte(out), []byte("fetching")) {
		t.Errorf("spinner never wrote its message, output: %q", out)
	}
}

func TestDoubleStart(t *testing.T) {
	var buf syncBuffer
	s := spinner.New(&buf, "working")

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx) // no-op
	s.Stop()

	if s.IsActive() {
		t.Error("IsActive() = true after Stop")
	}
}

func TestStopWithoutStart(t *testing.T) {
	var buf syncBuffer
	s := spinner.New(&buf, "idle")
	s.Stop() // must not panic or block
	if s.IsActive() {
		t.Error("IsActive() = true on a never-started spinner")
	}
}
