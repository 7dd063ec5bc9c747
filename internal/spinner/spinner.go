// Package spinner provides a terminal progress indicator for slow
// fetches.
package spinner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Spinner animates a message on one terminal line until stopped.
type Spinner struct {
	mu      sync.Mutex
	w       io.Writer
	message string
	active  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a spinner that writes to w.
func New(w io.Writer, message string) *Spinner {
	return &Spinner{w: w, message: message}
}

// Start begins the animation. Starting an active spinner is a no-op.
func (s *Spinner) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done

	if f, ok := s.w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(s.w, "\r\033[2K")
	} else {
		fmt.Fprint(s.w, "\r")
	}
}

// IsActive reports whether the spinner is running.
func (s *Spinner) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Spinner) run(ctx context.Context) {
	defer close(s.done)

	frames := []string{"|", "/", "-", `\`}
	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r%s %s", frames[i%len(frames)], msg)
		}
	}
}
