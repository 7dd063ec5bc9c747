// Package watch re-runs the transformation when a source file changes.
// It feeds filesystem events through the schedule.Debouncer so a burst
// of writes (editors typically write, chmod, and rename in quick
// succession) produces a single re-application.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"typograf/internal/schedule"
)

// DefaultQuietPeriod is the debounce window used when the caller does
// not configure one.
const DefaultQuietPeriod = 250 * time.Millisecond

// File watches a single file and invokes fn once per coalesced burst of
// changes, after at least quiet. It blocks until ctx is canceled or the
// underlying watcher fails.
//
// The parent directory is watched rather than the file itself: editors
// that save via rename replace the inode, which would silently detach a
// direct file watch.
func File(ctx context.Context, path string, quiet time.Duration, fn func()) error {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve watch path %q: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", filepath.Dir(abs), err)
	}

	deb := schedule.NewDebouncer(quiet, fn)
	defer deb.Cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("source changed", "path", ev.Name, "op", ev.Op.String())
			deb.Trigger()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			// transient watcher errors are logged, not fatal
			slog.Warn("watch error", "error", err)
		}
	}
}
