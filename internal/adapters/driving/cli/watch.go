package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/billtopics/internal/logger"
)

// watchDebounce collapses the burst of events an editor save produces.
var watchDebounce = 500 * time.Millisecond

// fileWatcher reports changes to a single file.
// It watches the parent directory so files replaced by rename are still seen.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	target  string
}

func newFileWatcher(path string) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	return &fileWatcher{watcher: w, target: abs}, nil
}

// Run calls onChange after each settled burst of writes until ctx is done.
func (f *fileWatcher) Run(ctx context.Context, debounce time.Duration, onChange func()) error {
	defer f.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-f.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("change detected: %s", event)
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		case <-fire:
			fire = nil
			onChange()
		}
	}
}
