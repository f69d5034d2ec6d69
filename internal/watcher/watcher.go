// Package watcher reloads topology files when they change on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"netlens/internal/logging"
)

// DefaultDebounce is the quiet period before a change is reported
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a set of files for changes
type Watcher struct {
	paths    []string
	onChange func(ctx context.Context, path string) error
	debounce time.Duration
	log      logging.Logger
}

// New creates a watcher for paths. onChange runs once per burst of writes to
// a file, after the debounce period.
func New(paths []string, onChange func(ctx context.Context, path string) error, log logging.Logger) *Watcher {
	if log == nil {
		log = logging.Noop()
	}
	return &Watcher{
		paths:    paths,
		onChange: onChange,
		debounce: DefaultDebounce,
		log:      log.With(logging.String("component", "watcher")),
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Watch starts watching the files for changes.
// It blocks until the context is cancelled or an error occurs.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch directories rather than files so editors that replace the file
	// on save are still seen.
	watchedDirs := make(map[string]bool)
	fileSet := make(map[string]bool)

	for _, path := range w.paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			w.log.Warn(ctx, "cannot resolve path", logging.String("path", path), logging.Err(err))
			continue
		}

		dir := filepath.Dir(absPath)
		if !watchedDirs[dir] {
			if err := fw.Add(dir); err != nil {
				w.log.Warn(ctx, "failed to watch directory", logging.String("dir", dir), logging.Err(err))
				continue
			}
			watchedDirs[dir] = true
		}

		fileSet[absPath] = true
		w.log.Info(ctx, "watching topology file", logging.String("path", absPath))
	}
	if len(fileSet) == 0 {
		return fmt.Errorf("no watchable files in %v", w.paths)
	}

	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, timer := range timers {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			absPath, err := filepath.Abs(event.Name)
			if err != nil || !fileSet[absPath] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			mu.Lock()
			if timer, exists := timers[absPath]; exists {
				timer.Stop()
			}
			timers[absPath] = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				w.log.Info(ctx, "topology file changed", logging.String("path", absPath))
				if err := w.onChange(ctx, absPath); err != nil {
					w.log.Error(ctx, "reload failed", logging.String("path", absPath), logging.Err(err))
				}
			})
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn(ctx, "watcher error", logging.Err(err))

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
