package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates a Cache when its file changes on disk.
type Watcher struct {
	cache   *Cache
	watcher *fsnotify.Watcher
}

// NewWatcher watches the directory of the cache's current file. Watching the
// directory rather than the file survives editors that replace files by rename.
func NewWatcher(cache *Cache) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{cache: cache, watcher: fw}
	if err := w.Add(filepath.Dir(cache.Path())); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Add watches another directory, e.g. the uploads directory.
func (w *Watcher) Add(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}

// Run dispatches file events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Clean(event.Name) != filepath.Clean(w.cache.Path()) {
		return
	}
	if !w.cache.Loaded() {
		return
	}

	slog.Info("dataset file changed", "path", event.Name, "op", event.Op.String())
	w.cache.Invalidate()
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
