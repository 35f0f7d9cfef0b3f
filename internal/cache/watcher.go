package cache

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates cache roots when a watched tag file changes on
// disk, covering index rebuilds performed outside this process.
type Watcher struct {
	svc     *Service
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	roots map[string]string // tag file path -> cache root
}

// NewWatcher starts a filesystem watcher bound to svc.
func NewWatcher(svc *Service, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting tag file watcher: %w", err)
	}

	w := &Watcher{
		svc:     svc,
		logger:  logger,
		watcher: fsw,
		roots:   make(map[string]string),
	}
	go w.loop()
	return w, nil
}

// Watch registers a tag file; changes to it invalidate root.
func (w *Watcher) Watch(tagFile, root string) error {
	w.mu.Lock()
	w.roots[tagFile] = root
	w.mu.Unlock()

	if err := w.watcher.Add(tagFile); err != nil {
		return fmt.Errorf("watching %s: %w", tagFile, err)
	}
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.mu.Lock()
			root, watched := w.roots[ev.Name]
			w.mu.Unlock()
			if !watched {
				continue
			}
			// Remove and Rename drop the underlying watch. Generators
			// rewrite indexes by renaming a temp file over them, so
			// re-arm the watch on the recorded path before invalidating.
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if err := w.watcher.Add(ev.Name); err != nil {
					w.logger.Warn("re-adding tag file watch failed",
						"path", ev.Name, "error", err)
				}
			}

			w.svc.Invalidate(root)
			w.logger.Debug("tag file changed, cache invalidated",
				"path", ev.Name, "root", root)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("tag file watch error", "error", err)
		}
	}
}
