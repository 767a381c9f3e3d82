package registry

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watch re-runs discovery whenever the module root changes, until the
// context is cancelled. New modules become available without a
// restart; already-loaded modules are unaffected until re-loaded.
func (r *Registry) Watch(ctx context.Context) error {
	if r.root == "" {
		return fmt.Errorf("no module root configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			r.logger.Warn("Failed to close module watcher", "error", err)
		}
	}()

	if err := watcher.Add(r.root); err != nil {
		return fmt.Errorf("watch module root %s: %w", r.root, err)
	}

	r.logger.Info("Watching module root for changes", "root", r.root)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			r.logger.Debug("Module root changed, re-discovering",
				"event", event.Op.String(), "path", event.Name)
			if _, err := r.Discover(); err != nil {
				r.logger.Warn("Re-discovery failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("Module watcher error", "error", err)
		}
	}
}
