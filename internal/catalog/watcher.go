package catalog

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the memory store whenever the seed file changes on
// disk. It blocks until the context is cancelled.
func Watch(ctx context.Context, store *MemoryStore, path string, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// a watch registered on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			docs, err := LoadSeedFile(path)
			if err != nil {
				logger.Warn("catalog reload failed", "path", path, "error", err)
				continue
			}
			store.Replace(docs)
			logger.Info("catalog reloaded", "path", path, "programs", len(docs))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("catalog watcher error", "error", err)
		}
	}
}
