package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events an editor produces for a
// single save.
const watchDebounce = 100 * time.Millisecond

// watchFiles calls onChange with the path of a watched file whenever it is
// written or recreated, until ctx is cancelled. The parent directories are
// watched rather than the files themselves so that editors which save by
// renaming a temporary file are followed.
func watchFiles(ctx context.Context, files []string, logger *slog.Logger, onChange func(file string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Absolute path to the name the file was given on the command line.
	watched := make(map[string]string, len(files))
	dirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		watched[abs] = file
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	logger.Info("watching for changes", "files", len(files), "directories", len(dirs))

	pending := make(map[string]bool)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("file watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			file, ok := watched[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			logger.Debug("file event detected", "path", event.Name, "op", event.Op.String())
			pending[file] = true
			timer.Reset(watchDebounce)

		case <-timer.C:
			for file := range pending {
				onChange(file)
			}
			clear(pending)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("file watcher error", "error", err)
		}
	}
}
