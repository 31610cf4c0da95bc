package maptool

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jamesrr39/goutil/errorsx"
)

// watchDebounce merges the bursts of events editors produce when saving a file.
const watchDebounce = 100 * time.Millisecond

// Watch checks path once, then again every time the file changes, until ctx is done.
// Watching uses OS file notifications, so path has to be on the local file system.
func (c *Checker) Watch(ctx context.Context, path string, onReport func(*Report)) errorsx.Error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer watcher.Close()

	// the directory is watched rather than the file, since many editors save by replacing the file
	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		return errorsx.Wrap(err, "path", path)
	}

	onReport(c.Check(path))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			c.logger.Debug("%s: %s", event.Op, event.Name)
			pending = time.After(watchDebounce)
		case <-pending:
			pending = nil
			onReport(c.Check(path))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return errorsx.Wrap(err, "path", path)
		}
	}
}
