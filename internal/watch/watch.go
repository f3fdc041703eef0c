// Package watch reruns a callback when files under a directory tree change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"ruler/internal/logging"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc receives the sorted, deduplicated paths that changed during one
// debounce window.
type ChangeFunc func(ctx context.Context, changed []string)

type Options struct {
	// Debounce is how long the tree must be quiet before ChangeFunc runs.
	Debounce time.Duration

	// Filter selects the file names that count as changes. Nil accepts all.
	Filter func(name string) bool
}

// Watcher observes a directory and every directory below it, except hidden
// and node_modules directories.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	logger  *logging.AppLogger
	opts    Options
}

func New(root string, opts Options, logger *logging.AppLogger) (*Watcher, error) {
	if logger == nil {
		logger = logging.GetDefault()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{root: root, watcher: fw, logger: logger, opts: opts}
	if _, err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// RuleFiles accepts the files that feed an apply run: markdown fragments and
// the configuration documents.
func RuleFiles(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".toml", ".json":
		return !strings.HasPrefix(filepath.Base(name), ".")
	}
	return false
}

// Run blocks until ctx is done, calling onChange after each burst of changes.
// The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	defer w.watcher.Close()

	pending := map[string]struct{}{}
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	w.logger.Debug("Watching for changes", "dir", w.root)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			changed := w.handleEvent(event)
			if len(changed) == 0 {
				continue
			}
			for _, p := range changed {
				pending[p] = struct{}{}
			}
			timer.Reset(w.opts.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)

			w.logger.Debug("Change detected", "files", len(paths))
			onChange(ctx, paths)
		}
	}
}

// handleEvent returns the relevant paths an event touched. A new directory is
// added to the watch list and its existing files are reported, since they may
// have been written before the watch was in place.
func (w *Watcher) handleEvent(event fsnotify.Event) []string {
	if event.Op == fsnotify.Chmod {
		return nil
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			files, err := w.addTree(event.Name)
			if err != nil {
				w.logger.Warn("Cannot watch new directory", "dir", event.Name, "error", err)
			}
			return files
		}
	}

	if !w.accept(event.Name) {
		return nil
	}
	return []string{event.Name}
}

// addTree watches dir and its subdirectories and returns the accepted files
// found while walking.
func (w *Watcher) addTree(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			if w.accept(path) {
				files = append(files, path)
			}
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
	return files, err
}

func (w *Watcher) accept(name string) bool {
	return w.opts.Filter == nil || w.opts.Filter(name)
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}
