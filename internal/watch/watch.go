// Package watch drives a build on every filesystem change under a project,
// so an editor session iterating on resources doesn't need a manual build
// invocation after each edit. Grounded on fsnotify's own recursive watch
// idiom, the only ecosystem pattern available for this concern.
package watch

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ignoredDirs are never descended into, since changes under them are the
// engine's own scratch state rather than project resources worth reacting to.
var ignoredDirs = map[string]bool{
	".callisto":      true,
	".callisto-cache": true,
	".git":           true,
}

// Watcher triggers Build whenever a file changes under Root, coalescing
// bursts of events (an editor's save-then-rewrite-metadata pattern) into a
// single build after Debounce of quiet.
type Watcher struct {
	Root     string
	Debounce time.Duration
	Build    func()
	Log      *slog.Logger

	fw *fsnotify.Watcher
}

// New builds a Watcher. If debounce is zero, 300ms is used.
func New(root string, debounce time.Duration, build func(), log *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{Root: root, Debounce: debounce, Build: build, Log: log, fw: fw}
	if err := w.addRecursive(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() != filepath.Base(root) && ignoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}

// Run blocks, rebuilding on every debounced burst of filesystem events,
// until stop is closed.
func (w *Watcher) Run(stop <-chan struct{}) error {
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-stop:
			return w.fw.Close()

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if w.shouldIgnore(event.Name) {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.Debounce)
			pending = timer.C

		case <-pending:
			pending = nil
			w.Log.Info("filesystem change detected, rebuilding")
			w.Build()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.Log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.Root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if ignoredDirs[part] {
			return true
		}
	}
	return false
}

// Close releases the underlying filesystem watch.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
