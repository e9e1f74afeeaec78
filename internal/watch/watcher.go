// Package watch re-runs the pipeline when the model sources change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/modelgen/internal/logfields"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a directory tree and calls OnChange once per burst of
// relevant changes.
type Watcher struct {
	root     string
	onChange func(ctx context.Context) error
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// New creates a watcher over root. onChange is never called concurrently
// with itself.
func New(root string, debounce time.Duration, onChange func(ctx context.Context) error) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{root: absRoot, onChange: onChange, debounce: debounce, watcher: fw}
	if err := w.addTree(absRoot); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		slog.Debug("Watching directory", logfields.Path(path))
		return nil
	})
}

// Run blocks until ctx is done, dispatching debounced change notifications.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()
	slog.Info("Watching model sources", logfields.Path(w.root))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Model source change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Model watcher error", logfields.Error(err))
		case <-timer.C:
			pending = false
			if err := w.onChange(ctx); err != nil {
				slog.Error("Rebuild after change failed", logfields.Error(err))
			}
		}
	}
}

// relevant reports whether event should trigger a rebuild. New directories
// are added to the watch set as a side effect.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
			}
			return true
		}
	}
	if filepath.Ext(event.Name) != ".go" {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
