package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/csfacts/internal/logging"
)

// FileEventType is the kind of change seen for a path.
type FileEventType int

const (
	FileEventCreate FileEventType = iota
	FileEventWrite
	FileEventRemove
	FileEventRename
)

func (t FileEventType) String() string {
	switch t {
	case FileEventCreate:
		return "create"
	case FileEventWrite:
		return "write"
	case FileEventRemove:
		return "remove"
	default:
		return "rename"
	}
}

// Batch is the set of source files that changed during one debounce
// window, keyed by path with the latest event seen.
type Batch map[string]FileEventType

// Paths returns the changed paths, sorted.
func (b Batch) Paths() []string {
	out := make([]string, 0, len(b))
	for p := range b {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Watcher reports changes to the source files of a project. Events are
// debounced: a batch is delivered once no relevant event arrived for the
// debounce interval.
type Watcher struct {
	watcher  *fsnotify.Watcher
	disc     *Discoverer
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher for the files disc accepts.
func NewWatcher(disc *Discoverer, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Watcher{watcher: w, disc: disc, debounce: debounce, logger: logger}, nil
}

// Run watches the project root until ctx is done, calling onBatch from the
// calling goroutine for every debounced batch. The watcher is closed when
// Run returns.
func (w *Watcher) Run(ctx context.Context, onBatch func(context.Context, Batch)) error {
	defer w.watcher.Close()

	root := w.disc.Root()
	if err := w.addWatches(root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", root, err)
	}
	w.logger.Info("watching for changes", "root", root)

	pending := make(Batch)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			path, kind, relevant := w.classify(event)
			if !relevant {
				continue
			}
			pending[path] = kind
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := pending
			pending = make(Batch)
			w.logger.Info("processing debounced file events", "count", len(batch))
			onBatch(ctx, batch)
		}
	}
}

// classify maps an fsnotify event to a source file change. New
// directories get a watch and produce no change of their own.
func (w *Watcher) classify(event fsnotify.Event) (string, FileEventType, bool) {
	path := event.Name
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !w.disc.excludedDir(path) {
			if err := w.addWatches(path); err != nil {
				w.logger.Warn("failed to watch new directory", "dir", path, "error", err)
			}
		}
		return "", 0, false
	}
	if !w.disc.Accept(path) {
		return "", 0, false
	}

	switch {
	case event.Op&fsnotify.Remove != 0:
		return path, FileEventRemove, true
	case event.Op&fsnotify.Rename != 0:
		return path, FileEventRename, true
	case event.Op&fsnotify.Create != 0:
		return path, FileEventCreate, true
	case event.Op&fsnotify.Write != 0:
		return path, FileEventWrite, true
	}
	return "", 0, false
}

// addWatches adds a watch to root and every directory below it that is
// not excluded. Symlinked directories are not followed.
func (w *Watcher) addWatches(root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && w.disc.excludedDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to add watch", "dir", path, "error", err)
		}
		return nil
	})
}
