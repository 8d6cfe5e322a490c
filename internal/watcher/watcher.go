// Package watcher reports debounced batches of file changes.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the quiet period after the last change before a batch is
// delivered.
const DefaultDelay = 100 * time.Millisecond

// EventType is the kind of a file change.
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType.
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// ChangeEvent is one changed path. A batch holds at most one event per path,
// the latest one.
type ChangeEvent struct {
	Type EventType
	Path string
}

// Filter decides whether a path is of interest.
type Filter func(path string) bool

// Handler receives a debounced batch, sorted by path.
type Handler func(ctx context.Context, events []ChangeEvent) error

// Watcher watches files and directories and groups rapid changes together.
type Watcher struct {
	fs     *fsnotify.Watcher
	delay  time.Duration
	logger *slog.Logger

	mu      sync.RWMutex
	filters []Filter
	// files are paths added explicitly as files. Their parent directories are
	// watched, and events for them bypass the filters.
	files map[string]struct{}
	// dirs are the recursively watched directories.
	dirs map[string]struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the watcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher that waits delay after the last change before
// delivering a batch. A non-positive delay means DefaultDelay.
func New(delay time.Duration, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	w := &Watcher{
		fs:     fsw,
		delay:  delay,
		logger: slog.Default(),
		files:  make(map[string]struct{}),
		dirs:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// AddFilter adds a filter. A directory event must pass every filter.
func (w *Watcher) AddFilter(filter Filter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filters = append(w.filters, filter)
}

// Add watches each path. Directories are watched recursively; for a file,
// its directory is watched and only that file is reported from it unless
// the directory was added too.
func (w *Watcher) Add(paths ...string) error {
	for _, path := range paths {
		clean := filepath.Clean(path)
		info, err := os.Stat(clean)
		if err != nil {
			return fmt.Errorf("cannot watch %s: %w", path, err)
		}
		if !info.IsDir() {
			w.mu.Lock()
			w.files[clean] = struct{}{}
			w.mu.Unlock()
			if err := w.fs.Add(filepath.Dir(clean)); err != nil {
				return fmt.Errorf("cannot watch %s: %w", path, err)
			}
			continue
		}
		if err := w.addRecursive(clean); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("cannot watch %s: %w", path, err)
		}
		w.mu.Lock()
		w.dirs[path] = struct{}{}
		w.mu.Unlock()
		return nil
	})
}

// WatchList returns the watched directories.
func (w *Watcher) WatchList() []string {
	list := w.fs.WatchList()
	slices.Sort(list)
	return list
}

// Run delivers batches to handler until ctx is cancelled. Handler errors are
// logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	pending := make(map[string]ChangeEvent)
	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			change, keep := w.convert(event)
			if !keep {
				continue
			}
			pending[change.Path] = change
			timer.Reset(w.delay)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error.", "error", err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]ChangeEvent, 0, len(pending))
			for _, change := range pending {
				batch = append(batch, change)
			}
			clear(pending)
			slices.SortFunc(batch, func(a, b ChangeEvent) int { return strings.Compare(a.Path, b.Path) })

			w.logger.Debug("File changes detected.", "count", len(batch))
			if err := handler(ctx, batch); err != nil {
				w.logger.Error("File change handler failed.", "error", err)
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) convert(event fsnotify.Event) (ChangeEvent, bool) {
	path := filepath.Clean(event.Name)
	if event.Op == fsnotify.Chmod {
		return ChangeEvent{}, false
	}
	if event.Op.Has(fsnotify.Create) && w.inWatchedDir(path) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !strings.HasPrefix(info.Name(), ".") {
				if err := w.addRecursive(path); err != nil {
					w.logger.Warn("Cannot watch new directory.", "path", path, "error", err)
				}
			}
			return ChangeEvent{}, false
		}
	}
	if !w.accepts(path) {
		return ChangeEvent{}, false
	}

	var eventType EventType
	switch {
	case event.Op.Has(fsnotify.Create):
		eventType = EventTypeCreated
	case event.Op.Has(fsnotify.Write):
		eventType = EventTypeModified
	case event.Op.Has(fsnotify.Remove):
		eventType = EventTypeDeleted
	case event.Op.Has(fsnotify.Rename):
		eventType = EventTypeRenamed
	default:
		eventType = EventTypeModified
	}
	return ChangeEvent{Type: eventType, Path: path}, true
}

// accepts reports whether path is an explicitly added file or lives in a
// recursively added directory and passes every filter.
func (w *Watcher) accepts(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if _, ok := w.files[path]; ok {
		return true
	}
	if _, ok := w.dirs[filepath.Dir(path)]; !ok {
		return false
	}
	for _, filter := range w.filters {
		if !filter(path) {
			return false
		}
	}
	return true
}

func (w *Watcher) inWatchedDir(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.dirs[filepath.Dir(path)]
	return ok
}

// ExtensionFilter accepts paths ending in one of exts.
func ExtensionFilter(exts ...string) Filter {
	return func(path string) bool {
		return slices.Contains(exts, filepath.Ext(path))
	}
}

// NoHiddenFilter rejects dot files, which editors use for swap and backup
// files.
func NoHiddenFilter(path string) bool {
	return !strings.HasPrefix(filepath.Base(path), ".")
}
