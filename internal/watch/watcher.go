package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"

	"treeorder/internal/log"
)

// DefaultRenameWindow is how long a Rename waits for its matching Create.
const DefaultRenameWindow = 100 * time.Millisecond

// Op is the kind of tree change.
type Op int

const (
	Created Op = iota
	Removed
	Renamed
	// Written is only reported for files; tree structure is unchanged.
	Written
)

func (o Op) String() string {
	switch o {
	case Created:
		return "created"
	case Removed:
		return "removed"
	case Renamed:
		return "renamed"
	case Written:
		return "written"
	}
	return "unknown"
}

// Event is a tree change detected by the watcher. Paths are absolute.
type Event struct {
	Op        Op
	Path      string
	OldPath   string // set for Renamed
	IsDir     bool
	Timestamp time.Time
}

// Options configure a Watcher.
type Options struct {
	RenameWindow time.Duration
	// Skip reports directories that must not be watched recursively.
	Skip func(path string) bool
}

// Watcher monitors a directory tree using fsnotify. fsnotify reports a
// rename as Rename on the old path followed by Create on the new one; the
// watcher pairs them into a single Renamed event when they arrive within
// the rename window, and reports a lone Rename as Removed.
type Watcher struct {
	opts Options

	// Channel to deliver tree events
	events chan Event

	// Channel to signal stop
	stopChan chan struct{}
	done     chan struct{}

	fsWatcher *fsnotify.Watcher

	// Lock for running state and the directory set
	mutex       sync.RWMutex
	directories map[string]struct{}
	running     bool
}

// New creates a new tree watcher
func New(opts Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if opts.RenameWindow <= 0 {
		opts.RenameWindow = DefaultRenameWindow
	}
	if opts.Skip == nil {
		opts.Skip = func(string) bool { return false }
	}
	return &Watcher{
		opts:        opts,
		events:      make(chan Event, 64),
		fsWatcher:   fsWatcher,
		directories: map[string]struct{}{},
	}, nil
}

// AddDirectory watches a single directory.
func (w *Watcher) AddDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}
	w.mutex.Lock()
	w.directories[filepath.Clean(dir)] = struct{}{}
	w.mutex.Unlock()
	log.LogWithFields(log.F("directory", dir)).Debug("watching directory")
	return nil
}

// AddTree watches root and every directory below it that Skip accepts.
func (w *Watcher) AddTree(root string) error {
	if err := w.AddDirectory(root); err != nil {
		return err
	}
	var (
		mu   sync.Mutex
		dirs []string
	)
	err := fastwalk.Walk(&fastwalk.Config{}, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == root || !d.IsDir() {
			return nil
		}
		if w.opts.Skip(path) {
			return fastwalk.SkipDir
		}
		mu.Lock()
		dirs = append(dirs, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}
	for _, dir := range dirs {
		if err := w.AddDirectory(dir); err != nil {
			log.LogWithFields(log.F("directory", dir), log.F("error", err)).Warn("cannot watch directory")
		}
	}
	return nil
}

// forget drops dir and everything below it from the directory set and
// releases their watches.
func (w *Watcher) forget(dir string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	prefix := dir + string(filepath.Separator)
	for d := range w.directories {
		if d == dir || strings.HasPrefix(d, prefix) {
			delete(w.directories, d)
			// already gone when the directory itself was removed
			_ = w.fsWatcher.Remove(d)
		}
	}
}

func (w *Watcher) isDir(path string) bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	_, ok := w.directories[path]
	return ok
}

// Events returns the channel that delivers tree events. It is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins the event loop.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	w.mutex.Unlock()

	go w.loop()
	log.Debug("watcher started")
	return nil
}

type pendingRename struct {
	path  string
	isDir bool
}

// renamePair reports whether a create at newPath can be the second half of
// a rename from oldPath: either the name is kept or the parent is.
func renamePair(oldPath, newPath string) bool {
	return filepath.Base(oldPath) == filepath.Base(newPath) || filepath.Dir(oldPath) == filepath.Dir(newPath)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var (
		pending *pendingRename
		expire  <-chan time.Time
	)
	flush := func() {
		if pending != nil {
			w.forget(pending.path)
			w.emit(Event{Op: Removed, Path: pending.path, IsDir: pending.isDir})
			pending, expire = nil, nil
		}
	}

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				flush()
				return
			}
			path := filepath.Clean(event.Name)

			switch {
			case event.Op.Has(fsnotify.Create):
				info, err := os.Lstat(path)
				if err != nil {
					// gone again before we looked
					continue
				}
				isDir := info.IsDir()
				if isDir && !w.opts.Skip(path) {
					if err := w.AddTree(path); err != nil {
						log.LogWithFields(log.F("directory", path), log.F("error", err)).Warn("cannot watch new directory")
					}
				}
				if pending != nil && renamePair(pending.path, path) {
					old := pending
					pending, expire = nil, nil
					w.forget(old.path)
					w.emit(Event{Op: Renamed, Path: path, OldPath: old.path, IsDir: isDir})
					continue
				}
				flush()
				w.emit(Event{Op: Created, Path: path, IsDir: isDir})

			case event.Op.Has(fsnotify.Rename):
				flush()
				pending = &pendingRename{path: path, isDir: w.isDir(path)}
				expire = time.After(w.opts.RenameWindow)

			case event.Op.Has(fsnotify.Remove):
				isDir := w.isDir(path)
				w.forget(path)
				w.emit(Event{Op: Removed, Path: path, IsDir: isDir})

			case event.Op.Has(fsnotify.Write):
				w.emit(Event{Op: Written, Path: path})
			}

		case <-expire:
			flush()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				flush()
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) emit(ev Event) {
	ev.Timestamp = time.Now()
	select {
	case w.events <- ev:
	case <-w.stopChan:
	}
}

// Stop halts the watcher and closes the event channel.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if !w.running {
		w.mutex.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	w.mutex.Unlock()

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("error closing fsnotify watcher")
	}
	<-w.done
	close(w.events)
	log.Debug("watcher stopped")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// GetDirectories returns the watched directories, unsorted.
func (w *Watcher) GetDirectories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	out := make([]string, 0, len(w.directories))
	for d := range w.directories {
		out = append(out, d)
	}
	return out
}
