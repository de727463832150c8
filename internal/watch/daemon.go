package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"treeorder/internal/config"
	"treeorder/internal/log"
	"treeorder/internal/order"
	"treeorder/internal/vault"
)

// Sink receives tree changes as vault identifiers. The daemon calls it from
// one goroutine only.
type Sink interface {
	HandleCreated(id string)
	HandleDeleted(id string)
	HandleRenamed(newID, oldID string)
	ReloadSettings() error
}

// DaemonStatus represents the current status of the daemon
type DaemonStatus struct {
	Running         bool      // Whether the daemon is currently active
	Vault           string    // Root being watched
	Directories     int       // Number of watched directories
	LastActivity    time.Time // Time of last tree change
	EventsProcessed int       // Total tree events applied
	Reloads         int       // Settings reloads after external edits
}

// Daemon keeps the stored order in step with the filesystem.
type Daemon struct {
	vault        *vault.Vault
	sink         Sink
	watcher      *Watcher
	settingsPath string
	debounce     time.Duration

	// Statistics
	processed    int
	reloads      int
	lastActivity time.Time

	// Callback invoked after each applied event
	callback func(Event)

	// Lock for statistics, callback and running state
	mutex   sync.RWMutex
	running bool
	done    chan struct{}
}

// NewDaemon creates a daemon watching v and feeding sink.
func NewDaemon(cfg *config.Config, v *vault.Vault, sink Sink) (*Daemon, error) {
	settingsPath, err := filepath.Abs(cfg.SettingsPath())
	if err != nil {
		return nil, fmt.Errorf("cannot resolve settings path: %w", err)
	}
	watcher, err := New(Options{
		RenameWindow: cfg.RenameWindow(),
		Skip: func(path string) bool {
			id, err := v.IDFor(path)
			return err != nil || v.Ignored(id)
		},
	})
	if err != nil {
		return nil, err
	}
	return &Daemon{
		vault:        v,
		sink:         sink,
		watcher:      watcher,
		settingsPath: settingsPath,
		debounce:     cfg.Debounce(),
	}, nil
}

// Start initiates the daemon process
func (d *Daemon) Start() error {
	d.mutex.Lock()
	if d.running {
		d.mutex.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.done = make(chan struct{})
	d.mutex.Unlock()

	if err := d.watcher.AddTree(d.vault.Root()); err != nil {
		d.setStopped()
		return fmt.Errorf("error watching vault: %w", err)
	}
	// The settings directory is usually hidden, so it is watched on its own.
	settingsDir := filepath.Dir(d.settingsPath)
	if err := os.MkdirAll(settingsDir, 0755); err == nil {
		if err := d.watcher.AddDirectory(settingsDir); err != nil {
			log.LogWithFields(log.F("directory", settingsDir), log.F("error", err)).Warn("settings changes will not be picked up")
		}
	}
	if err := d.watcher.Start(); err != nil {
		d.setStopped()
		return fmt.Errorf("error starting watcher: %w", err)
	}

	go d.processEvents()
	log.LogWithFields(log.F("vault", d.vault.Root()), log.F("settings", d.settingsPath)).Info("watch daemon started")
	return nil
}

// Run starts the daemon and blocks until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

// Stop halts the daemon process
func (d *Daemon) Stop() {
	d.mutex.RLock()
	running := d.running
	d.mutex.RUnlock()
	if !running {
		return
	}
	d.watcher.Stop()
	<-d.done
	d.setStopped()
	log.Info("watch daemon stopped")
}

func (d *Daemon) setStopped() {
	d.mutex.Lock()
	d.running = false
	d.mutex.Unlock()
}

// SetCallback sets a function to be called after an event was applied
func (d *Daemon) SetCallback(cb func(Event)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = cb
}

// Status returns the current status of the daemon
func (d *Daemon) Status() DaemonStatus {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return DaemonStatus{
		Running:         d.running,
		Vault:           d.vault.Root(),
		Directories:     len(d.watcher.GetDirectories()),
		LastActivity:    d.lastActivity,
		EventsProcessed: d.processed,
		Reloads:         d.reloads,
	}
}

// processEvents is the only goroutine touching the sink.
func (d *Daemon) processEvents() {
	defer close(d.done)

	var reload <-chan time.Time
	events := d.watcher.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if d.touchesSettings(ev) {
				reload = time.After(d.debounce)
				continue
			}
			if d.apply(ev) {
				d.mutex.Lock()
				d.processed++
				d.lastActivity = ev.Timestamp
				cb := d.callback
				d.mutex.Unlock()
				if cb != nil {
					cb(ev)
				}
			}
		case <-reload:
			reload = nil
			if err := d.sink.ReloadSettings(); err != nil {
				log.LogWithError(err).Error("failed to reload settings")
				continue
			}
			d.mutex.Lock()
			d.reloads++
			d.mutex.Unlock()
		}
	}
}

func (d *Daemon) touchesSettings(ev Event) bool {
	return ev.Path == d.settingsPath || (ev.Op == Renamed && ev.OldPath == d.settingsPath)
}

// id maps a path to a visible vault identifier.
func (d *Daemon) id(path string) (string, bool) {
	id, err := d.vault.IDFor(path)
	if err != nil || id == order.RootID || d.vault.Ignored(id) {
		return "", false
	}
	return id, true
}

// apply forwards ev to the sink and reports whether it was relevant.
func (d *Daemon) apply(ev Event) bool {
	switch ev.Op {
	case Created:
		id, ok := d.id(ev.Path)
		if !ok {
			return false
		}
		d.sink.HandleCreated(id)
	case Removed:
		id, ok := d.id(ev.Path)
		if !ok {
			return false
		}
		d.sink.HandleDeleted(id)
	case Renamed:
		newID, newOK := d.id(ev.Path)
		oldID, oldOK := d.id(ev.OldPath)
		switch {
		case newOK && oldOK:
			d.sink.HandleRenamed(newID, oldID)
		case newOK:
			d.sink.HandleCreated(newID)
		case oldOK:
			d.sink.HandleDeleted(oldID)
		default:
			return false
		}
	default:
		return false
	}
	log.LogWithFields(log.F("op", ev.Op.String()), log.F("path", ev.Path), log.F("old", ev.OldPath)).Debug("applied tree event")
	return true
}
