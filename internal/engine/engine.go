// Package engine wires the order manager, the settings store, the host tree
// and the drag controller together. Every exported method mutates in memory,
// flushes the settings blob, then asks the view to re-render.
//
// The engine is not safe for concurrent use. Front ends deliver all calls
// from a single goroutine.
package engine

import (
	"context"
	"time"

	"treeorder/internal/drag"
	"treeorder/internal/errors"
	"treeorder/internal/log"
	"treeorder/internal/order"
	"treeorder/internal/store"
	"treeorder/pkg/types"
)

// DefaultStartupDelay is the wait between activation attempts.
const DefaultStartupDelay = 500 * time.Millisecond

// Host is the tree the engine orders.
type Host interface {
	order.Tree
	order.Interceptable
}

// View re-renders the tree after the order changed.
type View interface {
	// Sort re-renders the top level.
	Sort()
	// RefreshExpanded re-renders the listed folders if they are expanded.
	RefreshExpanded(folderIDs []string)
	// ExpandedFolders lists the open folders below the root.
	ExpandedFolders() []string
	// Refresh reloads the tree after items were created, deleted or renamed.
	Refresh()
}

// Options configure an engine.
type Options struct {
	StartupDelay time.Duration
	// Attempts bounds ActivateWithRetry. Zero means retry until the context ends.
	Attempts int
}

// Engine is the ordering engine exposed to front ends.
type Engine struct {
	store   store.Store
	manager *order.Manager
	opts    Options

	host  Host
	view  View
	patch *order.Patch
	drag  *drag.Controller

	// activation is the reconcile pass run by the last Activate.
	activation order.ReconcileReport
}

// New returns an engine persisting through st. Call Load before Activate.
func New(st store.Store, opts Options) *Engine {
	if opts.StartupDelay <= 0 {
		opts.StartupDelay = DefaultStartupDelay
	}
	return &Engine{
		store:   st,
		manager: order.NewManager(types.DefaultSettings(), nil),
		opts:    opts,
	}
}

// Load reads the settings blob from the store.
func (e *Engine) Load() error {
	s, err := e.store.Load()
	if err != nil {
		return err
	}
	e.manager.SetSettings(s)
	log.LogWithFields(
		log.F("store", e.store.Path()),
		log.F("folders", len(s.CustomOrder)),
		log.F("enabled", s.Enabled),
	).Debug("settings loaded")
	return nil
}

// Activate attaches the engine to host and view: stored order is
// reconciled against the live tree, the children accessor is patched and
// the tree is re-rendered. A nil host yields errors.ErrHostUnavailable.
func (e *Engine) Activate(host Host, view View) error {
	if host == nil {
		return errors.ErrHostUnavailable
	}
	e.host = host
	e.view = view
	e.manager.SetTree(host)

	e.activation = e.manager.Reconcile()
	if e.activation.Changed() {
		e.flush()
	}
	if e.patch != nil {
		e.patch.Dispose()
	}
	e.patch = order.Install(host, e)
	e.syncDrag()
	e.render()
	log.Info("ordering engine activated")
	return nil
}

// ActivateWithRetry resolves the host and activates, waiting StartupDelay
// between attempts while the host is not available yet.
func (e *Engine) ActivateWithRetry(ctx context.Context, resolve func() (Host, View)) error {
	for attempt := 1; ; attempt++ {
		host, view := resolve()
		err := e.Activate(host, view)
		if err == nil || !errors.IsHostUnavailable(err) {
			return err
		}
		if e.opts.Attempts > 0 && attempt >= e.opts.Attempts {
			return err
		}
		log.LogWithFields(log.F("attempt", attempt), log.F("delay", e.opts.StartupDelay)).Debug("tree view not ready, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.opts.StartupDelay):
		}
	}
}

// ActivationReport returns what the reconcile pass of the last Activate changed.
func (e *Engine) ActivationReport() order.ReconcileReport {
	return e.activation
}

// Deactivate restores the host's default rendering and detaches drag.
func (e *Engine) Deactivate() {
	if e.patch != nil {
		e.patch.Dispose()
		e.patch = nil
	}
	if e.drag != nil {
		e.drag.Detach()
	}
	e.render()
	e.manager.SetTree(nil)
	e.host = nil
	e.view = nil
}

// Active reports whether a host is attached.
func (e *Engine) Active() bool {
	return e.host != nil
}

// AttachDrag registers the drag controller of the current front end. It is
// attached while the engine is enabled.
func (e *Engine) AttachDrag(c *drag.Controller) {
	e.drag = c
	e.syncDrag()
}

func (e *Engine) syncDrag() {
	if e.drag == nil {
		return
	}
	if e.host != nil && e.manager.Settings().Enabled {
		e.drag.Attach()
		return
	}
	e.drag.Detach()
}

// Enabled implements order.OrderSource.
func (e *Engine) Enabled() bool {
	return e.manager.Settings().Enabled
}

// FoldersFirst implements order.OrderSource.
func (e *Engine) FoldersFirst() bool {
	return e.manager.Settings().FoldersFirst
}

// Order implements order.OrderSource.
func (e *Engine) Order(folderID string) []string {
	return e.manager.Order(folderID)
}

// Settings returns a copy of the live settings.
func (e *Engine) Settings() *types.Settings {
	return e.manager.Settings().Clone()
}

// MoveUp moves id one position up within its folder.
func (e *Engine) MoveUp(id string) bool {
	if !e.manager.MoveUp(id) {
		return false
	}
	e.commit()
	return true
}

// MoveDown moves id one position down within its folder.
func (e *Engine) MoveDown(id string) bool {
	if !e.manager.MoveDown(id) {
		return false
	}
	e.commit()
	return true
}

// MoveItem reinserts id next to targetID. Both must share a parent.
func (e *Engine) MoveItem(id, targetID string, pos order.Position) bool {
	if order.ParentID(id) != order.ParentID(targetID) {
		return false
	}
	if !e.manager.MoveItem(id, targetID, pos) {
		return false
	}
	e.commit()
	return true
}

// Drop is the drag.Dropper for front ends.
func (e *Engine) Drop(id, targetID string, pos order.Position) bool {
	return e.MoveItem(id, targetID, pos)
}

// ResetFolder discards the custom order of folderID.
func (e *Engine) ResetFolder(folderID string) {
	e.manager.ResetFolder(folderID)
	e.commit()
}

// Reconcile re-validates all stored order against the tree.
func (e *Engine) Reconcile() order.ReconcileReport {
	report := e.manager.Reconcile()
	if report.Changed() {
		e.flush()
		e.render()
	}
	return report
}

// HandleCreated records a new item.
func (e *Engine) HandleCreated(id string) {
	e.manager.OnItemCreated(id)
	e.flush()
	e.refresh()
}

// HandleDeleted forgets a removed item.
func (e *Engine) HandleDeleted(id string) {
	e.manager.OnItemDeleted(id)
	e.flush()
	e.refresh()
}

// HandleRenamed follows an item from oldID to newID.
func (e *Engine) HandleRenamed(newID, oldID string) {
	e.manager.OnItemRenamed(newID, oldID)
	e.flush()
	e.refresh()
}

// SetEnabled switches custom ordering and drag reordering on or off.
// Stored order is kept either way.
func (e *Engine) SetEnabled(enabled bool) {
	e.manager.Settings().Enabled = enabled
	e.syncDrag()
	e.commit()
	log.LogWithFields(log.F("enabled", enabled)).Info("custom order toggled")
}

// SetFoldersFirst changes folder grouping.
func (e *Engine) SetFoldersFirst(on bool) {
	e.manager.Settings().FoldersFirst = on
	e.commit()
}

// SetNewItemPosition changes where new items are placed.
func (e *Engine) SetNewItemPosition(pos types.NewItemPosition) {
	e.manager.Settings().NewItemPosition = pos
	e.flush()
}

// ReloadSettings re-reads the blob after it changed outside this process.
func (e *Engine) ReloadSettings() error {
	if err := e.Load(); err != nil {
		return err
	}
	e.syncDrag()
	e.render()
	log.Info("settings reloaded")
	return nil
}

func (e *Engine) commit() {
	e.flush()
	e.render()
}

// flush writes the settings blob. Failures are logged and otherwise ignored.
func (e *Engine) flush() {
	if err := e.store.Save(e.manager.Settings()); err != nil {
		log.LogWithError(err).Error("failed to save settings")
	}
}

func (e *Engine) render() {
	if e.view == nil {
		return
	}
	// Every open folder is re-rendered, not only those with a stored order:
	// a reset or a folders-first change affects the others too.
	e.view.Sort()
	e.view.RefreshExpanded(e.view.ExpandedFolders())
}

func (e *Engine) refresh() {
	if e.view == nil {
		return
	}
	e.view.Refresh()
}
