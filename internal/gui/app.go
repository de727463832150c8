//go:build !nogui

// Package gui is the desktop explorer built on fyne.
package gui

import (
	"fmt"
	"sync"

	"treeorder/internal/config"
	"treeorder/internal/drag"
	"treeorder/internal/engine"
	"treeorder/internal/explorer"
	"treeorder/internal/log"
	"treeorder/internal/order"
	"treeorder/internal/vault"
	"treeorder/internal/watch"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// App is the GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config
	engine     *engine.Engine
	explorer   *explorer.Explorer
	drag       *drag.Controller
	daemon     *watch.Daemon

	// mu serialises fyne callbacks, frame timers and daemon events.
	mu sync.Mutex

	tree        *TreeView
	statusLabel *widget.Label
	message     *widget.Label
	settings    *settingsCard
}

// Run opens the main window and blocks until it is closed. eng must be
// activated on v and ex.
func Run(cfg *config.Config, v *vault.Vault, eng *engine.Engine, ex *explorer.Explorer) error {
	a := NewApp(app.NewWithID("io.github.treeorder"), cfg, v, eng, ex)
	a.Run()
	return nil
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return true
}

// NewApp creates a new GUI application
func NewApp(fyneApp fyne.App, cfg *config.Config, v *vault.Vault, eng *engine.Engine, ex *explorer.Explorer) *App {
	a := &App{
		fyneApp:  fyneApp,
		cfg:      cfg,
		engine:   eng,
		explorer: ex,
	}

	a.tree = NewTreeView(ex, &a.mu)
	a.drag = drag.NewController(
		ex,
		drag.NewTimerScheduler(cfg.FrameInterval(), &a.mu),
		a.tree.Indicate,
		a.drop,
		drag.Options{Threshold: cfg.Drag.Threshold, RestrictToSiblings: cfg.Drag.RestrictToSiblings},
	)
	a.tree.SetController(a.drag)
	eng.AttachDrag(a.drag)

	daemon, err := watch.NewDaemon(cfg, v, &lockedSink{lock: &a.mu, sink: eng, after: a.tree.Sync})
	if err != nil {
		// The explorer still works without live updates.
		log.Errorf("Failed to create watch daemon: %v", err)
	} else {
		a.daemon = daemon
	}

	a.mainWindow = fyneApp.NewWindow("treeorder: " + ex.Root.Name)
	a.setupMainWindow()
	a.tree.OnChange = a.updateStatus
	a.updateStatus()
	return a
}

// Run starts the GUI application
func (a *App) Run() {
	if a.daemon != nil {
		if err := a.daemon.Start(); err != nil {
			log.LogWithError(err).Warn("watch mode unavailable")
		}
	}
	a.mainWindow.SetOnClosed(a.shutdown)
	a.mainWindow.ShowAndRun()
}

func (a *App) shutdown() {
	if a.daemon != nil {
		a.daemon.Stop()
	}
	a.mu.Lock()
	a.drag.Teardown()
	a.mu.Unlock()
}

// GetMainWindow returns the main window.
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

// setupMainWindow sets up the main window content
func (a *App) setupMainWindow() {
	a.mainWindow.Resize(fyne.NewSize(900, 700))

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.MoveUpIcon(), a.moveUp),
		widget.NewToolbarAction(theme.MoveDownIcon(), a.moveDown),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), a.resetFolder),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), a.reconcile),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.HelpIcon(), func() {
			dialog.ShowInformation("About treeorder",
				"Drag items to reorder them inside their folder,\n"+
					"or use the arrows to move the selected item.\n"+
					"The order is saved in "+a.cfg.SettingsPath()+".",
				a.mainWindow)
		}),
	)

	a.settings = a.createSettingsCard()
	a.statusLabel = widget.NewLabel("")
	a.message = widget.NewLabel("")

	content := container.NewBorder(
		toolbar,
		container.NewBorder(nil, nil, nil, a.message, a.statusLabel),
		nil,
		a.settings.card,
		a.tree,
	)
	a.mainWindow.SetContent(content)
	a.mainWindow.Canvas().SetOnTypedKey(a.typedKey)
	a.mainWindow.Canvas().SetOnTypedRune(a.typedRune)
}

func (a *App) typedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyUp:
		a.withTree(a.explorer.MoveUp)
	case fyne.KeyDown:
		a.withTree(a.explorer.MoveDown)
	case fyne.KeyRight, fyne.KeyReturn:
		a.withTree(func() {
			if n := a.explorer.Current(); n != nil {
				a.explorer.Expand(n.ID)
			}
		})
	case fyne.KeyLeft:
		a.withTree(func() {
			if n := a.explorer.Current(); n != nil && n.IsFolder && n.Open {
				a.explorer.Collapse(n.ID)
				return
			}
			a.explorer.MoveToParent()
		})
	case fyne.KeyEscape:
		a.withTree(a.drag.Cancel)
	}
}

func (a *App) typedRune(r rune) {
	switch r {
	case 'K':
		a.moveUp()
	case 'J':
		a.moveDown()
	}
}

// withTree runs fn under the lock and re-reads the explorer.
func (a *App) withTree(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn()
	a.tree.Sync()
}

func (a *App) moveUp() {
	a.move(a.engine.MoveUp, "up")
}

func (a *App) moveDown() {
	a.move(a.engine.MoveDown, "down")
}

func (a *App) move(fn func(string) bool, dir string) {
	a.withTree(func() {
		n := a.explorer.Current()
		if n == nil {
			return
		}
		if !fn(n.ID) {
			a.setStatus(fmt.Sprintf("Cannot move %s %s", n.Name, dir))
			return
		}
		a.explorer.Select(n.ID)
	})
}

func (a *App) resetFolder() {
	a.withTree(func() {
		n := a.explorer.Current()
		if n == nil {
			return
		}
		folder := order.ParentID(n.ID)
		if n.IsFolder && n.Open {
			folder = n.ID
		}
		a.engine.ResetFolder(folder)
		a.explorer.Select(n.ID)
	})
}

func (a *App) reconcile() {
	var report order.ReconcileReport
	a.withTree(func() {
		report = a.engine.Reconcile()
	})
	a.setStatus("Reconciled: " + report.String())
}

// drop is the drag.Dropper. The controller calls it under the lock.
func (a *App) drop(id, targetID string, pos order.Position) bool {
	ok := a.engine.Drop(id, targetID, pos)
	if ok {
		a.explorer.Select(id)
	}
	a.tree.Sync()
	return ok
}

// updateStatus renders the engine state. Callers hold the lock.
func (a *App) updateStatus() {
	if a.statusLabel == nil {
		return
	}
	s := a.engine.Settings()
	text := "Custom order " + onOff(s.Enabled)
	if s.Enabled && s.FoldersFirst {
		text += " · folders first"
	}
	text += " · new items at the " + string(s.NewItemPosition)
	if a.daemon != nil && a.daemon.Status().Running {
		text += " · watching"
	}
	a.statusLabel.SetText(text)
	if a.settings != nil {
		a.settings.load(s)
	}
}

func (a *App) setStatus(msg string) {
	if a.message != nil {
		a.message.SetText(msg)
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// lockedSink delivers daemon events under the GUI lock.
type lockedSink struct {
	lock  sync.Locker
	sink  watch.Sink
	after func()
}

func (s *lockedSink) do(fn func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	fn()
	if s.after != nil {
		s.after()
	}
}

func (s *lockedSink) HandleCreated(id string) {
	s.do(func() { s.sink.HandleCreated(id) })
}

func (s *lockedSink) HandleDeleted(id string) {
	s.do(func() { s.sink.HandleDeleted(id) })
}

func (s *lockedSink) HandleRenamed(newID, oldID string) {
	s.do(func() { s.sink.HandleRenamed(newID, oldID) })
}

func (s *lockedSink) ReloadSettings() error {
	var err error
	s.do(func() { err = s.sink.ReloadSettings() })
	return err
}
