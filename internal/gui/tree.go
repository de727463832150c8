//go:build !nogui

package gui

import (
	"image/color"
	"strings"
	"sync"

	"treeorder/internal/drag"
	"treeorder/internal/explorer"
	"treeorder/internal/order"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// DefaultRowHeight is the height of one tree row in pixels.
const DefaultRowHeight float32 = 28

var (
	cursorColor = color.NRGBA{R: 0x6B, G: 0x5E, B: 0xCD, A: 0xFF}
	folderColor = color.NRGBA{R: 0x81, G: 0xA1, B: 0xC1, A: 0xFF}
	dropColor   = color.NRGBA{R: 0x73, G: 0xF5, B: 0x9F, A: 0xFF}
	dimColor    = color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xFF}
)

// rowView is the part of an explorer row the renderer needs.
type rowView struct {
	ID     string
	Label  string
	Folder bool
	Cursor bool
}

// TreeView draws the explorer and turns mouse input into drag gestures.
// Primary button events drive the pointer path and fyne drag events the
// native path; the controller keeps whichever fires first.
//
// Input handlers hold lock while they touch the explorer or the
// controller. The renderer only reads the snapshot taken under lock.
type TreeView struct {
	widget.BaseWidget

	explorer  *explorer.Explorer
	drag      *drag.Controller
	lock      *sync.Mutex
	rowHeight float32

	held     bool
	pressed  string
	OnChange func()

	viewMu  sync.Mutex
	rows    []rowView
	visual  drag.Visual
	pending *fyne.Size
}

// NewTreeView returns a tree bound to ex. lock guards ex and the drag
// controller.
func NewTreeView(ex *explorer.Explorer, lock *sync.Mutex) *TreeView {
	w := &TreeView{explorer: ex, lock: lock, rowHeight: DefaultRowHeight}
	ex.RowHeight = float64(w.rowHeight)
	w.ExtendBaseWidget(w)
	w.sync()
	return w
}

// SetController installs the drag controller fed by this widget.
func (w *TreeView) SetController(c *drag.Controller) {
	w.drag = c
}

// Indicate implements drag.Indicator.
func (w *TreeView) Indicate(v drag.Visual) {
	w.viewMu.Lock()
	w.visual = v
	w.viewMu.Unlock()
	w.Refresh()
}

// Sync re-reads the explorer. Callers hold the lock.
func (w *TreeView) Sync() {
	w.applySize()
	w.sync()
}

func (w *TreeView) sync() {
	rows := w.explorer.Rows()
	start := w.explorer.Offset
	end := min(len(rows), start+max(w.explorer.Height, 0))
	snap := make([]rowView, 0, max(end-start, 0))
	for i := start; i < end; i++ {
		n := rows[i]
		snap = append(snap, rowView{
			ID:     n.ID,
			Label:  rowLabel(n),
			Folder: n.IsFolder,
			Cursor: i == w.explorer.Cursor,
		})
	}
	w.viewMu.Lock()
	w.rows = snap
	w.viewMu.Unlock()
	w.Refresh()
	if w.OnChange != nil {
		w.OnChange()
	}
}

func rowLabel(n *explorer.Node) string {
	icon := "📄 "
	if n.IsFolder {
		icon = "📁 "
		if n.Open {
			icon = "📂 "
		}
	}
	return strings.Repeat("    ", max(n.Level-1, 0)) + icon + n.Name
}

func (w *TreeView) point(pos fyne.Position) drag.Point {
	return drag.Point{X: float64(pos.X), Y: float64(pos.Y)}
}

func (w *TreeView) do(fn func()) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.applySize()
	fn()
}

// Resize records the new size. The explorer geometry follows right away
// unless the lock is busy, in which case the next input applies it.
func (w *TreeView) Resize(size fyne.Size) {
	w.BaseWidget.Resize(size)
	w.viewMu.Lock()
	w.pending = &size
	w.viewMu.Unlock()
	if w.lock.TryLock() {
		defer w.lock.Unlock()
		if w.applySize() {
			w.sync()
		}
	}
}

// applySize copies a pending size into the explorer. Callers hold the lock.
func (w *TreeView) applySize() bool {
	w.viewMu.Lock()
	size := w.pending
	w.pending = nil
	w.viewMu.Unlock()
	if size == nil {
		return false
	}
	w.explorer.Width = float64(size.Width)
	w.explorer.Height = max(1, int(size.Height/w.rowHeight))
	w.explorer.EnsureCursorVisible()
	return true
}

// Tapped implements fyne.Tappable. Tapping a folder toggles it.
func (w *TreeView) Tapped(ev *fyne.PointEvent) {
	w.do(func() {
		n, ok := w.explorer.RowAt(float64(ev.Position.Y))
		if !ok {
			return
		}
		w.explorer.Select(n.ID)
		if n.IsFolder {
			w.explorer.Toggle(n.ID)
		}
		w.sync()
	})
}

// Scrolled implements fyne.Scrollable.
func (w *TreeView) Scrolled(ev *fyne.ScrollEvent) {
	w.do(func() {
		if ev.Scrolled.DY > 0 {
			w.explorer.MoveUp()
		} else if ev.Scrolled.DY < 0 {
			w.explorer.MoveDown()
		}
		w.sync()
	})
}

// MouseDown implements desktop.Mouseable.
func (w *TreeView) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary || w.drag == nil {
		return
	}
	w.do(func() {
		w.held = true
		n, ok := w.explorer.RowAt(float64(ev.Position.Y))
		if !ok {
			return
		}
		w.pressed = n.ID
		w.drag.PointerDown(n.ID, w.point(ev.Position))
	})
}

// MouseUp implements desktop.Mouseable.
func (w *TreeView) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary || w.drag == nil {
		return
	}
	w.do(func() {
		w.held = false
		w.pressed = ""
		w.drag.PointerUp(w.point(ev.Position))
	})
}

// MouseIn implements desktop.Hoverable.
func (w *TreeView) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (w *TreeView) MouseMoved(ev *desktop.MouseEvent) {
	if w.drag == nil {
		return
	}
	w.do(func() {
		w.drag.PointerMove(w.point(ev.Position), w.held)
	})
}

// MouseOut implements desktop.Hoverable.
func (w *TreeView) MouseOut() {}

// Dragged implements fyne.Draggable.
func (w *TreeView) Dragged(ev *fyne.DragEvent) {
	if w.drag == nil {
		return
	}
	w.do(func() {
		if w.drag.State() != drag.Dragging {
			id := w.pressed
			origin := ev.Position.Subtract(ev.Dragged)
			if id == "" {
				n, ok := w.explorer.RowAt(float64(origin.Y))
				if !ok {
					return
				}
				id = n.ID
			}
			w.drag.NativeDragStart(id, w.point(origin))
		}
		w.drag.NativeDrag(w.point(ev.Position))
	})
}

// DragEnd implements fyne.Draggable.
func (w *TreeView) DragEnd() {
	if w.drag == nil {
		return
	}
	w.do(func() {
		w.held = false
		w.pressed = ""
		w.drag.NativeDragEnd()
	})
}

// CreateRenderer implements fyne.Widget.
func (w *TreeView) CreateRenderer() fyne.WidgetRenderer {
	r := &treeRenderer{w: w, bg: canvas.NewRectangle(theme.BackgroundColor())}
	r.Refresh()
	return r
}

type treeRenderer struct {
	w       *TreeView
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
	size    fyne.Size
}

func (r *treeRenderer) Layout(size fyne.Size) {
	r.size = size
	r.Refresh()
}

func (r *treeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(240, r.w.rowHeight*3)
}

func (r *treeRenderer) Refresh() {
	r.w.viewMu.Lock()
	rows := append([]rowView(nil), r.w.rows...)
	visual := r.w.visual
	r.w.viewMu.Unlock()

	h := r.w.rowHeight
	r.bg.Resize(r.size)
	objects := []fyne.CanvasObject{r.bg}
	for i, row := range rows {
		top := float32(i) * h
		if row.Cursor {
			hl := canvas.NewRectangle(cursorColor)
			hl.Move(fyne.NewPos(0, top))
			hl.Resize(fyne.NewSize(r.size.Width, h))
			objects = append(objects, hl)
		}

		text := canvas.NewText(row.Label, theme.ForegroundColor())
		switch {
		case row.ID == visual.Dragging:
			text.Color = dimColor
			text.TextStyle.Italic = true
		case row.Folder:
			text.Color = folderColor
			text.TextStyle.Bold = true
		}
		text.Move(fyne.NewPos(theme.Padding(), top+(h-text.MinSize().Height)/2))
		objects = append(objects, text)

		if row.ID == visual.Target {
			y := top
			if visual.Side == order.After {
				y = top + h - 2
			}
			line := canvas.NewRectangle(dropColor)
			line.Move(fyne.NewPos(0, y))
			line.Resize(fyne.NewSize(r.size.Width, 2))
			objects = append(objects, line)
		}
	}
	r.objects = objects
	canvas.Refresh(r.w)
}

func (r *treeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *treeRenderer) Destroy() {}
