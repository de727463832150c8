// Package tui is the terminal explorer. It renders the ordered tree, maps
// keys to ordering commands and turns mouse gestures into drag reordering.
package tui

import (
	"fmt"
	"time"

	"treeorder/internal/drag"
	"treeorder/internal/engine"
	"treeorder/internal/explorer"
	"treeorder/internal/log"
	"treeorder/internal/order"
	"treeorder/pkg/types"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// CellThreshold is the drag threshold in terminal cells.
const CellThreshold = 1

// headerLines is the number of lines above the first tree row.
const headerLines = 1

// Options configure the explorer model.
type Options struct {
	Title         string
	FrameInterval time.Duration
	Drag          drag.Options
}

// Model is the bubbletea model of the explorer.
type Model struct {
	engine   *engine.Engine
	explorer *explorer.Explorer
	drag     *drag.Controller
	frames   *frameScheduler

	keys  KeyMap
	help  help.Model
	title string

	visual  drag.Visual
	pressed string
	status  string
	failed  bool

	width  int
	height int
}

// New builds the model and registers its drag controller with eng. The
// engine renders into ex, so ex must be the view eng was activated with.
func New(eng *engine.Engine, ex *explorer.Explorer, opts Options) *Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = drag.DefaultFrameInterval
	}
	if opts.Drag.Threshold <= 0 {
		opts.Drag.Threshold = CellThreshold
	}
	if opts.Title == "" {
		opts.Title = ex.Root.Name
	}
	m := &Model{
		engine:   eng,
		explorer: ex,
		frames:   newFrameScheduler(opts.FrameInterval),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		title:    opts.Title,
	}
	m.drag = drag.NewController(ex, m.frames, m.indicate, m.drop, opts.Drag)
	eng.AttachDrag(m.drag)
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case frameMsg:
		m.frames.fire(msg)
	}
	return m, m.frames.cmd()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.explorer.Width = float64(width)
	m.explorer.Height = max(1, height-headerLines-m.footerLines())
	m.explorer.EnsureCursorVisible()
}

func (m *Model) footerLines() int {
	return 1 + lipgloss.Height(m.help.View(m.keys))
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.drag.Teardown()
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		if m.height > 0 {
			m.resize(m.width, m.height)
		}
	case key.Matches(msg, m.keys.Cancel):
		m.drag.Cancel()
	case key.Matches(msg, m.keys.Up):
		m.explorer.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.explorer.MoveDown()
	case key.Matches(msg, m.keys.Expand):
		if n := m.explorer.Current(); n != nil && n.IsFolder {
			m.explorer.Expand(n.ID)
		}
	case key.Matches(msg, m.keys.Collapse):
		n := m.explorer.Current()
		if n != nil && n.IsFolder && n.Open {
			m.explorer.Collapse(n.ID)
		} else {
			m.explorer.MoveToParent()
		}
	case key.Matches(msg, m.keys.MoveUp):
		m.move(m.engine.MoveUp, "up")
	case key.Matches(msg, m.keys.MoveDown):
		m.move(m.engine.MoveDown, "down")
	case key.Matches(msg, m.keys.Reset):
		m.reset()
	case key.Matches(msg, m.keys.Reconcile):
		report := m.engine.Reconcile()
		m.setStatus("reconciled: "+report.String(), false)
	case key.Matches(msg, m.keys.Toggle):
		on := !m.engine.Settings().Enabled
		m.engine.SetEnabled(on)
		m.setStatus("custom order "+onOff(on), false)
	case key.Matches(msg, m.keys.FoldersFirst):
		on := !m.engine.Settings().FoldersFirst
		m.engine.SetFoldersFirst(on)
		m.setStatus("folders first "+onOff(on), false)
	case key.Matches(msg, m.keys.NewItems):
		pos := types.PositionTop
		if m.engine.Settings().NewItemPosition == types.PositionTop {
			pos = types.PositionBottom
		}
		m.engine.SetNewItemPosition(pos)
		m.setStatus("new items go to the "+string(pos), false)
	}
	return nil
}

// move applies an engine move to the item under the cursor and keeps the
// cursor on it.
func (m *Model) move(fn func(string) bool, dir string) {
	n := m.explorer.Current()
	if n == nil {
		return
	}
	if !m.engine.Settings().Enabled {
		m.setStatus("custom order is off", true)
		return
	}
	if !fn(n.ID) {
		m.setStatus(fmt.Sprintf("cannot move %s %s", n.Name, dir), true)
		return
	}
	m.explorer.Select(n.ID)
	m.setStatus(fmt.Sprintf("moved %s %s", n.Name, dir), false)
}

// reset discards the order of the open folder under the cursor, or of the
// folder containing the cursor item.
func (m *Model) reset() {
	n := m.explorer.Current()
	if n == nil {
		return
	}
	folder := order.ParentID(n.ID)
	if n.IsFolder && n.Open {
		folder = n.ID
	}
	m.engine.ResetFolder(folder)
	m.explorer.Select(n.ID)
	name := m.title
	if folder != order.RootID {
		name = order.Name(folder)
	}
	m.setStatus("order reset in "+name, false)
}

// handleMouse maps cells to tree coordinates. A cell maps to its top edge,
// so hovering a row resolves to the gap above it.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := drag.Point{X: float64(msg.X), Y: float64(msg.Y - headerLines)}
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			n, ok := m.explorer.RowAt(p.Y)
			if !ok {
				return
			}
			m.explorer.Select(n.ID)
			m.pressed = n.ID
			m.drag.PointerDown(n.ID, p)
		case tea.MouseButtonWheelUp:
			m.explorer.MoveUp()
		case tea.MouseButtonWheelDown:
			m.explorer.MoveDown()
		}
	case tea.MouseActionMotion:
		m.drag.PointerMove(p, msg.Button == tea.MouseButtonLeft)
	case tea.MouseActionRelease:
		pressed := m.pressed
		m.pressed = ""
		if m.drag.State() == drag.Dragging {
			// Ticks are coarse in a terminal; resolve the last sample first.
			m.frames.flush()
			m.drag.PointerUp(p)
			return
		}
		m.drag.PointerUp(p)
		if n, ok := m.explorer.RowAt(p.Y); ok && n.ID == pressed && n.IsFolder {
			m.explorer.Toggle(n.ID)
		}
	}
}

// indicate is the drag.Indicator of the model.
func (m *Model) indicate(v drag.Visual) {
	m.visual = v
}

// drop is the drag.Dropper of the model.
func (m *Model) drop(id, targetID string, pos order.Position) bool {
	if !m.engine.Drop(id, targetID, pos) {
		m.setStatus("cannot move "+order.Name(id), true)
		return false
	}
	m.explorer.Select(id)
	m.setStatus(fmt.Sprintf("moved %s %s %s", order.Name(id), pos, order.Name(targetID)), false)
	return true
}

func (m *Model) setStatus(msg string, failed bool) {
	m.status = msg
	m.failed = failed
	if failed {
		log.Debug(msg)
	}
}

// Status returns the last status message.
func (m *Model) Status() string {
	return m.status
}

// Explorer returns the tree the model renders.
func (m *Model) Explorer() *explorer.Explorer {
	return m.explorer
}

// Drag returns the drag controller of the model.
func (m *Model) Drag() *drag.Controller {
	return m.drag
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
