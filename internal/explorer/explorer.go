// Package explorer is the tree view model shared by the terminal and
// desktop front ends. Children are fetched through a Source, so an
// installed custom-order patch decides the order each folder renders in.
package explorer

import (
	"treeorder/internal/drag"
	"treeorder/internal/log"
	"treeorder/internal/order"
)

// Source lists the children of a folder in render order.
type Source interface {
	Children(folderID string) ([]order.Item, error)
}

// Node represents a node in the tree
type Node struct {
	ID       string
	Name     string
	IsFolder bool
	Open     bool
	Children []*Node
	Parent   *Node
	Level    int
}

// Explorer holds the tree, its expansion state and the rows currently shown.
type Explorer struct {
	src  Source
	Root *Node
	rows []*Node

	Cursor    int
	Offset    int
	Height    int // rows that fit in the view
	Width     float64
	RowHeight float64
}

// New builds an explorer with the root folder expanded.
func New(src Source, rootName string) *Explorer {
	e := &Explorer{
		src:       src,
		Root:      &Node{ID: order.RootID, Name: rootName, IsFolder: true, Open: true},
		Height:    20,
		Width:     80,
		RowHeight: 1,
	}
	e.load(e.Root)
	e.updateRows()
	return e
}

// load fetches node's children, reusing existing child nodes so expansion
// state survives a re-render.
func (e *Explorer) load(node *Node) {
	items, err := e.src.Children(node.ID)
	if err != nil {
		log.LogWithFields(log.F("folder", node.ID), log.F("error", err)).Warn("cannot list folder")
		node.Children = nil
		return
	}
	existing := make(map[string]*Node, len(node.Children))
	for _, c := range node.Children {
		existing[c.ID] = c
	}
	children := make([]*Node, 0, len(items))
	for _, it := range items {
		child, ok := existing[it.ID]
		if !ok || child.IsFolder != it.IsFolder {
			child = &Node{ID: it.ID, Name: order.Name(it.ID), IsFolder: it.IsFolder}
		}
		child.Parent = node
		child.Level = node.Level + 1
		children = append(children, child)
	}
	node.Children = children
}

func (e *Explorer) updateRows() {
	e.rows = e.rows[:0]
	for _, c := range e.Root.Children {
		e.addVisible(c)
	}
	if e.Cursor >= len(e.rows) {
		e.Cursor = max(0, len(e.rows)-1)
	}
	e.EnsureCursorVisible()
}

func (e *Explorer) addVisible(node *Node) {
	e.rows = append(e.rows, node)
	if node.Open {
		for _, c := range node.Children {
			e.addVisible(c)
		}
	}
}

// Rows returns every expanded row in display order. The root is not a row.
func (e *Explorer) Rows() []*Node {
	return e.rows
}

// Node finds a loaded node by identifier.
func (e *Explorer) Node(id string) *Node {
	if id == order.RootID {
		return e.Root
	}
	var walk func(n *Node) *Node
	walk = func(n *Node) *Node {
		for _, c := range n.Children {
			if c.ID == id {
				return c
			}
			if order.IsDescendant(id, c.ID) {
				return walk(c)
			}
		}
		return nil
	}
	return walk(e.Root)
}

// Current returns the node under the cursor, or nil.
func (e *Explorer) Current() *Node {
	if e.Cursor < 0 || e.Cursor >= len(e.rows) {
		return nil
	}
	return e.rows[e.Cursor]
}

// Select moves the cursor to id when it is visible.
func (e *Explorer) Select(id string) bool {
	for i, n := range e.rows {
		if n.ID == id {
			e.Cursor = i
			e.EnsureCursorVisible()
			return true
		}
	}
	return false
}

// Expand opens a folder, reloading its children.
func (e *Explorer) Expand(id string) {
	n := e.Node(id)
	if n == nil || !n.IsFolder {
		return
	}
	n.Open = true
	e.load(n)
	e.updateRows()
}

// Collapse closes a folder. Anything else is ignored.
func (e *Explorer) Collapse(id string) {
	n := e.Node(id)
	if n == nil || !n.IsFolder || n == e.Root || !n.Open {
		return
	}
	n.Open = false
	e.updateRows()
}

// Toggle flips the expansion of id.
func (e *Explorer) Toggle(id string) {
	n := e.Node(id)
	if n == nil || !n.IsFolder {
		return
	}
	if n.Open {
		e.Collapse(id)
	} else {
		e.Expand(id)
	}
}

// IsExpanded reports whether id is an open folder.
func (e *Explorer) IsExpanded(id string) bool {
	n := e.Node(id)
	return n != nil && n.IsFolder && n.Open
}

// Sort re-renders the root folder. Expanded subfolders keep the order they
// were last rendered with.
func (e *Explorer) Sort() {
	e.load(e.Root)
	e.updateRows()
}

// RefreshExpanded collapses and re-expands each listed folder that is
// currently open, which re-renders it with the current order.
func (e *Explorer) RefreshExpanded(folderIDs []string) {
	for _, id := range folderIDs {
		if id == order.RootID || !e.IsExpanded(id) {
			continue
		}
		e.Collapse(id)
		e.Expand(id)
	}
}

// Refresh reloads every loaded folder, picking up filesystem changes.
func (e *Explorer) Refresh() {
	var walk func(n *Node)
	walk = func(n *Node) {
		if n != e.Root && !n.Open {
			return
		}
		e.load(n)
		for _, c := range n.Children {
			if c.IsFolder {
				walk(c)
			}
		}
	}
	walk(e.Root)
	e.updateRows()
}

// ExpandedFolders lists the identifiers of open folders below the root.
func (e *Explorer) ExpandedFolders() []string {
	var out []string
	for _, n := range e.rows {
		if n.IsFolder && n.Open {
			out = append(out, n.ID)
		}
	}
	return out
}

// MoveUp moves the cursor up one row
func (e *Explorer) MoveUp() {
	if e.Cursor > 0 {
		e.Cursor--
	}
	e.EnsureCursorVisible()
}

// MoveDown moves the cursor down one row
func (e *Explorer) MoveDown() {
	if e.Cursor < len(e.rows)-1 {
		e.Cursor++
	}
	e.EnsureCursorVisible()
}

// MoveToParent moves the cursor to the parent of the current node
func (e *Explorer) MoveToParent() {
	n := e.Current()
	if n == nil || n.Parent == nil || n.Parent == e.Root {
		return
	}
	e.Select(n.Parent.ID)
}

// EnsureCursorVisible adjusts the scroll offset so the cursor row is shown.
func (e *Explorer) EnsureCursorVisible() {
	if e.Height <= 0 {
		return
	}
	if e.Cursor < e.Offset {
		e.Offset = e.Cursor
	}
	if e.Cursor >= e.Offset+e.Height {
		e.Offset = e.Cursor - e.Height + 1
	}
	if maxOffset := max(0, len(e.rows)-e.Height); e.Offset > maxOffset {
		e.Offset = maxOffset
	}
	if e.Offset < 0 {
		e.Offset = 0
	}
}

// VisibleRows implements drag.Host. Rows scrolled out of view have zero
// height.
func (e *Explorer) VisibleRows() []drag.Row {
	out := make([]drag.Row, len(e.rows))
	for i, n := range e.rows {
		pos := i - e.Offset
		h := e.RowHeight
		if pos < 0 || pos >= e.Height {
			h = 0
		}
		out[i] = drag.Row{ID: n.ID, Top: float64(pos) * e.RowHeight, Height: h}
	}
	return out
}

// Bounds implements drag.Host.
func (e *Explorer) Bounds() drag.Rect {
	return drag.Rect{Max: drag.Point{X: e.Width, Y: float64(e.Height) * e.RowHeight}}
}

// RowAt maps a vertical coordinate to the row under it.
func (e *Explorer) RowAt(y float64) (*Node, bool) {
	if y < 0 || e.RowHeight <= 0 {
		return nil, false
	}
	i := e.Offset + int(y/e.RowHeight)
	if i < e.Offset+e.Height && i < len(e.rows) {
		return e.rows[i], true
	}
	return nil, false
}
