// Package order keeps the per-folder custom ordering of a hierarchical tree
// consistent with the live tree. It owns the order store, the reconciler,
// the mutation operations and the comparator used at render time.
package order

import (
	"treeorder/internal/log"
	"treeorder/pkg/types"
)

// Position says on which side of a sibling an item is inserted.
type Position int

const (
	Before Position = iota
	After
)

func (p Position) String() string {
	if p == After {
		return "after"
	}
	return "before"
}

// Tree is the host tree view as seen by the order engine.
type Tree interface {
	// ListChildren returns the children of folderID in the host's default order.
	ListChildren(folderID string) ([]string, error)
	// IsFolder reports whether id currently resolves to a folder.
	IsFolder(id string) bool
	// Exists reports whether id currently resolves to any item.
	Exists(id string) bool
}

// Manager owns the custom order stored in a settings blob.
type Manager struct {
	settings *types.Settings
	tree     Tree
}

// NewManager binds a manager to settings. tree may be nil until the host is ready.
func NewManager(settings *types.Settings, tree Tree) *Manager {
	if settings == nil {
		settings = types.DefaultSettings()
	}
	settings.Normalize()
	return &Manager{settings: settings, tree: tree}
}

// SetTree attaches (or detaches, with nil) the host tree.
func (m *Manager) SetTree(tree Tree) {
	m.tree = tree
}

// HasTree reports whether the host tree is attached.
func (m *Manager) HasTree() bool {
	return m.tree != nil
}

// Settings returns the live settings blob.
func (m *Manager) Settings() *types.Settings {
	return m.settings
}

// SetSettings swaps in a freshly loaded settings blob.
func (m *Manager) SetSettings(s *types.Settings) {
	s.Normalize()
	m.settings = s
}

// Order returns a copy of the stored sequence for folderID, or nil.
func (m *Manager) Order(folderID string) []string {
	seq, ok := m.settings.CustomOrder[folderID]
	if !ok {
		return nil
	}
	return append([]string(nil), seq...)
}

// HasOrder reports whether folderID has a non-empty stored sequence.
func (m *Manager) HasOrder(folderID string) bool {
	return len(m.settings.CustomOrder[folderID]) > 0
}

// Folders returns every folder identifier with a stored sequence.
func (m *Manager) Folders() []string {
	out := make([]string, 0, len(m.settings.CustomOrder))
	for k := range m.settings.CustomOrder {
		out = append(out, k)
	}
	return out
}

// EnsureFolder returns the stored sequence for folderID, initialising it from
// the tree's default order when absent. It returns nil without storing
// anything when the tree is missing or folderID is not a folder.
func (m *Manager) EnsureFolder(folderID string) []string {
	if seq, ok := m.settings.CustomOrder[folderID]; ok && len(seq) > 0 {
		return seq
	}
	return m.initializeFolder(folderID)
}

func (m *Manager) initializeFolder(folderID string) []string {
	if m.tree == nil {
		return nil
	}
	if folderID != RootID && !m.tree.IsFolder(folderID) {
		return nil
	}
	children, err := m.tree.ListChildren(folderID)
	if err != nil {
		log.LogWithFields(log.F("folder", folderID), log.F("error", err)).Warn("cannot list folder")
		return nil
	}
	seq := dedupe(children)
	m.settings.CustomOrder[folderID] = seq
	log.LogWithFields(log.F("folder", folderID), log.F("items", len(seq))).Debug("initialised folder order")
	return seq
}

func (m *Manager) insertNew(seq []string, id string) []string {
	if m.settings.NewItemPosition == types.PositionTop {
		return append([]string{id}, seq...)
	}
	return append(seq, id)
}

func indexOf(seq []string, id string) int {
	for i, v := range seq {
		if v == id {
			return i
		}
	}
	return -1
}

func without(seq []string, id string) []string {
	out := make([]string, 0, len(seq))
	for _, v := range seq {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(seq []string) []string {
	seen := make(map[string]struct{}, len(seq))
	out := make([]string, 0, len(seq))
	for _, v := range seq {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
