package order

import (
	"treeorder/internal/log"
)

// MoveUp swaps id with the entry above it. It returns false when id is
// already first, is not part of its folder's sequence, the tree is missing,
// or folders-first is on and a file would climb above a folder.
func (m *Manager) MoveUp(id string) bool {
	if m.tree == nil {
		return false
	}
	dir := ParentID(id)
	seq := m.EnsureFolder(dir)
	idx := indexOf(seq, id)
	if idx <= 0 {
		return false
	}
	if m.settings.FoldersFirst && m.tree.IsFolder(seq[idx-1]) && !m.tree.IsFolder(id) {
		return false
	}
	seq[idx-1], seq[idx] = seq[idx], seq[idx-1]
	log.LogWithFields(log.F("id", id), log.F("index", idx-1)).Debug("moved up")
	return true
}

// MoveDown swaps id with the entry below it. It returns false when id is
// already last, is not part of its folder's sequence, the tree is missing,
// or folders-first is on and a folder would sink below a file.
func (m *Manager) MoveDown(id string) bool {
	if m.tree == nil {
		return false
	}
	dir := ParentID(id)
	seq := m.EnsureFolder(dir)
	idx := indexOf(seq, id)
	if idx < 0 || idx >= len(seq)-1 {
		return false
	}
	if m.settings.FoldersFirst && m.tree.IsFolder(id) && !m.tree.IsFolder(seq[idx+1]) {
		return false
	}
	seq[idx], seq[idx+1] = seq[idx+1], seq[idx]
	log.LogWithFields(log.F("id", id), log.F("index", idx+1)).Debug("moved down")
	return true
}

// MoveItem reinserts id immediately before or after targetID inside their
// shared folder. Callers guarantee both share a parent. Nothing changes when
// targetID is not in the sequence.
func (m *Manager) MoveItem(id, targetID string, pos Position) bool {
	if id == targetID {
		return false
	}
	dir := ParentID(id)
	seq := m.EnsureFolder(dir)
	if seq == nil {
		return false
	}

	rest := without(seq, id)
	at := indexOf(rest, targetID)
	if at < 0 {
		return false
	}
	if pos == After {
		at++
	}
	out := make([]string, 0, len(rest)+1)
	out = append(out, rest[:at]...)
	out = append(out, id)
	out = append(out, rest[at:]...)
	m.settings.CustomOrder[dir] = out
	log.LogWithFields(log.F("id", id), log.F("target", targetID), log.F("position", pos.String())).Debug("moved item")
	return true
}

// ResetFolder forgets the custom order of folderID.
func (m *Manager) ResetFolder(folderID string) {
	delete(m.settings.CustomOrder, folderID)
}

// OnItemCreated records a newly created item in its parent's sequence, if
// that folder has one.
func (m *Manager) OnItemCreated(id string) {
	dir := ParentID(id)
	seq, ok := m.settings.CustomOrder[dir]
	if !ok {
		return
	}
	if indexOf(seq, id) >= 0 {
		return
	}
	m.settings.CustomOrder[dir] = m.insertNew(seq, id)
}

// OnItemDeleted removes id from its parent's sequence and drops the sequence
// stored for id itself.
func (m *Manager) OnItemDeleted(id string) {
	m.removeFromParent(id)
	delete(m.settings.CustomOrder, id)
}

func (m *Manager) removeFromParent(id string) {
	dir := ParentID(id)
	if seq, ok := m.settings.CustomOrder[dir]; ok {
		m.settings.CustomOrder[dir] = without(seq, id)
	}
}

// OnItemRenamed keeps the store consistent with a rename or move. Within one
// folder the entry is replaced in place. Across folders it is removed from the
// old parent and inserted into the new one at the new-item position. Stored
// sequences of the renamed folder and of every descendant folder are re-keyed
// and their entries rewritten to the new prefix.
func (m *Manager) OnItemRenamed(newID, oldID string) {
	if newID == oldID {
		return
	}
	oldDir, newDir := ParentID(oldID), ParentID(newID)

	if oldDir == newDir {
		if seq, ok := m.settings.CustomOrder[oldDir]; ok {
			if idx := indexOf(seq, oldID); idx >= 0 {
				if indexOf(seq, newID) >= 0 {
					m.settings.CustomOrder[oldDir] = without(seq, oldID)
				} else {
					seq[idx] = newID
				}
			}
		}
	} else {
		m.removeFromParent(oldID)
		if m.tree == nil || m.tree.Exists(newID) {
			m.OnItemCreated(newID)
		}
	}

	m.remapPrefix(oldID, newID)
}

// remapPrefix moves every stored sequence keyed at or below oldPrefix to the
// new prefix and rewrites entries that point below oldPrefix.
func (m *Manager) remapPrefix(oldPrefix, newPrefix string) {
	order := m.settings.CustomOrder
	moved := map[string][]string{}
	for key, seq := range order {
		newKey, rekey := rebase(key, oldPrefix, newPrefix)
		changed := false
		out := make([]string, len(seq))
		for i, id := range seq {
			if IsDescendant(id, oldPrefix) {
				id, _ = rebase(id, oldPrefix, newPrefix)
				changed = true
			}
			out[i] = id
		}
		if rekey {
			delete(order, key)
			moved[newKey] = dedupe(out)
			continue
		}
		if changed {
			order[key] = dedupe(out)
		}
	}
	for k, v := range moved {
		order[k] = v
	}
	if len(moved) > 0 {
		log.LogWithFields(log.F("from", oldPrefix), log.F("to", newPrefix), log.F("folders", len(moved))).Debug("re-keyed folder order")
	}
}
