package order

import (
	"fmt"
	"sort"

	"treeorder/internal/log"
	"treeorder/pkg/types"
)

// ReconcileReport summarises what a reconcile pass changed.
type ReconcileReport struct {
	DroppedFolders []string
	Removed        map[string][]string
	Added          map[string][]string
	Duplicates     map[string]int
}

// Changed reports whether the pass modified the store.
func (r ReconcileReport) Changed() bool {
	return len(r.DroppedFolders) > 0 || len(r.Removed) > 0 || len(r.Added) > 0 || len(r.Duplicates) > 0
}

// String summarises the report on one line.
func (r ReconcileReport) String() string {
	count := func(m map[string][]string) int {
		n := 0
		for _, ids := range m {
			n += len(ids)
		}
		return n
	}
	dups := 0
	for _, n := range r.Duplicates {
		dups += n
	}
	return fmt.Sprintf("%d folders dropped, %d removed, %d added, %d duplicates",
		len(r.DroppedFolders), count(r.Removed), count(r.Added), dups)
}

// Reconcile rebuilds every stored sequence against the live tree: stale ids
// are dropped, duplicates collapsed, and children missing from the sequence
// are placed at the configured new-item position. Sequences of folders that
// no longer exist are removed. Without a tree it does nothing.
func (m *Manager) Reconcile() ReconcileReport {
	report := ReconcileReport{
		Removed:    map[string][]string{},
		Added:      map[string][]string{},
		Duplicates: map[string]int{},
	}
	if m.tree == nil {
		return report
	}

	folders := m.Folders()
	sort.Strings(folders)

	for _, folderID := range folders {
		if folderID != RootID && !m.tree.IsFolder(folderID) {
			delete(m.settings.CustomOrder, folderID)
			report.DroppedFolders = append(report.DroppedFolders, folderID)
			continue
		}

		children, err := m.tree.ListChildren(folderID)
		if err != nil {
			log.LogWithFields(log.F("folder", folderID), log.F("error", err)).Warn("skipping folder during reconcile")
			continue
		}
		current := make(map[string]struct{}, len(children))
		for _, c := range children {
			current[c] = struct{}{}
		}

		saved := m.settings.CustomOrder[folderID]
		savedSet := make(map[string]struct{}, len(saved))
		valid := make([]string, 0, len(saved))
		for _, id := range saved {
			if _, dup := savedSet[id]; dup {
				report.Duplicates[folderID]++
				continue
			}
			savedSet[id] = struct{}{}
			if _, ok := current[id]; !ok {
				report.Removed[folderID] = append(report.Removed[folderID], id)
				continue
			}
			valid = append(valid, id)
		}

		var fresh []string
		for _, c := range children {
			if _, ok := savedSet[c]; !ok {
				fresh = append(fresh, c)
			}
		}
		fresh = dedupe(fresh)
		if len(fresh) > 0 {
			report.Added[folderID] = fresh
		}

		rebuilt := make([]string, 0, len(valid)+len(fresh))
		if m.settings.NewItemPosition == types.PositionTop {
			rebuilt = append(append(rebuilt, fresh...), valid...)
		} else {
			rebuilt = append(append(rebuilt, valid...), fresh...)
		}
		m.settings.CustomOrder[folderID] = rebuilt
	}

	if report.Changed() {
		log.LogWithFields(
			log.F("dropped", len(report.DroppedFolders)),
			log.F("pruned", len(report.Removed)),
			log.F("extended", len(report.Added)),
		).Info("reconciled custom order")
	}
	return report
}
