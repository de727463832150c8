package order

import (
	"sort"
	"strings"
)

// memTree is an in-memory Tree. Folders are declared explicitly; every other
// known id is a file.
type memTree struct {
	folders map[string]bool
	items   map[string]bool
}

func newMemTree(paths ...string) *memTree {
	t := &memTree{folders: map[string]bool{RootID: true}, items: map[string]bool{}}
	for _, p := range paths {
		t.add(p)
	}
	return t
}

// add registers p; a trailing slash marks a folder.
func (t *memTree) add(p string) {
	folder := strings.HasSuffix(p, "/")
	p = strings.TrimSuffix(p, "/")
	t.items[p] = true
	if folder {
		t.folders[p] = true
	}
}

func (t *memTree) remove(p string) {
	delete(t.items, p)
	delete(t.folders, p)
}

func (t *memTree) ListChildren(folderID string) ([]string, error) {
	var out []string
	for id := range t.items {
		if ParentID(id) == folderID {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (t *memTree) IsFolder(id string) bool { return t.folders[id] }

func (t *memTree) Exists(id string) bool { return id == RootID || t.items[id] }
