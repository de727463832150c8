package order

import (
	"sync"

	"treeorder/internal/log"
)

// ChildrenFunc returns the children of a folder in the host's default order.
type ChildrenFunc func(folderID string) ([]Item, error)

// Interceptable is a host whose children accessor can be replaced.
type Interceptable interface {
	ChildrenAccessor() ChildrenFunc
	SetChildrenAccessor(fn ChildrenFunc)
}

// OrderSource supplies the sort inputs on every render.
type OrderSource interface {
	Enabled() bool
	FoldersFirst() bool
	Order(folderID string) []string
}

// Patch is an installed children-accessor decorator. Dispose restores the
// accessor that was in place at install time.
type Patch struct {
	host     Interceptable
	original ChildrenFunc
	once     sync.Once
}

// Install wraps host's children accessor so that every render returns the
// children sorted by src. The returned patch is the only handle on the
// wrapper; patches installed on top of each other must be disposed in
// reverse order.
func Install(host Interceptable, src OrderSource) *Patch {
	original := host.ChildrenAccessor()
	p := &Patch{host: host, original: original}
	host.SetChildrenAccessor(func(folderID string) ([]Item, error) {
		items, err := original(folderID)
		if err != nil {
			return nil, err
		}
		if !src.Enabled() {
			if src.FoldersFirst() {
				return SortItems(items, nil, true), nil
			}
			return items, nil
		}
		return SortItems(items, src.Order(folderID), src.FoldersFirst()), nil
	})

	log.Debug("children accessor patched")
	return p
}

// Dispose restores the original accessor. It is safe to call more than once.
func (p *Patch) Dispose() {
	p.once.Do(func() {
		p.host.SetChildrenAccessor(p.original)
		log.Debug("children accessor restored")
	})
}
