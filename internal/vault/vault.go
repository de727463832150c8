// Package vault exposes a directory tree as the host tree the order engine
// works against. Identifiers are slash separated paths relative to the vault
// root; the root itself is order.RootID.
package vault

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"treeorder/internal/errors"
	"treeorder/internal/log"
	"treeorder/internal/order"
)

// Options control which entries are part of the tree.
type Options struct {
	// Ignore holds glob patterns matched against identifiers and base names.
	Ignore []string
	// ShowHidden includes dot-files and dot-directories.
	ShowHidden bool
}

// Vault is a filesystem-backed tree.
type Vault struct {
	root       string
	ignore     []glob.Glob
	showHidden bool

	mu       sync.Mutex
	collator *collate.Collator
	children order.ChildrenFunc
}

// Open returns a vault rooted at dir.
func Open(dir string, opts Options) (*Vault, error) {
	if dir == "" {
		return nil, errors.ErrInvalidPath
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.NewPathError("cannot resolve vault", dir, errors.InvalidPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.NewPathError("vault not found", abs, errors.PathNotFound, err)
	}
	if !info.IsDir() {
		return nil, errors.NewPathError("vault is not a directory", abs, errors.InvalidPath, nil)
	}

	v := &Vault{
		root:       abs,
		showHidden: opts.ShowHidden,
		collator:   collate.New(language.Und, collate.IgnoreCase, collate.Numeric),
	}
	for _, pattern := range opts.Ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.NewPathError("invalid ignore pattern", pattern, errors.InvalidPath, err)
		}
		v.ignore = append(v.ignore, g)
	}
	v.children = v.DefaultChildren
	log.LogWithFields(log.F("root", abs), log.F("ignore", len(v.ignore))).Debug("vault opened")
	return v, nil
}

// Root returns the absolute vault directory.
func (v *Vault) Root() string {
	return v.root
}

// Abs maps an identifier to an absolute path.
func (v *Vault) Abs(id string) string {
	if id == order.RootID || id == "" {
		return v.root
	}
	return filepath.Join(v.root, filepath.FromSlash(id))
}

// IDFor maps an absolute or vault-relative path to an identifier.
func (v *Vault) IDFor(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	rel, err := filepath.Rel(v.root, filepath.Clean(path))
	if err != nil {
		return "", errors.NewPathError("path outside vault", path, errors.InvalidPath, err)
	}
	if rel == "." {
		return order.RootID, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.NewPathError("path outside vault", path, errors.InvalidPath, nil)
	}
	return norm.NFC.String(filepath.ToSlash(rel)), nil
}

// Ignored reports whether id is hidden from the tree.
func (v *Vault) Ignored(id string) bool {
	if id == order.RootID {
		return false
	}
	for _, part := range strings.Split(id, order.Separator) {
		if !v.showHidden && strings.HasPrefix(part, ".") {
			return true
		}
	}
	name := order.Name(id)
	for _, g := range v.ignore {
		if g.Match(id) || g.Match(name) {
			return true
		}
	}
	return false
}

// Exists reports whether id resolves to a visible entry.
func (v *Vault) Exists(id string) bool {
	if id == order.RootID {
		return true
	}
	if v.Ignored(id) {
		return false
	}
	_, err := os.Lstat(v.Abs(id))
	return err == nil
}

// IsFolder reports whether id resolves to a visible directory.
func (v *Vault) IsFolder(id string) bool {
	if id == order.RootID {
		return true
	}
	if v.Ignored(id) {
		return false
	}
	info, err := os.Stat(v.Abs(id))
	return err == nil && info.IsDir()
}

// ListChildren returns the children of folderID in default order.
func (v *Vault) ListChildren(folderID string) ([]string, error) {
	items, err := v.DefaultChildren(folderID)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out, nil
}

// DefaultChildren lists folderID sorted by name, case-insensitive with
// natural number ordering.
func (v *Vault) DefaultChildren(folderID string) ([]order.Item, error) {
	dir := v.Abs(folderID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewPathError("folder not found", folderID, errors.PathNotFound, err)
		}
		return nil, errors.NewPathError("cannot read folder", folderID, errors.InvalidPath, err)
	}

	items := make([]order.Item, 0, len(entries))
	for _, e := range entries {
		name := norm.NFC.String(e.Name())
		id := name
		if folderID != order.RootID {
			id = folderID + order.Separator + name
		}
		if v.Ignored(id) {
			continue
		}
		isDir := e.IsDir()
		if e.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(dir, e.Name())); err == nil {
				isDir = info.IsDir()
			}
		}
		items = append(items, order.Item{ID: id, IsFolder: isDir})
	}

	v.mu.Lock()
	sort.SliceStable(items, func(i, j int) bool {
		return v.collator.CompareString(order.Name(items[i].ID), order.Name(items[j].ID)) < 0
	})
	v.mu.Unlock()
	return items, nil
}

// Children lists folderID through the current accessor, which is the
// custom-order patch while one is installed.
func (v *Vault) Children(folderID string) ([]order.Item, error) {
	v.mu.Lock()
	fn := v.children
	v.mu.Unlock()
	return fn(folderID)
}

// ChildrenAccessor implements order.Interceptable.
func (v *Vault) ChildrenAccessor() order.ChildrenFunc {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.children
}

// SetChildrenAccessor implements order.Interceptable.
func (v *Vault) SetChildrenAccessor(fn order.ChildrenFunc) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if fn == nil {
		fn = v.DefaultChildren
	}
	v.children = fn
}

// Folders walks the whole vault and returns every visible folder identifier,
// the root included, sorted.
func (v *Vault) Folders() ([]string, error) {
	var (
		mu  sync.Mutex
		out = []string{order.RootID}
	)
	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.LogWithFields(log.F("path", path), log.F("error", err)).Debug("walk error")
			return nil
		}
		if path == v.root || !d.IsDir() {
			return nil
		}
		id, err := v.IDFor(path)
		if err != nil {
			return nil
		}
		if v.Ignored(id) {
			return fastwalk.SkipDir
		}
		mu.Lock()
		out = append(out, id)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, errors.NewPathError("cannot walk vault", v.root, errors.InvalidPath, err)
	}
	sort.Strings(out[1:])
	return out, nil
}
