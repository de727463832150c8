package explorer

import (
	"testing"

	"treeorder/internal/drag"
	"treeorder/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapSource serves a fixed listing and counts calls per folder.
type mapSource struct {
	children map[string][]order.Item
	calls    map[string]int
}

func newMapSource() *mapSource {
	return &mapSource{
		children: map[string][]order.Item{
			order.RootID: {{ID: "dir", IsFolder: true}, {ID: "a.md"}, {ID: "b.md"}},
			"dir":        {{ID: "dir/x.md"}, {ID: "dir/y.md"}},
		},
		calls: map[string]int{},
	}
}

func (s *mapSource) Children(folderID string) ([]order.Item, error) {
	s.calls[folderID]++
	return s.children[folderID], nil
}

func rowIDs(e *Explorer) []string {
	var out []string
	for _, n := range e.Rows() {
		out = append(out, n.ID)
	}
	return out
}

func TestExpandCollapse(t *testing.T) {
	src := newMapSource()
	e := New(src, "vault")
	assert.Equal(t, []string{"dir", "a.md", "b.md"}, rowIDs(e))

	e.Expand("dir")
	assert.Equal(t, []string{"dir", "dir/x.md", "dir/y.md", "a.md", "b.md"}, rowIDs(e))
	assert.True(t, e.IsExpanded("dir"))
	assert.Equal(t, 2, e.Node("dir/y.md").Level)

	e.Collapse("dir")
	assert.Equal(t, []string{"dir", "a.md", "b.md"}, rowIDs(e))

	// collapsing a file is ignored
	e.Collapse("a.md")
	e.Toggle("dir")
	assert.True(t, e.IsExpanded("dir"))
}

func TestSortOnlyReloadsRoot(t *testing.T) {
	src := newMapSource()
	e := New(src, "vault")
	e.Expand("dir")

	src.children[order.RootID] = []order.Item{{ID: "b.md"}, {ID: "dir", IsFolder: true}, {ID: "a.md"}}
	src.children["dir"] = []order.Item{{ID: "dir/y.md"}, {ID: "dir/x.md"}}
	e.Sort()

	// dir keeps its expansion and its stale order
	assert.Equal(t, []string{"b.md", "dir", "dir/x.md", "dir/y.md", "a.md"}, rowIDs(e))

	e.RefreshExpanded([]string{"dir", "a.md", "missing"})
	assert.Equal(t, []string{"b.md", "dir", "dir/y.md", "dir/x.md", "a.md"}, rowIDs(e))
	assert.True(t, e.IsExpanded("dir"))
}

func TestRefreshExpandedSkipsCollapsed(t *testing.T) {
	src := newMapSource()
	e := New(src, "vault")
	e.RefreshExpanded([]string{"dir"})
	assert.False(t, e.IsExpanded("dir"))
	assert.Equal(t, 0, src.calls["dir"])
}

func TestRefreshPicksUpNewItems(t *testing.T) {
	src := newMapSource()
	e := New(src, "vault")
	e.Expand("dir")
	src.children["dir"] = append(src.children["dir"], order.Item{ID: "dir/z.md"})

	e.Refresh()
	assert.Contains(t, rowIDs(e), "dir/z.md")
}

func TestCursor(t *testing.T) {
	e := New(newMapSource(), "vault")
	e.Expand("dir")

	require.True(t, e.Select("dir/y.md"))
	assert.Equal(t, "dir/y.md", e.Current().ID)
	e.MoveToParent()
	assert.Equal(t, "dir", e.Current().ID)
	e.MoveUp()
	assert.Equal(t, "dir", e.Current().ID)
	e.MoveDown()
	assert.Equal(t, "dir/x.md", e.Current().ID)

	assert.False(t, e.Select("nope"))
}

func TestGeometry(t *testing.T) {
	e := New(newMapSource(), "vault")
	e.Height = 2
	e.RowHeight = 10
	e.Width = 100
	e.Select("b.md")

	rows := e.VisibleRows()
	require.Len(t, rows, 3)
	assert.Equal(t, drag.Row{ID: "dir", Top: -10, Height: 0}, rows[0])
	assert.Equal(t, drag.Row{ID: "a.md", Top: 0, Height: 10}, rows[1])
	assert.Equal(t, drag.Row{ID: "b.md", Top: 10, Height: 10}, rows[2])
	assert.Equal(t, drag.Rect{Max: drag.Point{X: 100, Y: 20}}, e.Bounds())

	n, ok := e.RowAt(15)
	require.True(t, ok)
	assert.Equal(t, "b.md", n.ID)
	_, ok = e.RowAt(25)
	assert.False(t, ok)
}
