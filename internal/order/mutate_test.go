package order

import (
	"testing"

	"treeorder/pkg/types"

	"github.com/stretchr/testify/assert"
)

func TestMoveUpDown(t *testing.T) {
	t.Run("SwapWithNeighbour", func(t *testing.T) {
		tree := newMemTree("a.md", "b.md", "c.md")
		m := newTestManager(tree, func(s *types.Settings) {
			s.CustomOrder[RootID] = []string{"c.md", "a.md", "b.md"}
		})

		assert.True(t, m.MoveDown("a.md"))
		assert.Equal(t, []string{"c.md", "b.md", "a.md"}, m.Order(RootID))

		assert.True(t, m.MoveUp("a.md"))
		assert.Equal(t, []string{"c.md", "a.md", "b.md"}, m.Order(RootID))
	})

	t.Run("Boundaries", func(t *testing.T) {
		tree := newMemTree("a.md", "b.md")
		m := newTestManager(tree, nil)

		assert.False(t, m.MoveUp("a.md"))
		assert.False(t, m.MoveDown("b.md"))
		assert.Equal(t, []string{"a.md", "b.md"}, m.Order(RootID))
	})

	t.Run("InitialisesLazily", func(t *testing.T) {
		tree := newMemTree("notes/", "notes/a.md", "notes/b.md")
		m := newTestManager(tree, nil)

		assert.True(t, m.MoveUp("notes/b.md"))
		assert.Equal(t, []string{"notes/b.md", "notes/a.md"}, m.Order("notes"))
	})

	t.Run("UnknownItem", func(t *testing.T) {
		tree := newMemTree("a.md", "b.md")
		m := newTestManager(tree, nil)
		assert.False(t, m.MoveUp("ghost.md"))
		assert.False(t, m.MoveDown("ghost.md"))
	})

	t.Run("NoTree", func(t *testing.T) {
		m := newTestManager(nil, func(s *types.Settings) {
			s.CustomOrder[RootID] = []string{"a.md", "b.md"}
		})
		assert.False(t, m.MoveUp("b.md"))
		assert.False(t, m.MoveDown("a.md"))
		assert.Equal(t, []string{"a.md", "b.md"}, m.Order(RootID))
	})

	t.Run("FoldersFirstGuard", func(t *testing.T) {
		tree := newMemTree("dir/", "a.md")
		m := newTestManager(tree, func(s *types.Settings) {
			s.CustomOrder[RootID] = []string{"dir", "a.md"}
		})

		assert.False(t, m.MoveUp("a.md"))
		assert.False(t, m.MoveDown("dir"))
		assert.Equal(t, []string{"dir", "a.md"}, m.Order(RootID))

		m.Settings().FoldersFirst = false
		assert.True(t, m.MoveUp("a.md"))
		assert.Equal(t, []string{"a.md", "dir"}, m.Order(RootID))
	})

	t.Run("FoldersAmongFolders", func(t *testing.T) {
		tree := newMemTree("x/", "y/", "a.md")
		m := newTestManager(tree, func(s *types.Settings) {
			s.CustomOrder[RootID] = []string{"x", "y", "a.md"}
		})
		assert.True(t, m.MoveUp("y"))
		assert.Equal(t, []string{"y", "x", "a.md"}, m.Order(RootID))
	})
}

func TestMoveItem(t *testing.T) {
	tree := newMemTree("a.md", "b.md", "c.md", "d.md")

	tests := []struct {
		name   string
		id     string
		target string
		pos    Position
		ok     bool
		want   []string
	}{
		{"BeforeTarget", "d.md", "b.md", Before, true, []string{"a.md", "d.md", "b.md", "c.md"}},
		{"AfterTarget", "a.md", "c.md", After, true, []string{"b.md", "c.md", "a.md", "d.md"}},
		{"AfterLast", "a.md", "d.md", After, true, []string{"b.md", "c.md", "d.md", "a.md"}},
		{"MissingTarget", "a.md", "zzz.md", Before, false, []string{"a.md", "b.md", "c.md", "d.md"}},
		{"SelfTarget", "a.md", "a.md", After, false, []string{"a.md", "b.md", "c.md", "d.md"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(tree, nil)
			m.EnsureFolder(RootID)

			assert.Equal(t, tt.ok, m.MoveItem(tt.id, tt.target, tt.pos))
			assert.Equal(t, tt.want, m.Order(RootID))
		})
	}

	t.Run("BeforeEarlierSibling", func(t *testing.T) {
		m := newTestManager(newMemTree("a.md", "b.md", "c.md"), func(s *types.Settings) {
			s.CustomOrder[RootID] = []string{"c.md", "a.md", "b.md"}
		})
		assert.True(t, m.MoveItem("b.md", "a.md", Before))
		assert.Equal(t, []string{"c.md", "b.md", "a.md"}, m.Order(RootID))
	})

	t.Run("NoFoldersFirstGuard", func(t *testing.T) {
		tree := newMemTree("dir/", "a.md")
		m := newTestManager(tree, nil)
		assert.True(t, m.MoveItem("a.md", "dir", Before))
		assert.Equal(t, []string{"a.md", "dir"}, m.Order(RootID))
	})
}

func TestResetFolder(t *testing.T) {
	m := newTestManager(newMemTree("a.md", "b.md"), func(s *types.Settings) {
		s.CustomOrder[RootID] = []string{"b.md", "a.md"}
	})
	m.ResetFolder(RootID)
	assert.False(t, m.HasOrder(RootID))
	assert.Nil(t, m.Order(RootID))
}

func TestOnItemCreated(t *testing.T) {
	t.Run("Bottom", func(t *testing.T) {
		m := newTestManager(nil, func(s *types.Settings) {
			s.CustomOrder[RootID] = []string{"a.md", "b.md"}
		})
		m.OnItemCreated("n.md")
		assert.Equal(t, []string{"a.md", "b.md", "n.md"}, m.Order(RootID))
	})

	t.Run("Top", func(t *testing.T) {
		m := newTestManager(nil, func(s *types.Settings) {
			s.NewItemPosition = types.PositionTop
			s.CustomOrder[RootID] = []string{"a.md", "b.md"}
		})
		m.OnItemCreated("n.md")
		assert.Equal(t, []string{"n.md", "a.md", "b.md"}, m.Order(RootID))
	})

	t.Run("NoStoredSequence", func(t *testing.T) {
		m := newTestManager(nil, nil)
		m.OnItemCreated("notes/n.md")
		assert.False(t, m.HasOrder("notes"))
	})

	t.Run("AlreadyPresent", func(t *testing.T) {
		m := newTestManager(nil, func(s *types.Settings) {
			s.CustomOrder[RootID] = []string{"a.md"}
		})
		m.OnItemCreated("a.md")
		assert.Equal(t, []string{"a.md"}, m.Order(RootID))
	})
}

func TestOnItemDeleted(t *testing.T) {
	m := newTestManager(nil, func(s *types.Settings) {
		s.CustomOrder[RootID] = []string{"dir", "a.md"}
		s.CustomOrder["dir"] = []string{"dir/x.md"}
	})
	m.OnItemDeleted("dir")
	assert.Equal(t, []string{"a.md"}, m.Order(RootID))
	assert.False(t, m.HasOrder("dir"))
}

func TestOnItemRenamed(t *testing.T) {
	t.Run("SameFolderKeepsPosition", func(t *testing.T) {
		m := newTestManager(nil, func(s *types.Settings) {
			s.CustomOrder["notes"] = []string{"notes/c.md", "notes/a.md", "notes/b.md"}
		})
		m.OnItemRenamed("notes/z.md", "notes/a.md")
		assert.Equal(t, []string{"notes/c.md", "notes/z.md", "notes/b.md"}, m.Order("notes"))
	})

	t.Run("AcrossFolders", func(t *testing.T) {
		tree := newMemTree("x/", "y/", "y/a.md", "y/b.md", "x/q.md")
		m := newTestManager(tree, func(s *types.Settings) {
			s.CustomOrder["x"] = []string{"x/a.md", "x/q.md"}
			s.CustomOrder["y"] = []string{"y/b.md"}
		})
		m.OnItemRenamed("y/a.md", "x/a.md")
		assert.Equal(t, []string{"x/q.md"}, m.Order("x"))
		assert.Equal(t, []string{"y/b.md", "y/a.md"}, m.Order("y"))
	})

	t.Run("AcrossFoldersTargetGone", func(t *testing.T) {
		tree := newMemTree("x/", "y/", "y/b.md")
		m := newTestManager(tree, func(s *types.Settings) {
			s.CustomOrder["x"] = []string{"x/a.md"}
			s.CustomOrder["y"] = []string{"y/b.md"}
		})
		m.OnItemRenamed("y/a.md", "x/a.md")
		assert.Empty(t, m.Order("x"))
		assert.Equal(t, []string{"y/b.md"}, m.Order("y"))
	})

	t.Run("FolderRenameRekeysDescendants", func(t *testing.T) {
		m := newTestManager(nil, func(s *types.Settings) {
			s.CustomOrder[RootID] = []string{"old", "a.md"}
			s.CustomOrder["old"] = []string{"old/sub", "old/x.md"}
			s.CustomOrder["old/sub"] = []string{"old/sub/y.md"}
			s.CustomOrder["older"] = []string{"older/k.md"}
		})
		m.OnItemRenamed("new", "old")

		assert.Equal(t, []string{"new", "a.md"}, m.Order(RootID))
		assert.Equal(t, []string{"new/sub", "new/x.md"}, m.Order("new"))
		assert.Equal(t, []string{"new/sub/y.md"}, m.Order("new/sub"))
		assert.False(t, m.HasOrder("old"))
		assert.False(t, m.HasOrder("old/sub"))
		assert.Equal(t, []string{"older/k.md"}, m.Order("older"))
	})

	t.Run("FolderMovedKeepsOwnOrder", func(t *testing.T) {
		m := newTestManager(nil, func(s *types.Settings) {
			s.CustomOrder[RootID] = []string{"dir", "p"}
			s.CustomOrder["p"] = []string{"p/k.md"}
			s.CustomOrder["dir"] = []string{"dir/b.md", "dir/a.md"}
		})
		m.OnItemRenamed("p/dir", "dir")

		assert.Equal(t, []string{"p"}, m.Order(RootID))
		assert.Equal(t, []string{"p/k.md", "p/dir"}, m.Order("p"))
		assert.Equal(t, []string{"p/dir/b.md", "p/dir/a.md"}, m.Order("p/dir"))
	})

	t.Run("NoDuplicatesAfterRename", func(t *testing.T) {
		m := newTestManager(nil, func(s *types.Settings) {
			s.CustomOrder[RootID] = []string{"a.md", "b.md"}
		})
		m.OnItemRenamed("b.md", "a.md")
		assert.Equal(t, []string{"b.md"}, m.Order(RootID))
	})
}
