package order

import (
	"testing"

	"treeorder/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(tree Tree, mutate func(*types.Settings)) *Manager {
	s := types.DefaultSettings()
	if mutate != nil {
		mutate(s)
	}
	return NewManager(s, tree)
}

func TestParentID(t *testing.T) {
	tests := []struct {
		id, want string
	}{
		{"a.md", RootID},
		{"notes/a.md", "notes"},
		{"notes/deep/a.md", "notes/deep"},
		{"/a.md", RootID},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ParentID(tt.id))
		})
	}
}

func TestIsDescendant(t *testing.T) {
	assert.True(t, IsDescendant("notes/a.md", "notes"))
	assert.True(t, IsDescendant("notes/x/a.md", "notes"))
	assert.False(t, IsDescendant("notesx/a.md", "notes"))
	assert.False(t, IsDescendant("notes", "notes"))
	assert.True(t, IsDescendant("a.md", RootID))
}

func TestEnsureFolder(t *testing.T) {
	t.Run("InitialisesFromDefaultOrder", func(t *testing.T) {
		tree := newMemTree("notes/", "notes/b.md", "notes/a.md")
		m := newTestManager(tree, nil)

		seq := m.EnsureFolder("notes")
		assert.Equal(t, []string{"notes/a.md", "notes/b.md"}, seq)
		assert.Equal(t, seq, m.Order("notes"))
	})

	t.Run("ReturnsStoredSequence", func(t *testing.T) {
		tree := newMemTree("notes/", "notes/b.md", "notes/a.md")
		m := newTestManager(tree, func(s *types.Settings) {
			s.CustomOrder["notes"] = []string{"notes/b.md", "notes/a.md"}
		})
		assert.Equal(t, []string{"notes/b.md", "notes/a.md"}, m.EnsureFolder("notes"))
	})

	t.Run("EmptySequenceIsReinitialised", func(t *testing.T) {
		tree := newMemTree("a.md")
		m := newTestManager(tree, func(s *types.Settings) {
			s.CustomOrder[RootID] = []string{}
		})
		assert.Equal(t, []string{"a.md"}, m.EnsureFolder(RootID))
	})

	t.Run("MissingTree", func(t *testing.T) {
		m := newTestManager(nil, nil)
		assert.Nil(t, m.EnsureFolder("notes"))
		assert.False(t, m.HasOrder("notes"))
	})

	t.Run("UnresolvedFolder", func(t *testing.T) {
		m := newTestManager(newMemTree("a.md"), nil)
		assert.Nil(t, m.EnsureFolder("ghost"))
		assert.Nil(t, m.EnsureFolder("a.md"))
		assert.Empty(t, m.Folders())
	})
}

func TestOrderReturnsCopy(t *testing.T) {
	m := newTestManager(newMemTree("a.md", "b.md"), nil)
	m.EnsureFolder(RootID)

	got := m.Order(RootID)
	require.Len(t, got, 2)
	got[0] = "zzz"
	assert.Equal(t, "a.md", m.Order(RootID)[0])
	assert.Nil(t, m.Order("missing"))
}
