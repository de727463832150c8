package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"treeorder/internal/drag"
	"treeorder/internal/errors"
	"treeorder/internal/explorer"
	"treeorder/internal/order"
	"treeorder/internal/store"
	"treeorder/internal/vault"
	"treeorder/pkg/testutils"
	"treeorder/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root     string
	store    *store.FileStore
	vault    *vault.Vault
	explorer *explorer.Explorer
	engine   *Engine
}

func newFixture(t *testing.T, entries ...string) *fixture {
	t.Helper()
	root := testutils.BuildVault(t, entries...)
	v, err := vault.Open(root, vault.Options{})
	require.NoError(t, err)

	f := &fixture{
		root:  root,
		store: store.NewFileStore(filepath.Join(root, ".treeorder", "settings.yaml")),
		vault: v,
	}
	f.explorer = explorer.New(v, "vault")
	f.engine = New(f.store, Options{})
	require.NoError(t, f.engine.Load())
	require.NoError(t, f.engine.Activate(v, f.explorer))
	return f
}

func (f *fixture) rows() []string {
	var out []string
	for _, n := range f.explorer.Rows() {
		out = append(out, n.ID)
	}
	return out
}

func (f *fixture) saved(t *testing.T) *types.Settings {
	t.Helper()
	s, err := f.store.Load()
	require.NoError(t, err)
	return s
}

func TestActivateWithoutHost(t *testing.T) {
	e := New(store.NewFileStore(filepath.Join(t.TempDir(), "s.yaml")), Options{})
	err := e.Activate(nil, nil)
	assert.ErrorIs(t, err, errors.ErrHostUnavailable)
	assert.False(t, e.Active())
}

func TestActivateWithRetry(t *testing.T) {
	root := testutils.BuildVault(t, "a.md")
	v, err := vault.Open(root, vault.Options{})
	require.NoError(t, err)

	e := New(store.NewFileStore(filepath.Join(t.TempDir(), "s.yaml")), Options{StartupDelay: time.Millisecond})
	calls := 0
	err = e.ActivateWithRetry(context.Background(), func() (Host, View) {
		calls++
		if calls < 3 {
			return nil, nil
		}
		return v, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, e.Active())
}

func TestActivateWithRetryGivesUp(t *testing.T) {
	e := New(store.NewFileStore(filepath.Join(t.TempDir(), "s.yaml")), Options{StartupDelay: time.Millisecond, Attempts: 2})
	err := e.ActivateWithRetry(context.Background(), func() (Host, View) { return nil, nil })
	assert.True(t, errors.IsHostUnavailable(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e = New(store.NewFileStore(filepath.Join(t.TempDir(), "s.yaml")), Options{StartupDelay: time.Hour})
	err = e.ActivateWithRetry(ctx, func() (Host, View) { return nil, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMoveAndRender(t *testing.T) {
	f := newFixture(t, "a.md", "b.md", "c.md", "dir/", "dir/x.md", "dir/y.md", "e.md")
	assert.Equal(t, []string{"dir", "a.md", "b.md", "c.md", "e.md"}, f.rows())

	require.True(t, f.engine.MoveUp("c.md"))
	assert.Equal(t, []string{"dir", "a.md", "c.md", "b.md", "e.md"}, f.rows())
	assert.Equal(t, []string{"a.md", "c.md", "b.md", "dir", "e.md"}, f.saved(t).CustomOrder[order.RootID])

	// folders-first forbids e.md climbing above dir
	assert.False(t, f.engine.MoveUp("e.md"))

	f.explorer.Expand("dir")
	require.True(t, f.engine.MoveDown("dir/x.md"))
	assert.Equal(t, []string{"dir", "dir/y.md", "dir/x.md", "a.md", "c.md", "b.md", "e.md"}, f.rows())
}

func TestMoveItemRequiresSameParent(t *testing.T) {
	f := newFixture(t, "a.md", "b.md", "dir/", "dir/x.md")
	assert.False(t, f.engine.MoveItem("dir/x.md", "a.md", order.Before))

	require.True(t, f.engine.MoveItem("b.md", "a.md", order.Before))
	assert.Equal(t, []string{"dir", "b.md", "a.md"}, f.rows())
}

func TestResetFolder(t *testing.T) {
	f := newFixture(t, "a.md", "b.md")
	require.True(t, f.engine.MoveDown("a.md"))
	assert.Equal(t, []string{"b.md", "a.md"}, f.rows())

	f.engine.ResetFolder(order.RootID)
	assert.Equal(t, []string{"a.md", "b.md"}, f.rows())
	assert.NotContains(t, f.saved(t).CustomOrder, order.RootID)
}

func TestResetRerendersOpenFolder(t *testing.T) {
	f := newFixture(t, "dir/x.md", "dir/y.md", "z.md")
	f.explorer.Expand("dir")
	require.True(t, f.engine.MoveDown("dir/x.md"))
	assert.Equal(t, []string{"dir", "dir/y.md", "dir/x.md", "z.md"}, f.rows())

	f.engine.ResetFolder("dir")
	assert.Empty(t, f.engine.Order("dir"))
	assert.Equal(t, []string{"dir", "dir/x.md", "dir/y.md", "z.md"}, f.rows())
}

func TestFoldersFirstRegroupsOpenFolders(t *testing.T) {
	f := newFixture(t, "dir/a.md", "dir/sub/", "z.md")
	f.explorer.Expand("dir")
	assert.Equal(t, []string{"dir", "dir/sub", "dir/a.md", "z.md"}, f.rows())

	f.engine.SetFoldersFirst(false)
	assert.Equal(t, []string{"dir", "dir/a.md", "dir/sub", "z.md"}, f.rows())
}

func TestDeactivateRestoresOpenFolders(t *testing.T) {
	f := newFixture(t, "dir/x.md", "dir/y.md", "z.md")
	f.explorer.Expand("dir")
	require.True(t, f.engine.MoveDown("dir/x.md"))

	f.engine.Deactivate()
	assert.False(t, f.engine.Active())
	assert.Equal(t, []string{"dir", "dir/x.md", "dir/y.md", "z.md"}, f.rows())
}

func TestReactivateThenDeactivate(t *testing.T) {
	f := newFixture(t, "a.md", "b.md")
	require.True(t, f.engine.MoveDown("a.md"))

	require.NoError(t, f.engine.Activate(f.vault, f.explorer))
	assert.Equal(t, []string{"b.md", "a.md"}, f.rows())

	f.engine.Deactivate()
	assert.Equal(t, []string{"a.md", "b.md"}, f.rows())
}

func TestToggleKeepsOrder(t *testing.T) {
	f := newFixture(t, "a.md", "b.md", "dir/")
	require.True(t, f.engine.MoveDown("a.md"))
	assert.Equal(t, []string{"dir", "b.md", "a.md"}, f.rows())

	f.engine.SetEnabled(false)
	assert.Equal(t, []string{"dir", "a.md", "b.md"}, f.rows())
	assert.False(t, f.saved(t).Enabled)

	f.engine.SetFoldersFirst(false)
	assert.Equal(t, []string{"a.md", "b.md", "dir"}, f.rows())

	f.engine.SetEnabled(true)
	assert.Equal(t, []string{"b.md", "a.md", "dir"}, f.rows())
}

func TestFileEvents(t *testing.T) {
	f := newFixture(t, "a.md", "b.md")
	require.True(t, f.engine.MoveDown("a.md"))

	f.engine.SetNewItemPosition(types.PositionTop)
	testutils.AddEntries(t, f.root, "n.md")
	f.engine.HandleCreated("n.md")
	assert.Equal(t, []string{"n.md", "b.md", "a.md"}, f.rows())

	require.NoError(t, os.Rename(filepath.Join(f.root, "b.md"), filepath.Join(f.root, "z.md")))
	f.engine.HandleRenamed("z.md", "b.md")
	assert.Equal(t, []string{"n.md", "z.md", "a.md"}, f.rows())

	require.NoError(t, os.Remove(filepath.Join(f.root, "n.md")))
	f.engine.HandleDeleted("n.md")
	assert.Equal(t, []string{"z.md", "a.md"}, f.rows())
	assert.Equal(t, []string{"z.md", "a.md"}, f.saved(t).CustomOrder[order.RootID])
}

func TestActivateReconciles(t *testing.T) {
	root := testutils.BuildVault(t, "a.md", "b.md", "c.md")
	st := store.NewFileStore(filepath.Join(t.TempDir(), "s.yaml"))
	s := types.DefaultSettings()
	s.CustomOrder[order.RootID] = []string{"c.md", "gone.md", "a.md", "c.md"}
	s.CustomOrder["vanished"] = []string{"vanished/x.md"}
	require.NoError(t, st.Save(s))

	v, err := vault.Open(root, vault.Options{})
	require.NoError(t, err)
	e := New(st, Options{})
	require.NoError(t, e.Load())
	require.NoError(t, e.Activate(v, explorer.New(v, "vault")))

	saved, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, types.FolderOrder{order.RootID: {"c.md", "a.md", "b.md"}}, saved.CustomOrder)
}

func TestReloadSettings(t *testing.T) {
	f := newFixture(t, "a.md", "b.md")
	s := types.DefaultSettings()
	s.CustomOrder[order.RootID] = []string{"b.md", "a.md"}
	require.NoError(t, f.store.Save(s))

	require.NoError(t, f.engine.ReloadSettings())
	assert.Equal(t, []string{"b.md", "a.md"}, f.rows())
}

type brokenStore struct{ store.Store }

func (brokenStore) Save(*types.Settings) error {
	return errors.NewStoreError("disk full", errors.StoreWriteFailed, nil)
}

func TestSaveErrorsAreIgnored(t *testing.T) {
	root := testutils.BuildVault(t, "a.md", "b.md")
	v, err := vault.Open(root, vault.Options{})
	require.NoError(t, err)

	ex := explorer.New(v, "vault")
	e := New(brokenStore{store.NewFileStore(filepath.Join(t.TempDir(), "s.yaml"))}, Options{})
	require.NoError(t, e.Activate(v, ex))

	assert.True(t, e.MoveDown("a.md"))
	assert.Equal(t, []string{"b.md", "a.md"}, e.Order(order.RootID))
}

func TestDragLifecycle(t *testing.T) {
	f := newFixture(t, "a.md", "b.md", "c.md")
	f.explorer.Height = 10
	f.explorer.RowHeight = 10
	f.explorer.Width = 100

	c := drag.NewController(f.explorer, nil, nil, f.engine.Drop, drag.DefaultOptions())
	f.engine.AttachDrag(c)
	assert.True(t, c.Attached())

	// drag a.md below c.md
	c.PointerDown("a.md", drag.Point{X: 5, Y: 5})
	c.PointerMove(drag.Point{X: 5, Y: 27}, true)
	c.PointerUp(drag.Point{X: 5, Y: 27})
	assert.Equal(t, []string{"b.md", "c.md", "a.md"}, f.rows())

	f.engine.SetEnabled(false)
	assert.False(t, c.Attached())
	f.engine.SetEnabled(true)
	assert.True(t, c.Attached())

	f.engine.Deactivate()
	assert.False(t, c.Attached())
	assert.False(t, f.engine.Active())
}

func TestActivationReport(t *testing.T) {
	root := testutils.BuildVault(t, "a.md", "b.md")
	v, err := vault.Open(root, vault.Options{})
	require.NoError(t, err)

	st := store.NewFileStore(filepath.Join(root, ".treeorder", "settings.yaml"))
	s := types.DefaultSettings()
	s.CustomOrder[order.RootID] = []string{"b.md", "gone.md", "a.md"}
	require.NoError(t, st.Save(s))

	e := New(st, Options{})
	require.NoError(t, e.Load())
	require.NoError(t, e.Activate(v, explorer.New(v, "vault")))

	report := e.ActivationReport()
	assert.Equal(t, []string{"gone.md"}, report.Removed[order.RootID])
	assert.False(t, e.Reconcile().Changed())

	saved, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.md", "a.md"}, saved.CustomOrder[order.RootID])
}
