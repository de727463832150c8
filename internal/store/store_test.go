package store

import (
	"os"
	"path/filepath"
	"testing"

	"treeorder/internal/errors"
	"treeorder/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *types.Settings {
	s := types.DefaultSettings()
	s.FoldersFirst = false
	s.NewItemPosition = types.PositionTop
	s.CustomOrder["/"] = []string{"c.md", "a.md", "b.md"}
	s.CustomOrder["notes"] = []string{"notes/z.md", "notes/y.md"}
	return s
}

func TestBackends(t *testing.T) {
	backends := map[string]string{
		BackendYAML:   "settings.yaml",
		BackendSQLite: "settings.db",
	}
	for backend, file := range backends {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", file)
			st, err := Open(backend, path)
			require.NoError(t, err)
			defer st.Close()
			assert.Equal(t, path, st.Path())

			loaded, err := st.Load()
			require.NoError(t, err)
			assert.Equal(t, types.DefaultSettings(), loaded)

			want := sample()
			require.NoError(t, st.Save(want))

			loaded, err = st.Load()
			require.NoError(t, err)
			assert.Equal(t, want, loaded)

			// a second save replaces the first completely
			want.CustomOrder = types.FolderOrder{"/": {"a.md"}}
			want.Enabled = false
			require.NoError(t, st.Save(want))
			loaded, err = st.Load()
			require.NoError(t, err)
			assert.Equal(t, want, loaded)
		})
	}
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	st, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, st.Save(sample()))
	require.NoError(t, st.Close())

	st, err = OpenSQLite(path)
	require.NoError(t, err)
	defer st.Close()
	loaded, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, sample(), loaded)
}

func TestFileStorePartialBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("foldersFirst: false\n"), 0644))

	loaded, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.True(t, loaded.Enabled)
	assert.False(t, loaded.FoldersFirst)
	assert.Equal(t, types.PositionBottom, loaded.NewItemPosition)
	assert.NotNil(t, loaded.CustomOrder)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("customOrder: [unclosed"), 0644))

	_, err := NewFileStore(path).Load()
	require.Error(t, err)
	assert.True(t, errors.IsStoreError(err))
	assert.Equal(t, errors.StoreReadFailed, errors.KindOf(err))
}

func TestFileStoreWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := NewFileStore(filepath.Join(blocker, "settings.yaml")).Save(sample())
	require.Error(t, err)
	assert.Equal(t, errors.StoreWriteFailed, errors.KindOf(err))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("postgres", "x")
	require.Error(t, err)
	assert.Equal(t, errors.StoreOpenFailed, errors.KindOf(err))
}
