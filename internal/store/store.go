// Package store persists the settings blob. Two backends exist: a YAML file
// and a SQLite database.
package store

import (
	"strings"

	"treeorder/internal/errors"
	"treeorder/pkg/types"
)

// Backend names accepted by Open.
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// Store loads and saves the settings blob.
type Store interface {
	// Load returns the saved settings merged over the defaults. A store
	// with nothing saved yet returns the defaults.
	Load() (*types.Settings, error)
	Save(s *types.Settings) error
	// Path is the location of the backing file.
	Path() string
	Close() error
}

// Open returns the store for backend at path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendYAML, "yml":
		return NewFileStore(path), nil
	case BackendSQLite, "sqlite3", "db":
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, errors.NewStoreError("unknown store backend", errors.StoreOpenFailed, nil).
		WithContext("backend", backend)
}
