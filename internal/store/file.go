package store

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"treeorder/internal/errors"
	"treeorder/internal/log"
	"treeorder/pkg/types"
)

// FileStore keeps the settings blob in a YAML file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path implements Store.
func (f *FileStore) Path() string {
	return f.path
}

// Load implements Store.
func (f *FileStore) Load() (*types.Settings, error) {
	settings := types.DefaultSettings()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.LogWithFields(log.F("path", f.path)).Debug("no saved settings, using defaults")
			return settings, nil
		}
		return nil, errors.NewStoreError("failed to read settings", errors.StoreReadFailed, err).
			WithOperation("load").WithContext("path", f.path)
	}
	if len(data) == 0 {
		return settings, nil
	}
	// Unmarshal over the defaults so absent keys keep their default value.
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, errors.NewStoreError("failed to parse settings", errors.StoreReadFailed, err).
			WithOperation("load").WithContext("path", f.path)
	}
	settings.Normalize()
	return settings, nil
}

// Save implements Store. The file is replaced atomically.
func (f *FileStore) Save(s *types.Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.NewStoreError("failed to encode settings", errors.StoreWriteFailed, err).
			WithOperation("save")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return errors.NewStoreError("failed to create settings directory", errors.StoreWriteFailed, err).
			WithOperation("save").WithContext("path", f.path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".settings-*.yaml")
	if err != nil {
		return errors.NewStoreError("failed to write settings", errors.StoreWriteFailed, err).
			WithOperation("save").WithContext("path", f.path)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewStoreError("failed to write settings", errors.StoreWriteFailed, err).
			WithOperation("save").WithContext("path", f.path)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewStoreError("failed to write settings", errors.StoreWriteFailed, err).
			WithOperation("save").WithContext("path", f.path)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.NewStoreError("failed to write settings", errors.StoreWriteFailed, err).
			WithOperation("save").WithContext("path", f.path)
	}
	return nil
}

// Close implements Store.
func (f *FileStore) Close() error {
	return nil
}
