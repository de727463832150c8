package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"treeorder/internal/errors"
	"treeorder/internal/log"
	"treeorder/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS folder_order (
	folder TEXT NOT NULL,
	position INTEGER NOT NULL,
	child TEXT NOT NULL,
	PRIMARY KEY (folder, position)
);
`

// SQLiteStore keeps the settings blob in a SQLite database.
type SQLiteStore struct {
	path string
	conn *sql.DB
}

// OpenSQLite opens (and creates when missing) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	fail := func(msg string, err error) (*SQLiteStore, error) {
		return nil, errors.NewStoreError(msg, errors.StoreOpenFailed, err).
			WithOperation("open").WithContext("path", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fail("failed to create database directory", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fail("failed to open database", err)
	}
	// WAL lets the watch daemon and an interactive front end share the file.
	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA synchronous=NORMAL;", "PRAGMA busy_timeout=5000;"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return fail("failed to configure database", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fail("failed to create schema", err)
	}
	log.LogWithFields(log.F("path", path)).Debug("settings database opened")
	return &SQLiteStore{path: path, conn: db}, nil
}

// Path implements Store.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *SQLiteStore) Load() (*types.Settings, error) {
	readErr := func(err error) error {
		return errors.NewStoreError("failed to read settings", errors.StoreReadFailed, err).
			WithOperation("load").WithContext("path", s.path)
	}
	settings := types.DefaultSettings()

	rows, err := s.conn.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, readErr(err)
	}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return nil, readErr(err)
		}
		switch key {
		case "enabled":
			settings.Enabled, _ = strconv.ParseBool(value)
		case "foldersFirst":
			settings.FoldersFirst, _ = strconv.ParseBool(value)
		case "newItemPosition":
			if pos, err := types.ParseNewItemPosition(value); err == nil {
				settings.NewItemPosition = pos
			}
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, readErr(err)
	}

	rows, err = s.conn.Query("SELECT folder, child FROM folder_order ORDER BY folder, position")
	if err != nil {
		return nil, readErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var folder, child string
		if err := rows.Scan(&folder, &child); err != nil {
			return nil, readErr(err)
		}
		settings.CustomOrder[folder] = append(settings.CustomOrder[folder], child)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr(err)
	}
	return settings, nil
}

// Save implements Store. The whole blob is replaced in one transaction.
func (s *SQLiteStore) Save(settings *types.Settings) error {
	writeErr := func(err error) error {
		return errors.NewStoreError("failed to write settings", errors.StoreWriteFailed, err).
			WithOperation("save").WithContext("path", s.path)
	}
	tx, err := s.conn.Begin()
	if err != nil {
		return writeErr(err)
	}
	defer tx.Rollback()

	values := map[string]string{
		"enabled":         strconv.FormatBool(settings.Enabled),
		"foldersFirst":    strconv.FormatBool(settings.FoldersFirst),
		"newItemPosition": string(settings.NewItemPosition),
	}
	for k, v := range values {
		if _, err := tx.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", k, v); err != nil {
			return writeErr(err)
		}
	}

	if _, err := tx.Exec("DELETE FROM folder_order"); err != nil {
		return writeErr(err)
	}
	stmt, err := tx.Prepare("INSERT INTO folder_order (folder, position, child) VALUES (?, ?, ?)")
	if err != nil {
		return writeErr(err)
	}
	defer stmt.Close()
	for folder, seq := range settings.CustomOrder {
		for i, child := range seq {
			if _, err := stmt.Exec(folder, i, child); err != nil {
				return writeErr(err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return writeErr(err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
