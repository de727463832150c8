package main

import (
	"context"
	"path/filepath"
	"strings"

	"treeorder/internal/engine"
	"treeorder/internal/errors"
	"treeorder/internal/explorer"
	"treeorder/internal/order"
	"treeorder/internal/store"
	"treeorder/internal/vault"
)

// session is an activated engine over the configured vault.
type session struct {
	vault    *vault.Vault
	store    store.Store
	engine   *engine.Engine
	explorer *explorer.Explorer
}

// openSession opens the vault and the settings store and activates the
// engine on them.
func openSession(ctx context.Context) (*session, error) {
	v, err := vault.Open(cfg.Vault, vault.Options{Ignore: cfg.Ignore, ShowHidden: cfg.ShowHidden})
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Store, cfg.SettingsPath())
	if err != nil {
		return nil, err
	}

	eng := engine.New(st, engine.Options{StartupDelay: cfg.StartupDelay()})
	if err := eng.Load(); err != nil {
		st.Close()
		return nil, err
	}

	ex := explorer.New(v, filepath.Base(v.Root()))
	err = eng.ActivateWithRetry(ctx, func() (engine.Host, engine.View) {
		return v, ex
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	return &session{vault: v, store: st, engine: eng, explorer: ex}, nil
}

func (s *session) Close() error {
	s.engine.Deactivate()
	return s.store.Close()
}

// resolve maps a vault-relative identifier or a filesystem path to an
// identifier of a visible entry.
func (s *session) resolve(arg string) (string, error) {
	id := strings.Trim(filepath.ToSlash(filepath.Clean(arg)), "/")
	if id == "" || id == "." {
		return order.RootID, nil
	}
	if s.vault.Exists(id) {
		return id, nil
	}
	if abs, err := filepath.Abs(arg); err == nil {
		if rel, err := s.vault.IDFor(abs); err == nil && s.vault.Exists(rel) {
			return rel, nil
		}
	}
	return "", errors.NewPathError("not in the vault", arg, errors.PathNotFound, nil)
}

// resolveFolder is resolve restricted to folders.
func (s *session) resolveFolder(arg string) (string, error) {
	id, err := s.resolve(arg)
	if err != nil {
		return "", err
	}
	if !s.vault.IsFolder(id) {
		return "", errors.NewPathError("not a folder", arg, errors.InvalidPath, nil)
	}
	return id, nil
}
