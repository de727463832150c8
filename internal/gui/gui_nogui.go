//go:build nogui
// +build nogui

package gui

import (
	"fmt"

	"treeorder/internal/config"
	"treeorder/internal/engine"
	"treeorder/internal/explorer"
	"treeorder/internal/vault"
)

// Run is a stub implementation for builds with GUI disabled
func Run(*config.Config, *vault.Vault, *engine.Engine, *explorer.Explorer) error {
	fmt.Println("GUI is disabled in this build. Please use the tui command.")
	return fmt.Errorf("GUI not available in this build")
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return false
}
