package main

import (
	"fmt"
	"path/filepath"

	"treeorder/internal/drag"
	"treeorder/internal/gui"
	"treeorder/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// newTUICmd represents the TUI command
func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and reorder the vault in the terminal",
		Long: `Start the terminal explorer. Drag rows with the mouse or use K and J
to move the selected item. Press ? for all keys.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				m := tui.New(s.engine, s.explorer, tui.Options{
					Title:         filepath.Base(s.vault.Root()),
					FrameInterval: cfg.FrameInterval(),
					Drag:          drag.Options{RestrictToSiblings: cfg.Drag.RestrictToSiblings},
				})
				p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("error running TUI: %w", err)
				}
				return nil
			})
		},
	}
}

// newGUICmd creates the GUI command for the CLI
func newGUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Browse and reorder the vault in a desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gui.IsGUIAvailable() {
				return fmt.Errorf("GUI not available in this build, use 'treeorder tui'")
			}
			return withSession(cmd, func(s *session) error {
				return gui.Run(cfg, s.vault, s.engine, s.explorer)
			})
		},
	}
}
