package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the explorer.
type KeyMap struct {
	// General
	Help key.Binding
	Quit key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Expand   key.Binding
	Collapse key.Binding

	// Ordering
	MoveUp    key.Binding
	MoveDown  key.Binding
	Reset     key.Binding
	Reconcile key.Binding
	Cancel    key.Binding

	// Settings
	Toggle       key.Binding
	FoldersFirst key.Binding
	NewItems     key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Expand: key.NewBinding(
			key.WithKeys("l", "right", "enter"),
			key.WithHelp("→/l", "open"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "close"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset folder"),
		),
		Reconcile: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reconcile"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel drag"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "custom order on/off"),
		),
		FoldersFirst: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "folders first"),
		),
		NewItems: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new items top/bottom"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.MoveUp, k.MoveDown, k.Toggle, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Expand, k.Collapse},
		{k.MoveUp, k.MoveDown, k.Reset, k.Reconcile, k.Cancel},
		{k.Toggle, k.FoldersFirst, k.NewItems, k.Help, k.Quit},
	}
}
