//go:build !nogui

package gui

import (
	"sync/atomic"

	"treeorder/pkg/types"

	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// settingsCard holds the ordering toggles.
type settingsCard struct {
	card         *widget.Card
	enabled      *widget.Check
	foldersFirst *widget.Check
	newItems     *widget.RadioGroup

	// loading suppresses change callbacks while the card mirrors the engine.
	loading atomic.Bool
}

// createSettingsCard creates the settings panel
func (a *App) createSettingsCard() *settingsCard {
	c := &settingsCard{}

	c.enabled = widget.NewCheck("Custom order", func(value bool) {
		if c.loading.Load() {
			return
		}
		a.withTree(func() { a.engine.SetEnabled(value) })
	})

	c.foldersFirst = widget.NewCheck("Folders first", func(value bool) {
		if c.loading.Load() {
			return
		}
		a.withTree(func() { a.engine.SetFoldersFirst(value) })
	})

	c.newItems = widget.NewRadioGroup([]string{string(types.PositionTop), string(types.PositionBottom)}, func(value string) {
		if c.loading.Load() || value == "" {
			return
		}
		pos, err := types.ParseNewItemPosition(value)
		if err != nil {
			return
		}
		a.withTree(func() { a.engine.SetNewItemPosition(pos) })
	})
	c.newItems.Required = true

	c.card = widget.NewCard("Ordering", "", container.NewVBox(
		c.enabled,
		c.foldersFirst,
		widget.NewLabel("New items go to the:"),
		c.newItems,
	))
	c.load(a.engine.Settings())
	return c
}

// load mirrors s into the widgets without firing their callbacks.
func (c *settingsCard) load(s *types.Settings) {
	c.loading.Store(true)
	defer c.loading.Store(false)
	c.enabled.SetChecked(s.Enabled)
	c.foldersFirst.SetChecked(s.FoldersFirst)
	c.newItems.SetSelected(string(s.NewItemPosition))
}
