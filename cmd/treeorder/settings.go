package main

import (
	"fmt"
	"io"
	"os"

	"treeorder/internal/errors"
	"treeorder/pkg/types"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newSettingsCmd() *cobra.Command {
	var (
		enabled      bool
		foldersFirst bool
		newItems     string
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the ordering settings",
		Long: `Show or change the ordering settings.

With flags the given settings are changed. Without flags an interactive
form is shown when running in a terminal, otherwise the current settings
are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				flags := cmd.Flags()
				changed := flags.Changed("enabled") || flags.Changed("folders-first") || flags.Changed("new-items")

				cur := s.engine.Settings()
				next := settingsInput{
					Enabled:      cur.Enabled,
					FoldersFirst: cur.FoldersFirst,
					NewItems:     string(cur.NewItemPosition),
				}
				switch {
				case changed:
					if flags.Changed("enabled") {
						next.Enabled = enabled
					}
					if flags.Changed("folders-first") {
						next.FoldersFirst = foldersFirst
					}
					if flags.Changed("new-items") {
						next.NewItems = newItems
					}
				case isTerminal(os.Stdin) && isTerminal(cmd.OutOrStdout()):
					if err := next.form().Run(); err != nil {
						if errors.Is(err, huh.ErrUserAborted) {
							fmt.Fprintln(cmd.OutOrStdout(), infoText("Settings unchanged"))
							return nil
						}
						return err
					}
				default:
					printSettings(cmd.OutOrStdout(), cur)
					return nil
				}

				pos, err := types.ParseNewItemPosition(next.NewItems)
				if err != nil {
					return errors.NewConfigError("invalid new item position", "new-items", errors.InvalidConfig, err)
				}
				if next.Enabled != cur.Enabled {
					s.engine.SetEnabled(next.Enabled)
				}
				if next.FoldersFirst != cur.FoldersFirst {
					s.engine.SetFoldersFirst(next.FoldersFirst)
				}
				if pos != cur.NewItemPosition {
					s.engine.SetNewItemPosition(pos)
				}
				fmt.Fprintln(cmd.OutOrStdout(), successText("Settings saved to "+s.store.Path()))
				printSettings(cmd.OutOrStdout(), s.engine.Settings())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&enabled, "enabled", true, "Use the custom order")
	cmd.Flags().BoolVar(&foldersFirst, "folders-first", true, "List folders before files")
	cmd.Flags().StringVar(&newItems, "new-items", string(types.PositionBottom), "Where new items go: top or bottom")
	return cmd
}

// settingsInput is the editable part of the settings.
type settingsInput struct {
	Enabled      bool
	FoldersFirst bool
	NewItems     string
}

func (in *settingsInput) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Use the custom order?").
				Affirmative("On").
				Negative("Off").
				Value(&in.Enabled),
			huh.NewConfirm().
				Title("List folders before files?").
				Value(&in.FoldersFirst),
			huh.NewSelect[string]().
				Title("Where should new items go?").
				Options(
					huh.NewOption("Top of the folder", string(types.PositionTop)),
					huh.NewOption("Bottom of the folder", string(types.PositionBottom)),
				).
				Value(&in.NewItems),
		),
	)
}

func printSettings(w io.Writer, s *types.Settings) {
	fmt.Fprintf(w, "custom order:  %s\n", onOff(s.Enabled))
	fmt.Fprintf(w, "folders first: %s\n", onOff(s.FoldersFirst))
	fmt.Fprintf(w, "new items:     %s\n", s.NewItemPosition)
	fmt.Fprintf(w, "ordered:       %d folders\n", len(s.CustomOrder))
}
