package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"treeorder/internal/errors"
	"treeorder/internal/order"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// withSession opens a session for the duration of fn.
func withSession(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newTreeCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree [folder]",
		Short: "Print the vault in its custom order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				folder := order.RootID
				if len(args) > 0 {
					var err error
					if folder, err = s.resolveFolder(args[0]); err != nil {
						return err
					}
				}
				out := cmd.OutOrStdout()
				p := treePrinter{s: s, w: out, depth: depth, color: isTerminal(out)}
				name := folder
				if folder == order.RootID {
					name = s.explorer.Root.Name
				}
				fmt.Fprintln(out, p.folder(name+"/"))
				return p.print(folder, "", 1)
			})
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "Maximum depth to print (0 for no limit)")
	return cmd
}

type treePrinter struct {
	s     *session
	w     io.Writer
	depth int
	color bool
}

func (p treePrinter) print(folderID, prefix string, level int) error {
	items, err := p.s.vault.Children(folderID)
	if err != nil {
		return err
	}
	for i, it := range items {
		branch, next := "├── ", "│   "
		if i == len(items)-1 {
			branch, next = "└── ", "    "
		}
		name := order.Name(it.ID)
		if it.IsFolder {
			name = p.folder(name + "/")
		}
		fmt.Fprintln(p.w, p.dim(prefix+branch)+name)
		if it.IsFolder && (p.depth <= 0 || level < p.depth) {
			if err := p.print(it.ID, prefix+next, level+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p treePrinter) folder(s string) string {
	if !p.color {
		return s
	}
	return folderStyle.Render(s)
}

func (p treePrinter) dim(s string) string {
	if !p.color {
		return s
	}
	return dimStyle.Render(s)
}

func newMoveUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move-up <item>",
		Short: "Move an item one position up in its folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return step(cmd, args[0], "up")
		},
	}
}

func newMoveDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move-down <item>",
		Short: "Move an item one position down in its folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return step(cmd, args[0], "down")
		},
	}
}

// step moves arg one position up or down.
func step(cmd *cobra.Command, arg, dir string) error {
	return withSession(cmd, func(s *session) error {
		id, err := s.resolve(arg)
		if err != nil {
			return err
		}
		if !s.engine.Enabled() {
			return errors.New("custom order is off, run 'treeorder toggle on' first")
		}
		move := s.engine.MoveUp
		if dir == "down" {
			move = s.engine.MoveDown
		}
		if !move(id) {
			return errors.NewOrderError("cannot move "+dir, id, errors.BoundaryViolation, nil)
		}
		fmt.Fprintln(cmd.OutOrStdout(), successText(fmt.Sprintf("Moved %s %s", id, dir)))
		return nil
	})
}

func newMoveCmd() *cobra.Command {
	var before, after string

	cmd := &cobra.Command{
		Use:   "move <item> (--before <sibling> | --after <sibling>)",
		Short: "Move an item next to a sibling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, pos := before, order.Before
			if after != "" {
				target, pos = after, order.After
			}
			return withSession(cmd, func(s *session) error {
				id, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				if !s.engine.Enabled() {
					return errors.New("custom order is off, run 'treeorder toggle on' first")
				}
				targetID, err := s.resolve(target)
				if err != nil {
					return errors.NewOrderError("unknown target "+target, id, errors.InvalidReference, err)
				}
				if order.ParentID(id) != order.ParentID(targetID) {
					return errors.NewOrderError(targetID+" is not a sibling", id, errors.InvalidReference, nil)
				}
				if !s.engine.MoveItem(id, targetID, pos) {
					return errors.NewOrderError("cannot move next to "+targetID, id, errors.InvalidReference, nil)
				}
				fmt.Fprintln(cmd.OutOrStdout(), successText(fmt.Sprintf("Moved %s %s %s", id, pos, targetID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&before, "before", "", "Place the item before this sibling")
	cmd.Flags().StringVar(&after, "after", "", "Place the item after this sibling")
	cmd.MarkFlagsMutuallyExclusive("before", "after")
	cmd.MarkFlagsOneRequired("before", "after")
	return cmd
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [folder]",
		Short: "Discard the custom order of a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				folder := order.RootID
				if len(args) > 0 {
					var err error
					if folder, err = s.resolveFolder(args[0]); err != nil {
						return err
					}
				}
				s.engine.ResetFolder(folder)
				fmt.Fprintln(cmd.OutOrStdout(), successText("Reset the order of "+folder))
				return nil
			})
		},
	}
}

func newReconcileCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Bring the stored order in line with the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				// Activation already reconciled; a second pass catches nothing new
				// unless the vault changed in between.
				report := s.engine.ActivationReport()
				again := s.engine.Reconcile()
				out := cmd.OutOrStdout()
				if !report.Changed() && !again.Changed() {
					fmt.Fprintln(out, successText("Stored order is up to date"))
					return nil
				}
				if !report.Changed() {
					report = again
				}
				fmt.Fprintln(out, successText("Reconciled: "+report.String()))
				if verbose {
					printReport(out, report)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every change")
	return cmd
}

func printReport(w io.Writer, r order.ReconcileReport) {
	for _, f := range r.DroppedFolders {
		fmt.Fprintf(w, "  dropped  %s\n", f)
	}
	for _, line := range reportLines("removed", r.Removed) {
		fmt.Fprintln(w, line)
	}
	for _, line := range reportLines("added", r.Added) {
		fmt.Fprintln(w, line)
	}
	folders := make([]string, 0, len(r.Duplicates))
	for f := range r.Duplicates {
		folders = append(folders, f)
	}
	sort.Strings(folders)
	for _, f := range folders {
		fmt.Fprintf(w, "  deduped  %s (%d)\n", f, r.Duplicates[f])
	}
}

func reportLines(verb string, m map[string][]string) []string {
	folders := make([]string, 0, len(m))
	for f := range m {
		folders = append(folders, f)
	}
	sort.Strings(folders)
	var out []string
	for _, f := range folders {
		out = append(out, fmt.Sprintf("  %-8s %s: %s", verb, f, strings.Join(m[f], ", ")))
	}
	return out
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "toggle [on|off]",
		Short:     "Turn custom ordering on or off",
		Long:      `Turn custom ordering on or off. The stored order is kept while it is off.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				enabled := !s.engine.Enabled()
				if len(args) > 0 {
					enabled = args[0] == "on"
				}
				s.engine.SetEnabled(enabled)
				fmt.Fprintln(cmd.OutOrStdout(), successText("Custom order "+onOff(enabled)))
				return nil
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No config needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "treeorder "+version)
			return nil
		},
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
